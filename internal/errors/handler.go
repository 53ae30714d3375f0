package apperrors

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape codes used to highlight error messages.
// A nil provider prints without color.
type ColorProvider interface {
	Yellow() string
	Red() string
	Reset() string
}

// HandleCalculationError prints a message describing err to out and returns
// the matching exit code. duration is the time spent before the failure, or
// zero when unknown.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	yellow, red, reset := "", "", ""
	if colors != nil {
		yellow, red, reset = colors.Yellow(), colors.Red(), colors.Reset()
	}
	after := ""
	if duration > 0 {
		after = fmt.Sprintf(" after %s", duration)
	}

	code := ExitCode(err)
	var memErr MemoryError
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sStatus: Timeout%s. The multiplication did not finish within the allotted time%s.\n", yellow, reset, after)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s by the user%s.\n", yellow, reset, after)
	case ExitErrorCapacity:
		fmt.Fprintf(out, "%sStatus: Capacity exceeded%s. %v\n", red, reset, err)
	case ExitErrorConfig:
		fmt.Fprintf(out, "%sStatus: Configuration error%s. %v\n", red, reset, err)
	default:
		if errors.As(err, &memErr) {
			fmt.Fprintf(out, "%sStatus: Out of memory budget%s. %v\n", red, reset, err)
		} else {
			fmt.Fprintf(out, "%sStatus: Failure%s%s. %v\n", red, reset, after, err)
		}
	}
	return code
}
