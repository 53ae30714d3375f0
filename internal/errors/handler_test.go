package apperrors

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type testColors struct{}

func (testColors) Yellow() string { return "<y>" }
func (testColors) Red() string    { return "<r>" }
func (testColors) Reset() string  { return "</>" }

func TestHandleCalculationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		colors   ColorProvider
		wantCode int
		contains []string
	}{
		{"nil error", nil, nil, ExitSuccess, nil},
		{"timeout", context.DeadlineExceeded, testColors{}, ExitErrorTimeout, []string{"<y>Status: Timeout</>", "after 2s"}},
		{"canceled", context.Canceled, nil, ExitErrorCanceled, []string{"Canceled"}},
		{"capacity", OperationError{Op: "multiply", Cause: CapacityError{Resource: "trig exponent", Requested: 40000, Limit: 32767}}, testColors{}, ExitErrorCapacity, []string{"<r>Status: Capacity exceeded</>", "trig exponent"}},
		{"config", ConfigError{Message: "bad"}, nil, ExitErrorConfig, []string{"Configuration error", "bad"}},
		{"memory", MemoryError{Requested: 10, Limit: 5}, nil, ExitErrorGeneric, []string{"Out of memory budget"}},
		{"generic", errors.New("boom"), nil, ExitErrorGeneric, []string{"Status: Failure after 2s", "boom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			code := HandleCalculationError(tt.err, 2*time.Second, &out, tt.colors)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			for _, s := range tt.contains {
				if !strings.Contains(out.String(), s) {
					t.Errorf("output %q does not contain %q", out.String(), s)
				}
			}
			if tt.err == nil && out.Len() != 0 {
				t.Errorf("unexpected output for nil error: %q", out.String())
			}
		})
	}
}
