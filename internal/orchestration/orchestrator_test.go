package orchestration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agbru/pseries/internal/coefficient"
	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/symbol"
	"github.com/agbru/pseries/internal/term"
	"github.com/agbru/pseries/internal/trigkey"
)

// MockResultPresenter records what it is asked to present.
type MockResultPresenter struct {
	presented *CalculationResult
}

func (m *MockResultPresenter) PresentComparisonTable(results []CalculationResult, out io.Writer) {}
func (m *MockResultPresenter) PresentResult(result CalculationResult, details bool, out io.Writer) {
	m.presented = &result
}
func (m *MockResultPresenter) FormatDuration(d time.Duration) string { return d.String() }
func (m *MockResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.ExitErrorGeneric
}

// operands returns two series over three arguments with n terms each.
func operands(t *testing.T, n int) (*series.Series[coefficient.Real], *series.Series[coefficient.Real]) {
	t.Helper()
	env := series.NewEnv[coefficient.Real](series.DefaultSettings())
	args := symbol.ArgSet{Trig: symbol.Vector{
		symbol.New("l", 0.1, 1), symbol.New("m", 0.2, 2), symbol.New("n", 0.3, 3),
	}}
	a, b := series.New(env, args), series.New(env, args)
	for i := 0; i < n; i++ {
		e := int16(i)
		if err := a.Insert(term.New(coefficient.Real(1/float64(i+1)), trigkey.Cos(e, 1-e, 2))); err != nil {
			t.Fatal(err)
		}
		if err := b.Insert(term.New(coefficient.Real(2/float64(i+2)), trigkey.Sin(1, e, -e))); err != nil {
			t.Fatal(err)
		}
	}
	return a, b
}

func TestExecuteMultiplications(t *testing.T) {
	t.Parallel()
	a, b := operands(t, 20)
	strategies := []series.Strategy{series.Dense, series.Hashed, series.Plain, series.Auto}

	results := ExecuteMultiplications(context.Background(), a, b, strategies, NullProgressReporter{}, io.Discard)
	if len(results) != len(strategies) {
		t.Fatalf("expected %d results, got %d", len(strategies), len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("%s: unexpected error: %v", res.Name, res.Err)
		}
		if res.Name != strategies[i].String() {
			t.Errorf("result %d: name %q, want %q", i, res.Name, strategies[i])
		}
		if res.Product == nil || res.Product.Len() == 0 {
			t.Errorf("%s: empty product", res.Name)
		}
		if res.Deviation > DefaultTolerance {
			t.Errorf("%s: deviation %g", res.Name, res.Deviation)
		}
		if res.Report.Kept == 0 {
			t.Errorf("%s: no pair kept", res.Name)
		}
	}
	if results[2].Report.Used != series.Plain {
		t.Errorf("plain ran as %s", results[2].Report.Used)
	}
}

func TestExecuteMultiplicationsError(t *testing.T) {
	t.Parallel()
	a, b := operands(t, 3)
	if err := a.SetLinArgs([]int{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	results := ExecuteMultiplications(context.Background(), a, b, []series.Strategy{series.Hashed}, NullProgressReporter{}, io.Discard)
	if !errors.Is(results[0].Err, series.ErrLinearArguments) {
		t.Errorf("expected linear argument error, got %v", results[0].Err)
	}
	if results[0].Product != nil {
		t.Error("failed result carries a product")
	}
}

func TestExecuteMultiplicationsProgress(t *testing.T) {
	t.Parallel()
	a, b := operands(t, 40)
	var last []float64
	reporter := ProgressReporterFunc(func(wg *sync.WaitGroup, ch <-chan ProgressUpdate, numTasks int, _ io.Writer) {
		defer wg.Done()
		last = make([]float64, numTasks)
		for u := range ch {
			last[u.TaskIndex] = u.Value
		}
	})
	ExecuteMultiplications(context.Background(), a, b, series.Strategies, reporter, io.Discard)
	for i, v := range last {
		if v != 1 {
			t.Errorf("task %d ended at %f", i, v)
		}
	}
}

// TestAnalyzeComparisonResults checks consistent products, failures and
// mismatch detection.
func TestAnalyzeComparisonResults(t *testing.T) {
	t.Parallel()
	a, _ := operands(t, 2)
	tests := []struct {
		name           string
		results        []CalculationResult
		expectedStatus int
		presented      string
	}{
		{
			name: "All success",
			results: []CalculationResult{
				{Name: "plain", Product: a, Duration: 2 * time.Millisecond},
				{Name: "dense", Product: a, Duration: time.Millisecond, Deviation: 1e-15},
			},
			expectedStatus: apperrors.ExitSuccess,
			presented:      "dense",
		},
		{
			name: "Mismatch",
			results: []CalculationResult{
				{Name: "dense", Product: a, Duration: time.Millisecond},
				{Name: "hashed", Product: a, Duration: time.Millisecond, Deviation: 1e-3},
			},
			expectedStatus: apperrors.ExitErrorMismatch,
		},
		{
			name: "All failure",
			results: []CalculationResult{
				{Name: "dense", Duration: time.Millisecond, Err: errors.New("fail")},
				{Name: "plain", Duration: time.Millisecond, Err: errors.New("fail")},
			},
			expectedStatus: apperrors.ExitErrorGeneric,
		},
		{
			name: "Mixed success/failure",
			results: []CalculationResult{
				{Name: "dense", Duration: time.Microsecond, Err: errors.New("fail")},
				{Name: "plain", Product: a, Duration: time.Millisecond},
			},
			expectedStatus: apperrors.ExitSuccess,
			presented:      "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			presenter := &MockResultPresenter{}
			var out bytes.Buffer
			status := AnalyzeComparisonResults(tt.results, PresentationOptions{}, presenter, presenter, &out)
			if status != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, status)
			}
			if !strings.Contains(out.String(), "Global Status") {
				t.Errorf("missing global status in %q", out.String())
			}
			if tt.presented != "" && (presenter.presented == nil || presenter.presented.Name != tt.presented) {
				t.Errorf("expected %s to be presented, got %+v", tt.presented, presenter.presented)
			}
		})
	}
}

func TestAnalyzeComparisonResultsTolerance(t *testing.T) {
	t.Parallel()
	a, _ := operands(t, 2)
	results := []CalculationResult{
		{Name: "dense", Product: a},
		{Name: "plain", Product: a, Deviation: 1e-6},
	}
	presenter := &MockResultPresenter{}
	status := AnalyzeComparisonResults(results, PresentationOptions{Tolerance: 1e-5}, presenter, presenter, io.Discard)
	if status != apperrors.ExitSuccess {
		t.Errorf("expected success under a looser tolerance, got %d", status)
	}
}

func TestGetStrategiesToRun(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		want    []series.Strategy
		wantErr bool
	}{
		{"all", series.Strategies, false},
		{"auto", []series.Strategy{series.Auto}, false},
		{"Dense", []series.Strategy{series.Dense}, false},
		{"fft", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := GetStrategiesToRun(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
