package dynamo

import "fmt"

// Result is the termination code of an integration.
type Result int

const (
	Successful Result = iota
	MaxStepsReached
	EventOccurred
	StepSizeUnderflow
	NonFinite
	InvalidProblem
)

var resultNames = [...]string{
	Successful:        "successful",
	MaxStepsReached:   "max_steps_reached",
	EventOccurred:     "event_occurred",
	StepSizeUnderflow: "step_size_underflow",
	NonFinite:         "non_finite",
	InvalidProblem:    "invalid_problem",
}

func (r Result) String() string {
	if r >= 0 && int(r) < len(resultNames) {
		return resultNames[r]
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// OK reports whether the integration ended normally (final time or event).
func (r Result) OK() bool {
	return r == Successful || r == EventOccurred
}

// Err maps a failure code to its sentinel error; nil for OK results.
func (r Result) Err() error {
	switch r {
	case MaxStepsReached:
		return ErrMaxSteps
	case StepSizeUnderflow:
		return ErrStepTooSmall
	case NonFinite:
		return ErrInvalidState
	case InvalidProblem:
		return ErrInvalidProblem
	}
	return nil
}

// ParseResult is the inverse of Result.String.
func ParseResult(s string) (Result, error) {
	for i, name := range resultNames {
		if name == s {
			return Result(i), nil
		}
	}
	return 0, fmt.Errorf("unknown result: %s", s)
}

// Stats are the solver counters of one integration.
type Stats struct {
	NumSteps    int `json:"num_steps"`
	NumAccepted int `json:"num_accepted"`
	NumRejected int `json:"num_rejected"`
	NumEvals    int `json:"num_evals"`
	MaxSteps    int `json:"max_steps"`
}

// Solution is a sampled trajectory. Ts and Ys have equal length.
type Solution struct {
	Ts     []float64
	Ys     []State
	Stats  Stats
	Result Result

	// EventTime is set when Result is EventOccurred.
	EventTime float64

	// Cause carries details for failed results, e.g. a dimension mismatch.
	Cause error
}

func (s *Solution) Len() int {
	return len(s.Ts)
}

// Final returns the last saved sample.
func (s *Solution) Final() (float64, State, bool) {
	if len(s.Ts) == 0 {
		return 0, nil, false
	}
	n := len(s.Ts) - 1
	return s.Ts[n], s.Ys[n], true
}

// Err returns nil for OK results and an *IntegrationError otherwise.
func (s *Solution) Err() error {
	base := s.Result.Err()
	if base == nil {
		return nil
	}
	wrapped := base
	if s.Cause != nil {
		wrapped = fmt.Errorf("%w: %w", base, s.Cause)
	}
	e := &IntegrationError{Step: s.Stats.NumSteps, Wrapped: wrapped}
	if t, y, ok := s.Final(); ok {
		e.Time = t
		e.State = y.Clone()
	}
	return e
}

// Append records one sample, copying y.
func (s *Solution) Append(t float64, y State) {
	s.Ts = append(s.Ts, t)
	s.Ys = append(s.Ys, y.Clone())
}

// Component returns the i-th state component across all samples.
func (s *Solution) Component(i int) []float64 {
	out := make([]float64, 0, len(s.Ys))
	for _, y := range s.Ys {
		if i < len(y) {
			out = append(out, y[i])
		}
	}
	return out
}
