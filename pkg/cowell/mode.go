package cowell

import (
	"fmt"
	"strings"

	"github.com/san-kum/cowell/pkg/dynamo"
)

// Mode names one of the four entry points.
type Mode string

const (
	ModeFixed    Mode = "fixed"
	ModeAdaptive Mode = "adaptive"
	ModeCustom   Mode = "custom"
	ModeFinal    Mode = "final"
)

func Modes() []Mode {
	return []Mode{ModeFixed, ModeAdaptive, ModeCustom, ModeFinal}
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode: %s", s)
}

// Request is a mode together with the inputs the entry points need. Dt is
// used by ModeFixed and Ts by ModeCustom.
type Request struct {
	Mode Mode
	X0   dynamo.State
	T1   float64
	Dt   float64
	Ts   []float64
}

// Propagate dispatches r to its entry point.
func Propagate(d *Dynamics, r Request, opts ...PropagateOption) (*dynamo.Solution, error) {
	switch r.Mode {
	case ModeFixed:
		return FixedSteps(d, r.X0, r.T1, r.Dt, opts...), nil
	case ModeAdaptive, "":
		return AdaptiveSteps(d, r.X0, r.T1, opts...), nil
	case ModeCustom:
		return CustomSteps(d, r.X0, r.T1, r.Ts, opts...), nil
	case ModeFinal:
		return ToFinal(d, r.X0, r.T1, opts...), nil
	}
	return nil, fmt.Errorf("unknown mode: %s", r.Mode)
}
