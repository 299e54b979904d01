package cowell

import (
	"fmt"

	"github.com/san-kum/cowell/pkg/dynamo"
)

// Dynamics is the immutable configuration shared by all propagation calls:
// vector field, static arguments and an optional terminating event.
type Dynamics struct {
	terms dynamo.Terms
	args  dynamo.Args
	event dynamo.EventOption
}

type Option func(*Dynamics)

// WithArgs replaces the default {"mu": 1} arguments. The tree is copied.
func WithArgs(args dynamo.Args) Option {
	return func(d *Dynamics) {
		d.args = args.Clone()
		if d.args == nil {
			d.args = dynamo.Args{}
		}
	}
}

// WithEvent stops every propagation when ev fires.
func WithEvent(ev dynamo.Event) Option {
	return func(d *Dynamics) {
		d.event = dynamo.SomeEvent(ev)
	}
}

// New builds a Dynamics. It never fails: a vector field of the wrong shape
// surfaces as an InvalidProblem result on the first propagation.
func New(terms dynamo.Terms, opts ...Option) *Dynamics {
	d := &Dynamics{
		terms: terms,
		args:  dynamo.DefaultArgs(),
		event: dynamo.NoEvent(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFunc is New for a plain vector field function.
func NewFunc(fn func(t float64, y dynamo.State, args dynamo.Args) dynamo.State, opts ...Option) *Dynamics {
	return New(dynamo.ODETerm(fn), opts...)
}

func (d *Dynamics) Terms() dynamo.Terms {
	return d.terms
}

// Args returns a copy of the arguments.
func (d *Dynamics) Args() dynamo.Args {
	return d.args.Clone()
}

func (d *Dynamics) Event() (dynamo.Event, bool) {
	return d.event.Get()
}

func (d *Dynamics) String() string {
	ev := "none"
	if e, ok := d.event.Get(); ok {
		ev = e.Name
		if ev == "" {
			ev = "unnamed"
		}
	}
	return fmt.Sprintf("dynamics(args=%v, event=%s)", d.args, ev)
}
