package registry

import (
	"fmt"
	"sort"

	"github.com/san-kum/cowell/pkg/dynamo"
	"github.com/san-kum/cowell/pkg/gravity"
	"github.com/san-kum/cowell/pkg/ode"
)

// Registry maps the names used in scenario files and flags to library values.
type Registry struct {
	dynamics    map[string]func() dynamo.Terms
	solvers     map[string]func() *ode.Tableau
	events      map[string]func() dynamo.Event
	controllers map[string]func(rtol, atol float64) ode.StepSizeController
}

func NewRegistry() *Registry {
	r := &Registry{
		dynamics:    make(map[string]func() dynamo.Terms),
		solvers:     make(map[string]func() *ode.Tableau),
		events:      make(map[string]func() dynamo.Event),
		controllers: make(map[string]func(rtol, atol float64) ode.StepSizeController),
	}

	r.dynamics["two_body"] = gravity.TwoBody
	r.dynamics["j2"] = gravity.J2Perturbed

	r.solvers["dopri5"] = ode.Dopri5
	r.solvers["bs32"] = ode.BS32
	r.solvers["heun"] = ode.Heun
	r.solvers["rk4"] = ode.RK4
	r.solvers["euler"] = ode.Euler

	r.events["radius_below"] = gravity.RadiusBelow

	r.controllers["pid"] = func(rtol, atol float64) ode.StepSizeController { return ode.NewPID(rtol, atol) }
	r.controllers["constant"] = func(rtol, atol float64) ode.StepSizeController { return ode.ConstantStepSize{} }

	return r
}

// RegisterDynamics adds or replaces a vector field.
func (r *Registry) RegisterDynamics(name string, fn func() dynamo.Terms) {
	r.dynamics[name] = fn
}

func (r *Registry) GetDynamics(name string) (dynamo.Terms, error) {
	fn, ok := r.dynamics[name]
	if !ok {
		return nil, fmt.Errorf("unknown dynamics: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetSolver(name string) (*ode.Tableau, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
	return fn(), nil
}

// GetEvent resolves an event name; "" and "none" mean no event.
func (r *Registry) GetEvent(name string) (dynamo.EventOption, error) {
	if name == "" || name == "none" {
		return dynamo.NoEvent(), nil
	}
	fn, ok := r.events[name]
	if !ok {
		return dynamo.NoEvent(), fmt.Errorf("unknown event: %s", name)
	}
	return dynamo.SomeEvent(fn()), nil
}

func (r *Registry) GetController(name string, rtol, atol float64) (ode.StepSizeController, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(rtol, atol), nil
}

func (r *Registry) ListDynamics() []string    { return sortedKeys(r.dynamics) }
func (r *Registry) ListSolvers() []string     { return sortedKeys(r.solvers) }
func (r *Registry) ListEvents() []string      { return sortedKeys(r.events) }
func (r *Registry) ListControllers() []string { return sortedKeys(r.controllers) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
