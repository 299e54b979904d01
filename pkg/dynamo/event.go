package dynamo

// Condition is the scalar event function. Integration terminates once it
// reaches zero or goes negative.
type Condition func(t float64, y State, args Args) float64

// Event terminates integration when its condition fires.
type Event struct {
	Name string
	Cond Condition
}

// NewEvent returns a named event.
func NewEvent(name string, cond Condition) Event {
	return Event{Name: name, Cond: cond}
}

// Predicate turns a boolean condition into a Condition: true maps to -1 and
// false to +1. The crossing time is then located to bisection precision only.
func Predicate(fn func(t float64, y State, args Args) bool) Condition {
	return func(t float64, y State, args Args) float64 {
		if fn(t, y, args) {
			return -1
		}
		return 1
	}
}

// EventOption is an event that may be absent.
type EventOption struct {
	ev  Event
	set bool
}

func SomeEvent(ev Event) EventOption {
	return EventOption{ev: ev, set: ev.Cond != nil}
}

func NoEvent() EventOption {
	return EventOption{}
}

func (o EventOption) Get() (Event, bool) {
	return o.ev, o.set
}

func (o EventOption) IsSet() bool {
	return o.set
}
