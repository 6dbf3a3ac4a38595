// Package active is the event dispatch runtime: every active object owns
// one FIFO queue and one worker that dispatches events to completion, one
// at a time. Time events built on the core tick scheduler post timeouts
// back to their owner.
package active

// Signal identifies the kind of an Event
type Signal uint16

// Reserved signals. Application signals start at UserSig.
const (
	InitSig Signal = iota
	TimeoutSig
	UserSig
)

// Event is passed by value; Data carries the signal's payload, if any.
type Event struct {
	Sig  Signal
	Data any
}

// Handler processes one event to completion and must not block.
type Handler interface {
	Dispatch(e Event)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(e Event)

// Dispatch calls f(e)
func (f HandlerFunc) Dispatch(e Event) {
	f(e)
}

// Poster accepts events for later dispatch
type Poster interface {
	Post(e Event) error
}

// Ref is a Poster whose target is bound after construction, for active
// objects that post to each other.
type Ref struct {
	target Poster
}

// Bind sets the target of r. It must happen before the first Post.
func (r *Ref) Bind(p Poster) {
	r.target = p
}

// Post forwards e to the bound target
func (r *Ref) Post(e Event) error {
	if r.target == nil {
		return ErrUnbound
	}
	return r.target.Post(e)
}
