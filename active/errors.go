package active

import "errors"

// ErrQueueFull is returned by Post when the target queue has no room.
var ErrQueueFull = errors.New("event queue full")

// ErrUnbound is returned by a Ref that has no target yet
var ErrUnbound = errors.New("poster not bound")

// FatalError reports a condition the runtime cannot recover from
type FatalError struct {
	Object string
	Sig    Signal
	Err    error
}

func (e *FatalError) Error() string {
	return "active object " + e.Object + ": " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

var fatalHandler = func(err error) {
	panic(err)
}

// SetFatalHandler replaces the action taken by Fatal. The default panics.
func SetFatalHandler(h func(error)) {
	fatalHandler = h
}

// Fatal hands err to the installed fatal handler
func Fatal(err error) {
	fatalHandler(err)
}

// MustPost posts e to p and calls Fatal if the post fails
func MustPost(p Poster, e Event) {
	if err := p.Post(e); err != nil {
		Fatal(err)
	}
}
