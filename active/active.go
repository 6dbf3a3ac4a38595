package active

import (
	"context"

	"exerig/core"
)

// Active is one active object: a bounded FIFO queue pumped by a single
// worker goroutine.
type Active struct {
	name    string
	queue   chan Event
	handler Handler
}

// New returns an active object with room for queueLen pending events
func New(name string, queueLen int, h Handler) *Active {
	if queueLen < 1 {
		queueLen = 1
	}
	return &Active{
		name:    name,
		queue:   make(chan Event, queueLen),
		handler: h,
	}
}

// Name returns the object name
func (a *Active) Name() string {
	return a.name
}

// Post queues e without blocking. A full queue yields a *FatalError
// wrapping ErrQueueFull.
func (a *Active) Post(e Event) error {
	select {
	case a.queue <- e:
		return nil
	default:
		core.RecordTiming(core.EvtQueueFull, 0, core.GetTime(), uint32(e.Sig), 0)
		return &FatalError{Object: a.name, Sig: e.Sig, Err: ErrQueueFull}
	}
}

// Pending returns the number of queued events
func (a *Active) Pending() int {
	return len(a.queue)
}

// Run dispatches InitSig and then every queued event in order until ctx
// is done. It is the object's only worker.
func (a *Active) Run(ctx context.Context) error {
	a.handler.Dispatch(Event{Sig: InitSig})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-a.queue:
			a.handler.Dispatch(e)
		}
	}
}

// Start runs the worker in its own goroutine
func (a *Active) Start(ctx context.Context) {
	go a.Run(ctx)
}

// DispatchPending synchronously dispatches whatever is queued and returns
// the number of events handled. Used when the caller is the worker, as in
// single-threaded simulation loops.
func (a *Active) DispatchPending() int {
	n := 0
	for {
		select {
		case e := <-a.queue:
			a.handler.Dispatch(e)
			n++
		default:
			return n
		}
	}
}
