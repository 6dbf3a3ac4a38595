package active

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"exerig/core"
)

const (
	pingSig Signal = UserSig + iota
	pongSig
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Dispatch(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) sigs() []Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Signal, len(r.events))
	for i, e := range r.events {
		out[i] = e.Sig
	}
	return out
}

// queue is a Poster that only collects, so tests can drive dispatch by hand
type queue struct {
	events []Event
}

func (q *queue) Post(e Event) error {
	q.events = append(q.events, e)
	return nil
}

func TestActiveFIFO(t *testing.T) {
	rec := &recorder{}
	a := New("test", 8, rec)

	for i := 0; i < 5; i++ {
		if err := a.Post(Event{Sig: pingSig, Data: i}); err != nil {
			t.Fatalf("Post %d failed: %v", i, err)
		}
	}
	if n := a.DispatchPending(); n != 5 {
		t.Fatalf("Expected 5 dispatched events, got %d", n)
	}
	for i, e := range rec.events {
		if e.Data.(int) != i {
			t.Errorf("Expected event %d at position %d, got %v", i, i, e.Data)
		}
	}
}

func TestActiveQueueFull(t *testing.T) {
	a := New("motors", 2, &recorder{})

	a.Post(Event{Sig: pingSig})
	a.Post(Event{Sig: pingSig})
	err := a.Post(Event{Sig: pongSig})
	if err == nil {
		t.Fatal("Expected error posting to a full queue")
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
	var fe *FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected *FatalError, got %T", err)
	}
	if fe.Object != "motors" || fe.Sig != pongSig {
		t.Errorf("Expected object motors and pong signal, got %s and %d", fe.Object, fe.Sig)
	}
}

func TestMustPostCallsFatal(t *testing.T) {
	var got error
	SetFatalHandler(func(err error) { got = err })
	defer SetFatalHandler(func(err error) { panic(err) })

	a := New("ui", 1, &recorder{})
	MustPost(a, Event{Sig: pingSig})
	if got != nil {
		t.Fatalf("Fatal called for a post that fit: %v", got)
	}
	MustPost(a, Event{Sig: pingSig})
	if !errors.Is(got, ErrQueueFull) {
		t.Errorf("Expected fatal ErrQueueFull, got %v", got)
	}
}

func TestDefaultFatalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic from default fatal handler")
		}
	}()
	a := New("ui", 1, &recorder{})
	MustPost(a, Event{Sig: pingSig})
	MustPost(a, Event{Sig: pingSig})
}

func TestActiveRun(t *testing.T) {
	rec := &recorder{}
	a := New("worker", 4, rec)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	a.Post(Event{Sig: pingSig})
	a.Post(Event{Sig: pongSig})

	deadline := time.After(time.Second)
	for len(rec.sigs()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("Timed out, dispatched %v", rec.sigs())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	expected := []Signal{InitSig, pingSig, pongSig}
	for i, sig := range rec.sigs() {
		if sig != expected[i] {
			t.Errorf("Expected signal %d at position %d, got %d", expected[i], i, sig)
		}
	}
}

func TestTimeEventOneShot(t *testing.T) {
	core.ResetTimers()
	q := &queue{}
	te := NewTimeEvent(TimeoutSig, q)

	te.Arm(10, 0)
	for i := 0; i < 9; i++ {
		core.Tick()
	}
	if len(q.events) != 0 {
		t.Fatalf("Expected no timeout before 10 ticks, got %d", len(q.events))
	}
	core.Tick()
	if len(q.events) != 1 || q.events[0].Sig != TimeoutSig {
		t.Fatalf("Expected one timeout at tick 10, got %v", q.events)
	}
	for i := 0; i < 50; i++ {
		core.Tick()
	}
	if len(q.events) != 1 {
		t.Errorf("One-shot fired %d times", len(q.events))
	}
	if te.Armed() {
		t.Error("One-shot still armed after firing")
	}
}

func TestTimeEventPeriodic(t *testing.T) {
	core.ResetTimers()
	q := &queue{}
	te := NewTimeEvent(TimeoutSig, q)

	te.Arm(5, 10)
	for i := 0; i < 45; i++ {
		core.Tick()
	}
	// ticks 5, 15, 25, 35, 45
	if len(q.events) != 5 {
		t.Errorf("Expected 5 timeouts, got %d", len(q.events))
	}
	if !te.Disarm() {
		t.Error("Periodic event not armed before Disarm")
	}
	for i := 0; i < 50; i++ {
		core.Tick()
	}
	if len(q.events) != 5 {
		t.Errorf("Expected no timeouts after Disarm, got %d", len(q.events))
	}
}

func TestTimeEventDisarm(t *testing.T) {
	core.ResetTimers()
	q := &queue{}
	te := NewTimeEvent(TimeoutSig, q)

	te.Arm(10, 0)
	core.Tick()
	te.Disarm()
	for i := 0; i < 20; i++ {
		core.Tick()
	}
	if len(q.events) != 0 {
		t.Errorf("Disarmed event fired %d times", len(q.events))
	}
}

func TestTimeEventRearm(t *testing.T) {
	core.ResetTimers()
	q := &queue{}
	te := NewTimeEvent(TimeoutSig, q)

	te.Arm(10, 0)
	for i := 0; i < 5; i++ {
		core.Tick()
	}
	te.Arm(10, 0)
	for i := 0; i < 9; i++ {
		core.Tick()
	}
	if len(q.events) != 0 {
		t.Fatalf("Expected rearm to push the timeout out, got %d events", len(q.events))
	}
	core.Tick()
	if len(q.events) != 1 {
		t.Errorf("Expected a single timeout after rearm, got %d", len(q.events))
	}
}

func TestTimeEventWithActive(t *testing.T) {
	core.ResetTimers()
	rec := &recorder{}
	a := New("owner", 4, rec)
	te := NewTimeEvent(TimeoutSig, a)

	te.Arm(1, 0)
	core.Tick()
	if a.Pending() != 1 {
		t.Fatalf("Expected one queued timeout, got %d", a.Pending())
	}
	a.DispatchPending()
	if sigs := rec.sigs(); len(sigs) != 1 || sigs[0] != TimeoutSig {
		t.Errorf("Expected a dispatched timeout, got %v", sigs)
	}
}

// countPoster counts posts from the dispatch goroutine
type countPoster struct {
	mu sync.Mutex
	n  int
}

func (c *countPoster) Post(Event) error {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return nil
}

func (c *countPoster) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestTimeEventArmWhileTicking(t *testing.T) {
	core.ResetTimers()
	defer core.ResetTimers()
	owner := &countPoster{}
	te := NewTimeEvent(TimeoutSig, owner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunTicker(ctx, 50*time.Microsecond)
		close(done)
	}()

	deadline := time.Now().Add(20 * time.Millisecond)
	for time.Now().Before(deadline) {
		te.Arm(1, 1)
	}
	cancel()
	<-done

	if !te.Armed() {
		t.Fatal("Periodic event not pending after rearming")
	}
	te.Disarm()

	// The schedule is still intact: a fresh one-shot fires exactly once
	before := owner.count()
	te.Arm(2, 0)
	for i := 0; i < 5; i++ {
		core.Tick()
	}
	if got := owner.count() - before; got != 1 {
		t.Errorf("Expected one timeout after rearming, got %d", got)
	}
	if te.Armed() {
		t.Error("One-shot still pending after firing")
	}
}

func TestRef(t *testing.T) {
	var r Ref
	if err := r.Post(Event{Sig: UserSig}); !errors.Is(err, ErrUnbound) {
		t.Errorf("Expected ErrUnbound, got %v", err)
	}

	q := &queue{}
	r.Bind(q)
	if err := r.Post(Event{Sig: UserSig, Data: 7}); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if len(q.events) != 1 || q.events[0].Data != 7 {
		t.Errorf("Expected forwarded event, got %+v", q.events)
	}
}
