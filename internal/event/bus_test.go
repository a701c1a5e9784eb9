package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/nikbrunner/markdex/internal/event"
)

// recorder collects handler invocations across goroutines.
type recorder struct {
	mu    sync.Mutex
	calls []any
}

func (r *recorder) handler(label string) event.Handler {
	return func(payload any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, label)
	}
}

func (r *recorder) record(payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, payload)
}

func (r *recorder) snapshot() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any{}, r.calls...)
}

func TestBus_EmitDeliversPayload(t *testing.T) {
	bus := event.New()
	rec := &recorder{}

	bus.On("change", rec.record, event.Options{})
	bus.Emit("change", "payload")

	calls := rec.snapshot()
	if len(calls) != 1 || calls[0] != "payload" {
		t.Errorf("expected [payload], got %v", calls)
	}
}

func TestBus_PriorityOrdering(t *testing.T) {
	bus := event.New()
	rec := &recorder{}

	bus.On("change", rec.handler("low"), event.Options{Priority: 1})
	bus.On("change", rec.handler("high"), event.Options{Priority: 10})
	bus.On("change", rec.handler("mid-a"), event.Options{Priority: 5})
	bus.On("change", rec.handler("mid-b"), event.Options{Priority: 5})

	bus.Emit("change", nil)

	want := []any{"high", "mid-a", "mid-b", "low"}
	calls := rec.snapshot()
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(calls))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d: expected %v, got %v (stable tie-break required)", i, want[i], calls[i])
		}
	}
}

func TestBus_Once(t *testing.T) {
	bus := event.New()
	rec := &recorder{}

	bus.On("add", rec.handler("once"), event.Options{Once: true})

	bus.Emit("add", nil)
	bus.Emit("add", nil)

	if calls := rec.snapshot(); len(calls) != 1 {
		t.Errorf("expected exactly 1 invocation, got %d", len(calls))
	}
	if bus.HandlerCount("add") != 0 {
		t.Error("expected once handler to self-unregister")
	}
}

func TestBus_DebounceLastEmitWins(t *testing.T) {
	bus := event.New()
	rec := &recorder{}

	bus.On("sync", rec.record, event.Options{Debounce: 30 * time.Millisecond})

	bus.Emit("sync", "first")
	bus.Emit("sync", "second")
	bus.Emit("sync", "third")

	time.Sleep(60 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected 1 debounced invocation, got %d", len(calls))
	}
	if calls[0] != "third" {
		t.Errorf("expected last payload to win, got %v", calls[0])
	}
}

func TestBus_DebounceResetsOnEmit(t *testing.T) {
	bus := event.New()
	rec := &recorder{}

	bus.On("sync", rec.record, event.Options{Debounce: 40 * time.Millisecond})

	bus.Emit("sync", "a")
	time.Sleep(25 * time.Millisecond)
	// Still inside the window: reschedules instead of firing.
	bus.Emit("sync", "b")
	time.Sleep(25 * time.Millisecond)

	if calls := rec.snapshot(); len(calls) != 0 {
		t.Fatalf("expected timer to have been reset, got %v", calls)
	}

	time.Sleep(30 * time.Millisecond)
	if calls := rec.snapshot(); len(calls) != 1 || calls[0] != "b" {
		t.Errorf("expected single fire with payload b, got %v", rec.snapshot())
	}
}

func TestBus_DebounceRescheduleAcrossExpiry(t *testing.T) {
	bus := event.New()
	rec := &recorder{}

	bus.On("sync", rec.record, event.Options{Debounce: time.Millisecond})

	// Hammer the expiry boundary: the second emit of each pair lands right
	// around the moment the first emit's timer fires, so the callback and the
	// reschedule race for the lock. A stale callback must not consume the new
	// pending payload and leave a nil behind for the fresh timer.
	for i := 0; i < 500; i++ {
		bus.Emit("sync", "first")
		time.Sleep(time.Millisecond)
		bus.Emit("sync", "second")
		time.Sleep(time.Millisecond / 2)
	}
	time.Sleep(10 * time.Millisecond)

	for i, call := range rec.snapshot() {
		if call == nil {
			t.Fatalf("call %d: handler received nil payload nobody emitted", i)
		}
		if call != "first" && call != "second" {
			t.Fatalf("call %d: unexpected payload %v", i, call)
		}
	}
}

func TestBus_ThrottleDropsRapidEmits(t *testing.T) {
	bus := event.New()
	rec := &recorder{}

	bus.On("hover", rec.record, event.Options{Throttle: 50 * time.Millisecond})

	bus.Emit("hover", "accepted")
	bus.Emit("hover", "dropped")

	if calls := rec.snapshot(); len(calls) != 1 || calls[0] != "accepted" {
		t.Fatalf("expected only the first emit to pass, got %v", calls)
	}

	time.Sleep(70 * time.Millisecond)
	bus.Emit("hover", "after-window")

	if calls := rec.snapshot(); len(calls) != 2 {
		t.Errorf("expected emit after the window to pass, got %v", calls)
	}
}

func TestBus_OffCancelsPendingDebounce(t *testing.T) {
	bus := event.New()
	rec := &recorder{}

	off := bus.On("sync", rec.record, event.Options{Debounce: 30 * time.Millisecond})

	bus.Emit("sync", "pending")
	off()

	time.Sleep(60 * time.Millisecond)

	if calls := rec.snapshot(); len(calls) != 0 {
		t.Errorf("expected cancelled debounce not to fire, got %v", calls)
	}
	if bus.HandlerCount("sync") != 0 {
		t.Error("expected subscription to be removed")
	}
}

func TestBus_OffEvent(t *testing.T) {
	bus := event.New()
	rec := &recorder{}

	bus.On("remove", rec.handler("a"), event.Options{})
	bus.On("remove", rec.handler("b"), event.Options{})

	bus.Off("remove")
	bus.Emit("remove", nil)

	if calls := rec.snapshot(); len(calls) != 0 {
		t.Errorf("expected no calls after Off, got %v", calls)
	}
}

func TestBus_PanicIsolation(t *testing.T) {
	bus := event.New()
	rec := &recorder{}

	bus.On("change", func(any) { panic("boom") }, event.Options{Priority: 10})
	bus.On("change", rec.handler("survivor"), event.Options{})

	bus.Emit("change", nil)

	if calls := rec.snapshot(); len(calls) != 1 {
		t.Error("expected sibling handler to run despite panic")
	}
}

func TestBus_EmitUnknownEventIsNoop(t *testing.T) {
	bus := event.New()
	bus.Emit("nothing-subscribed", nil)
}
