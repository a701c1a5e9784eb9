// Package event provides a small publish-subscribe bus with per-subscription
// priority, debounce, throttle and once semantics. The manager emits domain
// events (add, remove, update, move, change) through it; consumers subscribe
// without coupling to the mutation path.
package event

import (
	"log"
	"sort"
	"sync"
	"time"
)

// Handler receives the payload of an emitted event.
type Handler func(payload any)

// Options tunes a single subscription.
type Options struct {
	// Once unregisters the subscription after its first invocation
	// (after any debounce or throttle gating).
	Once bool
	// Debounce defers invocation until no emit has arrived for the given
	// window; every emit restarts the timer and replaces the pending
	// payload (last emit wins).
	Debounce time.Duration
	// Throttle drops emits arriving within the window of the last
	// accepted invocation.
	Throttle time.Duration
	// Priority orders handlers within one emit, highest first. Ties keep
	// subscription order.
	Priority int
}

type subscription struct {
	bus     *Bus
	event   string
	handler Handler
	opts    Options
	seq     int

	timer    *time.Timer // pending debounce, nil when idle
	timerGen int         // bumped on every reschedule and cancel; stale callbacks bail
	pending  any
	lastRun  time.Time
	hasRun   bool
	removed  bool
}

// Bus is a publish-subscribe hub keyed by event name. Safe for concurrent
// use; debounce timers fire on their own goroutines.
type Bus struct {
	mu      sync.Mutex
	subs    map[string][]*subscription
	nextSeq int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]*subscription)}
}

// On registers a handler for an event and returns its unsubscribe function.
// Unsubscribing cancels any pending debounce timer.
func (b *Bus) On(event string, handler Handler, opts Options) (off func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{
		bus:     b,
		event:   event,
		handler: handler,
		opts:    opts,
		seq:     b.nextSeq,
	}
	b.nextSeq++
	b.subs[event] = append(b.subs[event], sub)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.remove(sub)
	}
}

// Off removes every subscription for the event. Pending debounce timers are
// cancelled.
func (b *Bus) Off(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[event] {
		sub.removed = true
		sub.cancelTimer()
	}
	delete(b.subs, event)
}

// HandlerCount returns the number of live subscriptions for an event.
func (b *Bus) HandlerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[event])
}

// Emit delivers a payload to every handler subscribed to the event, highest
// priority first. Handler panics are logged and isolated; they never abort
// sibling handlers or the emit itself.
func (b *Bus) Emit(event string, payload any) {
	b.mu.Lock()
	ordered := make([]*subscription, len(b.subs[event]))
	copy(ordered, b.subs[event])
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].opts.Priority > ordered[j].opts.Priority
	})
	b.mu.Unlock()

	for _, sub := range ordered {
		sub.dispatch(payload)
	}
}

// remove unlinks a subscription and cancels its timer. Callers hold b.mu.
func (b *Bus) remove(sub *subscription) {
	if sub.removed {
		return
	}
	sub.removed = true
	sub.cancelTimer()

	subs := b.subs[sub.event]
	for i, cur := range subs {
		if cur == sub {
			b.subs[sub.event] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.event]) == 0 {
		delete(b.subs, sub.event)
	}
}

// cancelTimer stops a pending debounce. Callers hold b.mu. The generation
// bump invalidates any callback that already left AfterFunc but has not yet
// taken the lock.
func (s *subscription) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.pending = nil
	}
	s.timerGen++
}

// dispatch routes one emit through the subscription's gating options.
func (s *subscription) dispatch(payload any) {
	s.bus.mu.Lock()
	if s.removed {
		s.bus.mu.Unlock()
		return
	}

	if s.opts.Debounce > 0 {
		// Restart the quiescence window; the newest payload wins. Stop is
		// best-effort: an expired timer's callback may already be on its way
		// to the lock, so the generation stamp is what actually retires it.
		if s.timer != nil {
			s.timer.Stop()
		}
		s.pending = payload
		s.timerGen++
		gen := s.timerGen
		s.timer = time.AfterFunc(s.opts.Debounce, func() { s.fireDebounced(gen) })
		s.bus.mu.Unlock()
		return
	}

	fire := s.gate()
	s.bus.mu.Unlock()

	if fire {
		invoke(s.handler, payload)
	}
}

// fireDebounced runs when the debounce window elapses without a new emit.
// gen identifies the timer that scheduled this call; a mismatch means the
// subscription was rescheduled or cancelled while the callback was in flight,
// and the pending payload now belongs to a newer timer.
func (s *subscription) fireDebounced(gen int) {
	s.bus.mu.Lock()
	if s.removed || gen != s.timerGen {
		s.bus.mu.Unlock()
		return
	}
	payload := s.pending
	s.timer = nil
	s.pending = nil

	fire := s.gate()
	s.bus.mu.Unlock()

	if fire {
		invoke(s.handler, payload)
	}
}

// gate applies throttle and once bookkeeping, reporting whether the handler
// should run. Callers hold bus.mu.
func (s *subscription) gate() bool {
	now := time.Now()
	if s.opts.Throttle > 0 && s.hasRun && now.Sub(s.lastRun) < s.opts.Throttle {
		return false
	}
	s.lastRun = now
	s.hasRun = true
	if s.opts.Once {
		s.bus.remove(s)
	}
	return true
}

// invoke calls a handler, converting panics into log lines.
func invoke(handler Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event: handler panic: %v", r)
		}
	}()
	handler(payload)
}
