package observable

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// AllEvents is the catch-all event name. Its listeners receive the emitted
// event name as the first argument, followed by the event arguments.
const AllEvents = "all"

// Handler is a listener callback invoked synchronously by Trigger.
type Handler func(args ...any)

// Observable is the event contract shared by every component and by IPC
// connections.
//
// Event specs passed to On, Once and Off may name several events separated by
// whitespace ("change name"). Subscriptions may be registered on behalf of a
// context, so that an observer bound to many emitters can drop all of its
// subscriptions with a single Off call per emitter. Contexts are compared with
// ==, use pointers or other comparable values.
type Observable interface {
	// On subscribes handler to every event named in events.
	On(events string, handler Handler, context ...any) *Subscription
	// Once is like On, but the subscription is removed right before its first delivery.
	Once(events string, handler Handler, context ...any) *Subscription
	// Off removes matching subscriptions. Empty events, nil sub and nil context act as wildcards.
	// Removing a subscription that is not registered is a no-op.
	Off(events string, sub *Subscription, context any)
	// Trigger delivers args to a snapshot of the listeners of event.
	Trigger(event string, args ...any)
}

// Subscription is the handle of a registered handler. Go functions are not
// comparable, so the handle stands in for the handler when unsubscribing.
type Subscription struct {
	id      string
	events  []string
	handler Handler
	context any
	once    bool
	emitter *Emitter

	mu     sync.Mutex
	active bool
}

// ID returns the unique identifier of the subscription.
func (s *Subscription) ID() string { return s.id }

// Events returns the event names the subscription listens to.
func (s *Subscription) Events() []string {
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

// Context returns the context the subscription was registered with.
func (s *Subscription) Context() any { return s.context }

// IsActive reports whether the subscription is still registered.
func (s *Subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Cancel removes the subscription from its emitter. Multiple calls are safe.
func (s *Subscription) Cancel() {
	if s == nil || s.emitter == nil {
		return
	}
	s.emitter.Off("", s, nil)
}

// claim marks a once-subscription as consumed. It returns false if the
// subscription was already consumed or cancelled.
func (s *Subscription) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	if s.once {
		s.active = false
	}
	return true
}

func (s *Subscription) deactivate() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// SplitEvents splits a whitespace separated event list into its names.
func SplitEvents(events string) []string {
	return strings.Fields(events)
}

func newSubscription(e *Emitter, events []string, handler Handler, context []any, once bool) *Subscription {
	s := &Subscription{
		id:      uuid.NewString(),
		events:  events,
		handler: handler,
		once:    once,
		emitter: e,
		active:  true,
	}
	if len(context) > 0 {
		s.context = context[0]
	}
	return s
}
