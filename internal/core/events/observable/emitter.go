package observable

import (
	"sort"
	"sync"
	"sync/atomic"
)

var _ Observable = (*Emitter)(nil)

// entry is one registration of a subscription under one event name.
type entry struct {
	sub     *Subscription
	removed atomic.Bool
}

// Emitter is the default Observable implementation. The zero value is ready to
// use; embed it by value and never copy it after first use.
//
// Listener bookkeeping is guarded by a mutex, handlers always run outside of it,
// so handlers may freely subscribe, unsubscribe or trigger again.
type Emitter struct {
	mu        sync.Mutex
	listeners map[string][]*entry
	refs      map[*Subscription]int
}

// On subscribes handler to the events named in events.
func (e *Emitter) On(events string, handler Handler, context ...any) *Subscription {
	return e.subscribe(events, handler, context, false)
}

// Once subscribes handler for a single delivery across all the named events.
func (e *Emitter) Once(events string, handler Handler, context ...any) *Subscription {
	return e.subscribe(events, handler, context, true)
}

func (e *Emitter) subscribe(events string, handler Handler, context []any, once bool) *Subscription {
	names := SplitEvents(events)
	sub := newSubscription(e, names, handler, context, once)
	if len(names) == 0 || handler == nil {
		sub.deactivate()
		return sub
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]*entry)
		e.refs = make(map[*Subscription]int)
	}
	for _, name := range names {
		e.listeners[name] = append(e.listeners[name], &entry{sub: sub})
		e.refs[sub]++
	}
	return sub
}

// Off removes every registration matching events, sub and context.
func (e *Emitter) Off(events string, sub *Subscription, context any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.listeners) == 0 {
		return
	}

	names := SplitEvents(events)
	if len(names) == 0 {
		names = make([]string, 0, len(e.listeners))
		for name := range e.listeners {
			names = append(names, name)
		}
	}

	for _, name := range names {
		list, ok := e.listeners[name]
		if !ok {
			continue
		}
		// Snapshots taken by Trigger share the old backing array, build a new one.
		kept := make([]*entry, 0, len(list))
		for _, en := range list {
			if !matches(en.sub, sub, context) {
				kept = append(kept, en)
				continue
			}
			en.removed.Store(true)
			e.release(en.sub)
		}
		if len(kept) == 0 {
			delete(e.listeners, name)
		} else {
			e.listeners[name] = kept
		}
	}
}

// release drops one registration of sub; the subscription becomes inactive
// once none are left. Must be called with e.mu held.
func (e *Emitter) release(sub *Subscription) {
	e.refs[sub]--
	if e.refs[sub] <= 0 {
		delete(e.refs, sub)
		sub.deactivate()
	}
}

func matches(candidate, sub *Subscription, context any) bool {
	if sub != nil && candidate != sub {
		return false
	}
	if context != nil && candidate.context != context {
		return false
	}
	return true
}

// Trigger synchronously delivers args to the listeners of event, followed by
// the listeners of AllEvents. Delivery follows subscription order.
func (e *Emitter) Trigger(event string, args ...any) {
	e.mu.Lock()
	direct := append([]*entry(nil), e.listeners[event]...)
	var catchAll []*entry
	if event != AllEvents {
		catchAll = append([]*entry(nil), e.listeners[AllEvents]...)
	}
	e.mu.Unlock()

	for _, en := range direct {
		e.deliver(en, args)
	}
	if len(catchAll) == 0 {
		return
	}
	named := make([]any, 0, len(args)+1)
	named = append(named, event)
	named = append(named, args...)
	for _, en := range catchAll {
		e.deliver(en, named)
	}
}

func (e *Emitter) deliver(en *entry, args []any) {
	if en.removed.Load() {
		return
	}
	if en.sub.once {
		if !en.sub.claim() {
			return
		}
		e.Off("", en.sub, nil)
	}
	en.sub.handler(args...)
}

// ListenerCount returns the number of handlers subscribed to event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}

// Events returns the sorted names of all events with at least one listener.
func (e *Emitter) Events() []string {
	e.mu.Lock()
	names := make([]string, 0, len(e.listeners))
	for name := range e.listeners {
		names = append(names, name)
	}
	e.mu.Unlock()
	sort.Strings(names)
	return names
}
