package bus

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/yame/internal/core/observability/log"
)

type subscription struct {
	id        string
	topic     string
	eventType string
	handler   EventHandler
	active    atomic.Bool
	bus       *inMemoryBus
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) Topic() string     { return s.topic }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active.Load() }
func (s *subscription) Cancel()           { s.bus.remove(s) }

// inMemoryBus is the EventBus implementation returned by New.
type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: topic -> eventType -> subscriptions in registration order
	handlers  map[string]map[string][]*subscription
	observers []Observer
	metrics   Metrics
}

// New creates an empty EventBus.
func New() EventBus {
	return &inMemoryBus{
		handlers: make(map[string]map[string][]*subscription),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver("", event)
}

func (b *inMemoryBus) PublishToTopic(topic string, event Event) error {
	return b.deliver(topic, event)
}

func (b *inMemoryBus) PublishBatch(topic string, events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.deliver(topic, e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) Subscription {
	return b.SubscribeTopic("", eventType, handler)
}

func (b *inMemoryBus) SubscribeTopic(topic, eventType string, handler EventHandler) Subscription {
	s := &subscription{
		id:        uuid.NewString(),
		topic:     topic,
		eventType: eventType,
		handler:   handler,
		bus:       b,
	}
	if handler == nil {
		return s
	}
	s.active.Store(true)

	b.mu.Lock()
	defer b.mu.Unlock()
	types := b.handlers[topic]
	if types == nil {
		types = make(map[string][]*subscription)
		b.handlers[topic] = types
	}
	types[eventType] = append(types[eventType], s)
	return s
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) {
	if sub == nil {
		return
	}
	sub.Cancel()
}

func (b *inMemoryBus) remove(s *subscription) {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	types := b.handlers[s.topic]
	list := types[s.eventType]
	kept := make([]*subscription, 0, len(list))
	for _, other := range list {
		if other != s {
			kept = append(kept, other)
		}
	}
	if len(kept) == 0 {
		delete(types, s.eventType)
		if len(types) == 0 {
			delete(b.handlers, s.topic)
		}
		return
	}
	types[s.eventType] = kept
}

func (b *inMemoryBus) Topics() []TopicInfo {
	b.mu.RLock()
	out := make([]TopicInfo, 0, len(b.handlers))
	for name, types := range b.handlers {
		info := TopicInfo{Name: name, EventTypes: len(types)}
		for _, subs := range types {
			info.Subs += len(subs)
		}
		out = append(out, info)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (b *inMemoryBus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers = append(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, o := range b.observers {
		if o == obs {
			b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
			return
		}
	}
}

func (b *inMemoryBus) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) deliver(topic string, event Event) error {
	start := time.Now()
	event.Topic = topic
	if event.Timestamp.IsZero() {
		event.Timestamp = start
	}

	b.mu.RLock()
	var subs []*subscription
	if types := b.handlers[topic]; types != nil {
		subs = append(subs, types[event.Type]...)
		if event.Type != AnyType {
			subs = append(subs, types[AnyType]...)
		}
	}
	observers := append([]Observer(nil), b.observers...)
	b.mu.RUnlock()

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.active.Load() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(delivered)
	if all != nil {
		b.metrics.Errors++
	}
	b.mu.Unlock()

	took := time.Since(start)
	for _, obs := range observers {
		obs.OnDelivered(topic, event, delivered, all, took)
	}
	return all
}

// FilterHandler wraps handler so it only sees events accepted by every filter.
func FilterHandler(handler EventHandler, filters ...EventFilter) EventHandler {
	return func(event Event) error {
		for _, f := range filters {
			if !f(event) {
				return nil
			}
		}
		return handler(event)
	}
}

// LogObserver logs every delivery at debug level and failed deliveries as warnings.
type LogObserver struct {
	logger log.Log
}

func NewLogObserver(logger log.Log) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnDelivered(topic string, event Event, handlers int, err error, took time.Duration) {
	fields := []log.Field{
		log.String("topic", topic),
		log.String("event", event.Type),
		log.String("source", event.Source),
		log.Int("handlers", handlers),
		log.Duration("took", took),
	}
	if err != nil {
		o.logger.Warn("Event handlers failed", append(fields, log.Error(err))...)
		return
	}
	o.logger.Debug("Event delivered", fields...)
}
