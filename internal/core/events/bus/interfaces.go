package bus

import "time"

// AnyType subscribes a handler to every event type of a topic.
const AnyType = "*"

// EventBus is a thread-safe, in-process pub/sub bus carrying component events
// to observers that live outside the component tree (undo history, dirty
// tracking, remote views).
//
// - Type-based fan-out: handlers subscribe by Event.Type, or to AnyType.
// - Topics: handlers subscribe within a topic; the default topic is "". A scene
//   document publishes on a topic named after itself.
// - Synchronous delivery: Publish calls handlers in the caller goroutine, in
//   subscription order, on a snapshot taken when Publish starts.
// - Error aggregation: handler errors are joined and returned from Publish.
// - Optional observability: metrics are produced only when observers are registered.
type EventBus interface {
	// Publish delivers event to the subscribers of the default topic.
	Publish(event Event) error
	// PublishToTopic delivers event to the subscribers of topic.
	PublishToTopic(topic string, event Event) error
	// PublishBatch publishes events to topic in order and joins their errors.
	PublishBatch(topic string, events ...Event) error

	// Subscribe registers handler for eventType in the default topic.
	Subscribe(eventType string, handler EventHandler) Subscription
	// SubscribeTopic registers handler for eventType within topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) Subscription
	// Unsubscribe cancels sub. Nil is accepted.
	Unsubscribe(sub Subscription)

	// Topics returns a snapshot of the topics with at least one subscriber, sorted by name.
	Topics() []TopicInfo

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	// Metrics returns the counters accumulated since the bus was created.
	Metrics() Metrics
}

// Event is a message transported by the bus. Args carries the arguments of
// the originating component event, e.g. (path, new, previous) for "change".
type Event struct {
	Type      string
	Source    string
	Topic     string
	Args      []any
	Timestamp time.Time
}

// NewEvent returns an event stamped with the current time.
func NewEvent(typ, source string, args ...any) Event {
	return Event{Type: typ, Source: source, Args: args, Timestamp: time.Now()}
}

type (
	// EventHandler is invoked per delivered event. Returned errors are joined by Publish.
	EventHandler func(event Event) error
	// EventFilter decides whether an event passes a FilterHandler.
	EventFilter func(event Event) bool
)

// Subscription is a handler registered for an event type within a topic.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel()
}

// Observer is notified about deliveries. Observers should return quickly.
type Observer interface {
	OnDelivered(topic string, event Event, handlers int, err error, took time.Duration)
}

// Metrics counts every delivery, with or without observers.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
}

// TopicInfo is a snapshot of one topic.
type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
