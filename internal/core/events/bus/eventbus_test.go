package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/yame/internal/core/observability/log"
)

type testObserver struct {
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnDelivered(_ string, _ Event, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []Event
	sub := b.Subscribe("change", func(e Event) error {
		got = append(got, e)
		return nil
	})
	require.True(t, sub.IsActive())

	require.NoError(t, b.Publish(NewEvent("change", "tint", "hex", "ff00ff", "ffffff")))
	require.NoError(t, b.Publish(NewEvent("name", "tint", "shade", "tint")))

	require.Len(t, got, 1)
	assert.Equal(t, []any{"hex", "ff00ff", "ffffff"}, got[0].Args)
	assert.Equal(t, "tint", got[0].Source)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestTopicsIsolation(t *testing.T) {
	b := New()
	count1, count2 := 0, 0
	b.SubscribeTopic("t1", "ev", func(e Event) error { count1++; return nil })
	b.SubscribeTopic("t2", "ev", func(e Event) error { count2++; return nil })

	require.NoError(t, b.PublishToTopic("t1", NewEvent("ev", "src")))
	assert.Equal(t, 1, count1)
	assert.Equal(t, 0, count2)

	assert.Equal(t, []TopicInfo{
		{Name: "t1", EventTypes: 1, Subs: 1},
		{Name: "t2", EventTypes: 1, Subs: 1},
	}, b.Topics())
}

func TestAnyType(t *testing.T) {
	b := New()
	var types []string
	b.SubscribeTopic("scene", AnyType, func(e Event) error {
		types = append(types, e.Type)
		assert.Equal(t, "scene", e.Topic)
		return nil
	})

	require.NoError(t, b.PublishToTopic("scene", NewEvent("change", "a")))
	require.NoError(t, b.PublishToTopic("scene", NewEvent("replace:tint", "a")))
	assert.Equal(t, []string{"change", "replace:tint"}, types)
}

func TestErrorsAreJoined(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	calls := 0
	b.Subscribe("x", func(e Event) error { calls++; return errA })
	b.Subscribe("x", func(e Event) error { calls++; return nil })
	b.Subscribe("x", func(e Event) error { calls++; return errB })

	err := b.Publish(NewEvent("x", "src"))
	assert.Equal(t, 3, calls, "a failing handler does not stop delivery")
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	err = b.PublishBatch("", NewEvent("x", "src"), NewEvent("y", "src"))
	assert.ErrorIs(t, err, errA)
}

func TestUnsubscribeDuringDelivery(t *testing.T) {
	b := New()
	var order []string
	var second Subscription
	b.Subscribe("x", func(e Event) error {
		order = append(order, "first")
		second.Cancel()
		b.Subscribe("x", func(e Event) error { order = append(order, "late"); return nil })
		return nil
	})
	second = b.Subscribe("x", func(e Event) error { order = append(order, "second"); return nil })

	require.NoError(t, b.Publish(NewEvent("x", "src")))
	assert.Equal(t, []string{"first"}, order)
	assert.False(t, second.IsActive())

	b.Unsubscribe(second)
	b.Unsubscribe(nil)
}

func TestFilterHandler(t *testing.T) {
	b := New()
	var sources []string
	b.Subscribe("change", FilterHandler(func(e Event) error {
		sources = append(sources, e.Source)
		return nil
	}, func(e Event) bool { return e.Source != "ignored" }))

	require.NoError(t, b.Publish(NewEvent("change", "kept")))
	require.NoError(t, b.Publish(NewEvent("change", "ignored")))
	assert.Equal(t, []string{"kept"}, sources)
}

func TestMetricsWithoutObservers(t *testing.T) {
	b := New()
	b.Subscribe("e", func(e Event) error { return nil })
	b.Subscribe("e", func(e Event) error { return errors.New("boom") })
	assert.Error(t, b.Publish(NewEvent("e", "s")))
	assert.Equal(t, Metrics{Published: 1, DeliveredHandlers: 2, Errors: 1}, b.Metrics())

	obs := &testObserver{}
	b.AddObserver(obs)
	assert.Error(t, b.Publish(NewEvent("e", "s")))
	assert.Equal(t, uint64(2), b.Metrics().Published)
	assert.Equal(t, 2, obs.deliveredCount)

	b.RemoveObserver(obs)
	assert.Error(t, b.Publish(NewEvent("e", "s")))
	assert.Equal(t, 2, obs.deliveredCount)
	assert.Equal(t, uint64(3), b.Metrics().Published)
}

func TestLogObserver(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	b := New()
	b.AddObserver(NewLogObserver(log.NewWithCore(core, log.LevelDebug)))
	b.Subscribe("e", func(e Event) error { return errors.New("boom") })

	assert.Error(t, b.Publish(NewEvent("e", "s")))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Event handlers failed", entry.Message)
	assert.Equal(t, "e", entry.ContextMap()["event"])
}
