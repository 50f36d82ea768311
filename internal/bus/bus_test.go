package bus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/pkg/exception"
)

func TestIsMatching(t *testing.T) {
	for _, tc := range []struct {
		topic   string
		pattern string
		want    bool
	}{
		{"a", "*", true},
		{"a", "a", true},
		{"a", "b", false},
		{"data.quotes.BINANCE", "data.*", true},
		{"data.quotes.BINANCE", "data.quotes.*", true},
		{"data.quotes.BINANCE", "data.quotes.BINANCE", true},
		{"data.quotes.BINANCE", "data.trades.*", false},
		{"data.quotes.BINANCE", "data.?uotes.*", true},
		{"data.quotes.BINANCE", "data.??????.BINANCE", true},
		{"data.quotes.BINANCE", "data.?.BINANCE", false},
		{"data.quotes", "data.quotes.*", false},
		{"", "", true},
		{"", "*", true},
		{"abc", "a*c", true},
		{"abc", "a?c", true},
		{"abc", "a?b", false},
		{"aaa", "a*a", true},
	} {
		got := IsMatching(tc.topic, tc.pattern)
		if got != tc.want {
			t.Fatalf("IsMatching(%q, %q) = %v, want %v", tc.topic, tc.pattern, got, tc.want)
		}
	}
}

func TestEndpointSendAndDeregister(t *testing.T) {
	b := New()
	var got any
	require.NoError(t, b.Register("ExecEngine.execute", HandlerFunc("exec", func(msg any) { got = msg })))

	b.Send("ExecEngine.execute", "payload")
	assert.Equal(t, "payload", got)

	// Unknown endpoint drops the message without panicking.
	b.Send("RiskEngine.execute", "dropped")

	b.Deregister("ExecEngine.execute")
	_, ok := b.Endpoint("ExecEngine.execute")
	assert.False(t, ok)
}

func TestRegisterValidation(t *testing.T) {
	b := New()
	if err := b.Register("", HandlerFunc("h", func(any) {})); err == nil {
		t.Fatal("empty endpoint should fail")
	}
	if err := b.Register("x", nil); err == nil {
		t.Fatal("nil handler should fail")
	}
	if err := b.Subscribe("", HandlerFunc("h", func(any) {}), 0); err == nil {
		t.Fatal("empty pattern should fail")
	}
}

func TestPublishPriorityAndInsertionOrder(t *testing.T) {
	b := New()
	var delivered []string
	record := func(id string) Handler {
		return HandlerFunc(id, func(any) { delivered = append(delivered, id) })
	}

	require.NoError(t, b.Subscribe("data.*", record("H1"), 0))
	require.NoError(t, b.Subscribe("data.quotes.*", record("H2"), 5))
	require.NoError(t, b.Subscribe("data.quotes.BINANCE", record("H3"), 5))

	b.Publish("data.quotes.BINANCE", struct{}{})

	assert.Equal(t, []string{"H2", "H3", "H1"}, delivered)
}

func TestPublishOnlyMatching(t *testing.T) {
	b := New()
	var delivered []string
	record := func(id string) Handler {
		return HandlerFunc(id, func(any) { delivered = append(delivered, id) })
	}

	require.NoError(t, b.Subscribe("events.order.*", record("orders"), 0))
	require.NoError(t, b.Subscribe("reports.*", record("reports"), 0))

	b.Publish("events.order.S-001.ETHUSDT-PERP.SIM", struct{}{})

	assert.Equal(t, []string{"orders"}, delivered)
}

func TestSubscribeIdempotent(t *testing.T) {
	b := New()
	h := HandlerFunc("h", func(any) {})
	require.NoError(t, b.Subscribe("a.*", h, 0))
	require.NoError(t, b.Subscribe("a.*", h, 0))
	assert.Equal(t, 1, b.SubscriptionCount())
	assert.True(t, b.IsSubscribed("a.*", h))

	b.Unsubscribe("a.*", h)
	assert.Equal(t, 0, b.SubscriptionCount())

	// Unsubscribing an absent pair is a no-op.
	b.Unsubscribe("a.*", h)
}

func TestPatternCacheInvalidation(t *testing.T) {
	b := New()
	var count int
	h1 := HandlerFunc("h1", func(any) { count++ })

	require.NoError(t, b.Subscribe("data.*", h1, 0))
	b.Publish("data.quotes", struct{}{})
	assert.Equal(t, 1, count)

	// A new matching subscription must reach already-published topics.
	h2 := HandlerFunc("h2", func(any) { count += 10 })
	require.NoError(t, b.Subscribe("data.quotes", h2, 0))
	b.Publish("data.quotes", struct{}{})
	assert.Equal(t, 12, count)

	b.Unsubscribe("data.*", h1)
	b.Publish("data.quotes", struct{}{})
	assert.Equal(t, 22, count)
}

func TestQueueBounds(t *testing.T) {
	q := NewQueue(2)
	require.NoError(t, q.TryPublish(Message{Topic: "a"}))
	require.NoError(t, q.TryPublish(Message{Topic: "b"}))

	err := q.TryPublish(Message{Topic: "c"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrQueueFull))
	assert.Equal(t, 2, q.Len())

	q.Close()
	err = q.TryPublish(Message{Topic: "d"})
	assert.True(t, errors.Is(err, exception.ErrQueueClosed))
}

func TestQueueRunDrainsToBus(t *testing.T) {
	b := New()
	var got []string
	require.NoError(t, b.Subscribe("data.*", HandlerFunc("h", func(msg any) {
		got = append(got, msg.(string))
	}), 0))

	q := NewQueue(8)
	require.NoError(t, q.TryPublish(Message{Topic: "data.a", Payload: "one"}))
	require.NoError(t, q.TryPublish(Message{Topic: "data.b", Payload: "two"}))
	q.Close()

	q.Run(context.Background(), b)

	assert.Equal(t, []string{"one", "two"}, got)
}

func TestQueueCloseDuringPublish(t *testing.T) {
	q := NewQueue(4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := q.TryPublish(Message{Topic: "a"}); errors.Is(err, exception.ErrQueueClosed) {
					return
				}
			}
		}()
	}
	q.Close()
	wg.Wait()
}

func TestQueuePublishBlockingRespectsContext(t *testing.T) {
	q := NewQueue(1)
	require.NoError(t, q.TryPublish(Message{Topic: "a"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.Publish(ctx, Message{Topic: "b"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
