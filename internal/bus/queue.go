package bus

import (
	"context"
	"sync/atomic"

	"github.com/yanun0323/errors"

	"main/pkg/exception"
)

// Message is the unit passed through the inbound queue.
type Message struct {
	Topic   string
	Payload any
}

// Queue is a bounded queue feeding the single-threaded engine loop. Producers
// on other goroutines enqueue; the loop drains and publishes on the bus.
//
// The data channel is never closed, so a producer racing Close cannot panic;
// shutdown is signalled through done and the drain loop empties what remains.
type Queue struct {
	ch     chan Message
	done   chan struct{}
	closed uint32
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		ch:   make(chan Message, capacity),
		done: make(chan struct{}),
	}
}

// TryPublish enqueues a message without blocking.
func (q *Queue) TryPublish(m Message) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return errors.Wrap(exception.ErrQueueClosed, "try publish")
	}
	select {
	case q.ch <- m:
		return nil
	case <-q.done:
		return errors.Wrap(exception.ErrQueueClosed, "try publish")
	default:
		return errors.Wrapf(exception.ErrQueueFull, "topic %s", m.Topic)
	}
}

// Publish enqueues a message, blocking until there is room or the context
// is done.
func (q *Queue) Publish(ctx context.Context, m Message) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return errors.Wrap(exception.ErrQueueClosed, "publish")
	}
	select {
	case q.ch <- m:
		return nil
	case <-q.done:
		return errors.Wrap(exception.ErrQueueClosed, "publish")
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "publish")
	}
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close stops the queue from accepting new messages.
func (q *Queue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.done)
	}
}

// Run drains messages onto the bus until the context is done or the queue
// is closed. Messages already enqueued when Close is called are still
// delivered.
func (q *Queue) Run(ctx context.Context, b *Bus) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-q.ch:
			b.Publish(m.Topic, m.Payload)
		case <-q.done:
			for {
				select {
				case m := <-q.ch:
					b.Publish(m.Topic, m.Payload)
				default:
					return
				}
			}
		}
	}
}
