package journal

import (
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/clock"
	"main/internal/obs"
	"main/internal/order"
)

// Tap turns a bus subscription into journal appends. Events that do not
// fit the queue are dropped with a log line rather than blocking delivery.
type Tap struct {
	writer *Writer
	seq    *obs.SequenceGenerator
	clock  clock.Clock
	topic  string
}

func NewTap(w *Writer, seq *obs.SequenceGenerator, c clock.Clock, topic string) *Tap {
	return &Tap{writer: w, seq: seq, clock: c, topic: topic}
}

// Attach subscribes the tap to its topic.
func (t *Tap) Attach(b *bus.Bus) error {
	return b.Subscribe(t.topic, bus.HandlerFunc("journal.tap", t.handle), 0)
}

func (t *Tap) handle(msg any) {
	e, ok := msg.(order.Event)
	if !ok {
		return
	}
	r := Record{
		Seq:    t.seq.Next(),
		Topic:  t.topic,
		TsRecv: t.clock.NowNs(),
		Event:  e,
	}
	if err := t.writer.TryAppend(r); err != nil {
		logs.Errorf("journal %s event for %s: %v", e.Kind, e.ClientOrderID, err)
	}
}
