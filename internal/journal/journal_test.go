package journal

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/bus"
	"main/internal/clock"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/order"
)

func newLimit(t *testing.T, id model.ClientOrderID) *order.Order {
	t.Helper()
	price := model.MustPrice(100.00, 2)
	o, err := order.NewOrder(order.Config{
		TraderID:      "TRADER-001",
		StrategyID:    "S-001",
		InstrumentID:  "ETHUSDT-PERP.SIM",
		ClientOrderID: id,
		Side:          enum.OrderSideBuy,
		OrderType:     enum.OrderTypeLimit,
		Quantity:      model.MustQuantity(1, 0),
		TimeInForce:   enum.TimeInForceGTC,
		Price:         &price,
		TsInit:        1,
	})
	require.NoError(t, err)
	return o
}

func TestWriterReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	o := newLimit(t, "O-A")
	events := []order.Event{
		order.NewSubmitted(o, "SIM-001", 2, 2),
		order.NewAccepted(o, "V-1", "SIM-001", 3, 3),
	}
	for i, e := range events {
		require.NoError(t, w.TryAppend(Record{Seq: uint64(i + 1), Topic: "events.order.S-001.ETHUSDT-PERP.SIM", TsRecv: e.TsEvent, Event: e}))
	}
	require.NoError(t, w.Close())

	files, err := filepath.Glob(filepath.Join(dir, "journal-*.jsonl"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()

	r := NewReader(f)
	for i, want := range events {
		got, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), got.Seq)
		assert.Equal(t, want.Kind, got.Event.Kind)
		assert.Equal(t, want.ClientOrderID, got.Event.ClientOrderID)
		assert.Equal(t, want.EventID, got.Event.EventID)
	}
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriterRotatesBySize(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.SegmentMaxBytes = 256
	w, err := NewWriter(cfg)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	o := newLimit(t, "O-A")
	for i := 0; i < 8; i++ {
		require.NoError(t, w.TryAppend(Record{Seq: uint64(i + 1), Event: order.NewSubmitted(o, "SIM-001", 2, 2)}))
	}
	require.NoError(t, w.Close())

	files, err := filepath.Glob(filepath.Join(dir, "journal-*.jsonl"))
	require.NoError(t, err)
	assert.Greater(t, len(files), 1)
}

func TestWriterQueueStates(t *testing.T) {
	w, err := NewWriter(DefaultConfig(t.TempDir()))
	require.NoError(t, err)

	err = w.TryAppend(Record{Seq: 1})
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, w.Start(context.Background()))
	assert.ErrorIs(t, w.Start(context.Background()), ErrAlreadyStarted)
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.TryAppend(Record{Seq: 2}), ErrClosed)
}

func TestPlaybackReplaysInOrder(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	o := newLimit(t, "O-A")
	for i := 1; i <= 3; i++ {
		require.NoError(t, w.TryAppend(Record{Seq: uint64(i), Event: order.NewSubmitted(o, "SIM-001", int64(i), int64(i))}))
	}
	require.NoError(t, w.Close())

	p, err := NewPlayback(PlaybackConfig{Dir: dir})
	require.NoError(t, err)

	var seqs []uint64
	require.NoError(t, p.Run(context.Background(), func(r Record) error {
		seqs = append(seqs, r.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{1, 2, 3}, seqs)
}

func TestTapJournalsPublishedEvents(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	b := bus.New()
	tap := NewTap(w, obs.NewSequenceGenerator(1), clock.NewManual(1_000), "events.order.*")
	require.NoError(t, tap.Attach(b))

	o := newLimit(t, "O-A")
	b.Publish("events.order.S-001.ETHUSDT-PERP.SIM", order.NewSubmitted(o, "SIM-001", 2, 2))
	require.NoError(t, w.Close())

	p, err := NewPlayback(PlaybackConfig{Dir: dir})
	require.NoError(t, err)

	var got []Record
	require.NoError(t, p.Run(context.Background(), func(r Record) error {
		got = append(got, r)
		return nil
	}))
	require.Len(t, got, 1)
	assert.Equal(t, model.ClientOrderID("O-A"), got[0].Event.ClientOrderID)
	assert.Equal(t, int64(1_000), got[0].TsRecv)
}
