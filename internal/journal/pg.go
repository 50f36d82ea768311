package journal

import (
	"github.com/yanun0323/errors"

	"main/internal/model"
	"main/pkg/conn"
	"main/pkg/exception"
)

// EventRow is the relational form of a journal record. The full event is
// kept as a JSON payload; indexed columns cover the common queries.
type EventRow struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Seq           uint64 `gorm:"index"`
	Topic         string
	Kind          string `gorm:"index"`
	InstrumentID  string `gorm:"index"`
	ClientOrderID string `gorm:"index"`
	VenueOrderID  string
	Reason        string

	Payload []byte

	TsEvent int64
	TsRecv  int64
}

// TableName keeps the table name stable across gorm naming strategies.
func (EventRow) TableName() string {
	return "order_events"
}

// PgStore persists journal records to PostgreSQL.
type PgStore struct {
	client *conn.Client
}

// NewPgStore migrates the schema and returns a store.
func NewPgStore(client *conn.Client) (*PgStore, error) {
	if client == nil || client.DB() == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "new pg store")
	}
	if err := client.DB().AutoMigrate(&EventRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate order_events")
	}
	return &PgStore{client: client}, nil
}

// Insert writes one record.
func (s *PgStore) Insert(r Record) error {
	payload, err := encodeRecord(r)
	if err != nil {
		return errors.Wrapf(err, "encode record seq=%d", r.Seq)
	}
	row := EventRow{
		Seq:           r.Seq,
		Topic:         r.Topic,
		Kind:          r.Event.Kind.String(),
		InstrumentID:  r.Event.InstrumentID.String(),
		ClientOrderID: r.Event.ClientOrderID.String(),
		VenueOrderID:  r.Event.VenueOrderID.String(),
		Reason:        r.Event.Reason,
		Payload:       payload,
		TsEvent:       r.Event.TsEvent,
		TsRecv:        r.TsRecv,
	}
	if err := s.client.DB().Create(&row).Error; err != nil {
		return errors.Wrapf(err, "insert record seq=%d", r.Seq)
	}
	return nil
}

// ByClientOrderID returns the journaled records of one order in sequence order.
func (s *PgStore) ByClientOrderID(id model.ClientOrderID) ([]Record, error) {
	var rows []EventRow
	err := s.client.DB().
		Where("client_order_id = ?", id.String()).
		Order("seq asc").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query records for %s", id)
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		r, err := decodeRecord(row.Payload)
		if err != nil {
			return nil, errors.Wrapf(err, "decode record seq=%d", row.Seq)
		}
		out = append(out, r)
	}
	return out, nil
}
