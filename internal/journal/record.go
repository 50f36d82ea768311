package journal

import (
	"github.com/bytedance/sonic"

	"main/internal/order"
)

// Record is one journaled order event with its receive-side metadata.
// Records serialize as one JSON object per line.
type Record struct {
	Seq    uint64      `json:"seq"`
	Topic  string      `json:"topic"`
	TsRecv int64       `json:"tsRecv"`
	Event  order.Event `json:"event"`
}

func encodeRecord(r Record) ([]byte, error) {
	data, err := sonic.ConfigFastest.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decodeRecord(line []byte) (Record, error) {
	var r Record
	if err := sonic.ConfigFastest.Unmarshal(line, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}
