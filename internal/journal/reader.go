package journal

import (
	"bufio"
	"io"
)

// Reader decodes journal records sequentially.
type Reader struct {
	s *bufio.Scanner
}

// NewReader wraps an io.Reader with journal decoding.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &Reader{s: s}
}

// Next returns the next record, or io.EOF when the stream ends.
func (r *Reader) Next() (Record, error) {
	for r.s.Scan() {
		line := r.s.Bytes()
		if len(line) == 0 {
			continue
		}
		return decodeRecord(line)
	}
	if err := r.s.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}
