// File: internal/message/message.go
// License: Apache-2.0
//
// In-memory message model: a fixed number of equally sized,
// independently allocated fields. One message is allocated per
// connection handler and reused for every send on that connection.

package message

import (
	"bytes"
	"fmt"

	"github.com/sendpath/sendpath/api"
)

// DefaultFields is the conventional field count per message.
const DefaultFields = 8

// patternBase seeds the per-field fill byte: field i is filled with
// patternBase+i so misordered or torn fields are visible on the wire.
const patternBase = byte('A')

// Truncate rounds size down to the nearest multiple of fields.
func Truncate(size, fields int) int {
	if fields <= 0 {
		return 0
	}
	return (size / fields) * fields
}

// Message holds the field buffers of one application message.
type Message struct {
	fields    [][]byte
	fieldSize int
}

// New allocates a message of the given total size split into the given
// number of fields. The size is truncated down to a multiple of the
// field count; a size yielding empty fields is rejected.
func New(size, fields int) (*Message, error) {
	if fields <= 0 {
		return nil, fmt.Errorf("field count %d: %w", fields, api.ErrInvalidSize)
	}
	size = Truncate(size, fields)
	if size == 0 {
		return nil, fmt.Errorf("message size must be >= %d bytes: %w", fields, api.ErrInvalidSize)
	}
	fieldSize := size / fields
	m := &Message{
		fields:    make([][]byte, fields),
		fieldSize: fieldSize,
	}
	for i := range m.fields {
		f := make([]byte, fieldSize)
		fill(f, patternBase+byte(i))
		m.fields[i] = f
	}
	return m, nil
}

// Fields returns the field buffers in wire order. Callers must not
// mutate the buffers while zero-copy sends may still be outstanding.
func (m *Message) Fields() [][]byte { return m.fields }

// FieldSize returns the size of each field in bytes.
func (m *Message) FieldSize() int { return m.fieldSize }

// Size returns the total message size in bytes.
func (m *Message) Size() int { return m.fieldSize * len(m.fields) }

// Serialize copies all fields into dst, which must hold Size() bytes.
// This is the staging copy of the two-copy path.
func (m *Message) Serialize(dst []byte) {
	off := 0
	for _, f := range m.fields {
		copy(dst[off:], f)
		off += len(f)
	}
}

// Verify reports whether buf is a byte-identical rendering of this
// message.
func (m *Message) Verify(buf []byte) bool {
	if len(buf) != m.Size() {
		return false
	}
	off := 0
	for _, f := range m.fields {
		if !bytes.Equal(buf[off:off+len(f)], f) {
			return false
		}
		off += len(f)
	}
	return true
}

// Expected builds the wire image of a message with the given geometry,
// for receivers and tests that check content correctness.
func Expected(size, fields int) []byte {
	size = Truncate(size, fields)
	if size <= 0 {
		return nil
	}
	fieldSize := size / fields
	out := make([]byte, 0, size)
	for i := 0; i < fields; i++ {
		chunk := make([]byte, fieldSize)
		fill(chunk, patternBase+byte(i))
		out = append(out, chunk...)
	}
	return out
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
