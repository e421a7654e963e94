/*
Package jsonfast offers a minimal JSON builder for small fixed-schema documents.
*/
package jsonfast

import "strconv"

// Builder appends JSON object fields directly into a reusable byte slice.
// It only knows the field shapes this module emits; it is not a general JSON writer.
type Builder struct {
	buf    []byte
	opened bool
	first  bool
}

// New creates a new builder with initial capacity.
func New(capacity int) *Builder {
	if capacity <= 0 {
		capacity = 64
	}
	return &Builder{
		buf:   make([]byte, 0, capacity),
		first: true,
	}
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
	b.opened = false
	b.first = true
}

// Bytes returns the underlying buffer (do not modify after use).
func (b *Builder) Bytes() []byte {
	return b.buf
}

// BeginObject starts a JSON object.
func (b *Builder) BeginObject() {
	b.buf = append(b.buf, '{')
	b.opened = true
	b.first = true
}

// EndObject ends a JSON object.
func (b *Builder) EndObject() {
	b.buf = append(b.buf, '}')
	b.opened = false
}

// AddIntField adds a "name":int field.
func (b *Builder) AddIntField(name string, v int) {
	b.AddInt64Field(name, int64(v))
}

// AddInt64Field adds a "name":int64 field.
func (b *Builder) AddInt64Field(name string, v int64) {
	b.key(name)
	b.buf = strconv.AppendInt(b.buf, v, 10)
}

// AddIntArrayField adds a "name":[1,2,3] field. A nil slice is written as [].
func (b *Builder) AddIntArrayField(name string, values []int) {
	b.key(name)
	b.buf = append(b.buf, '[')
	for i, v := range values {
		if i > 0 {
			b.buf = append(b.buf, ',')
		}
		b.buf = strconv.AppendInt(b.buf, int64(v), 10)
	}
	b.buf = append(b.buf, ']')
}

// key writes the separator and "name": prefix. Names are trusted literals and not escaped.
func (b *Builder) key(name string) {
	b.sep()
	b.buf = append(b.buf, '"')
	b.buf = append(b.buf, name...)
	b.buf = append(b.buf, '"', ':')
}

func (b *Builder) sep() {
	if !b.opened {
		b.BeginObject()
		b.first = false
		return
	}
	if b.first {
		b.first = false
		return
	}
	b.buf = append(b.buf, ',')
}
