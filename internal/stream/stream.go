// Package stream provides buffers which connect stages of a burst line.
package stream

import (
	"github.com/pipelined/burst/tag"
)

// Buffer is a bounded FIFO of items with absolute read and write counters.
// Tags of buffered items are kept in the Tags log. Buffer is not safe for
// concurrent use.
type Buffer struct {
	data    []complex64
	head    int
	tail    int
	read    uint64
	written uint64
	Tags    *tag.Log
}

// New returns a buffer with provided capacity.
func New(size int) *Buffer {
	return &Buffer{
		data: make([]complex64, size),
		Tags: &tag.Log{},
	}
}

// Readable returns buffered items. The slice is valid until the next
// Writable call.
func (b *Buffer) Readable() []complex64 {
	return b.data[b.head:b.tail]
}

// Writable returns free space of the buffer. Items written into the
// returned slice must be committed.
func (b *Buffer) Writable() []complex64 {
	if b.head > 0 {
		n := copy(b.data, b.data[b.head:b.tail])
		b.head, b.tail = 0, n
	}
	return b.data[b.tail:]
}

// Commit marks n items of writable space as written.
func (b *Buffer) Commit(n int) {
	if n < 0 || b.tail+n > len(b.data) {
		panic("stream: commit exceeds writable space")
	}
	b.tail += n
	b.written += uint64(n)
}

// Consume marks n readable items as read. Tags of consumed items are
// pruned.
func (b *Buffer) Consume(n int) {
	if n < 0 || b.head+n > b.tail {
		panic("stream: consume exceeds readable items")
	}
	b.head += n
	b.read += uint64(n)
	if b.head == b.tail {
		b.head, b.tail = 0, 0
	}
	b.Tags.Prune(b.read)
}

// Len returns number of buffered items.
func (b *Buffer) Len() int {
	return b.tail - b.head
}

// Read returns absolute number of consumed items.
func (b *Buffer) Read() uint64 {
	return b.read
}

// Written returns absolute number of committed items.
func (b *Buffer) Written() uint64 {
	return b.written
}
