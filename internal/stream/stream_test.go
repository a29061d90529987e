package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/burst/internal/stream"
	"github.com/pipelined/burst/tag"
)

func TestBuffer(t *testing.T) {
	b := stream.New(4)
	assert.Len(t, b.Writable(), 4)
	assert.Empty(t, b.Readable())

	n := copy(b.Writable(), []complex64{1, 2, 3})
	b.Commit(n)
	b.Tags.Add(tag.Tag{Offset: 0, Key: "a"})
	b.Tags.Add(tag.Tag{Offset: 2, Key: "b"})
	assert.Equal(t, []complex64{1, 2, 3}, b.Readable())
	assert.Equal(t, 3, b.Len())

	b.Consume(2)
	assert.Equal(t, uint64(2), b.Read())
	assert.Equal(t, uint64(3), b.Written())
	assert.Equal(t, []complex64{3}, b.Readable())
	assert.Equal(t, []tag.Tag{{Offset: 2, Key: "b"}}, b.Tags.All())

	// writable space is compacted.
	assert.Len(t, b.Writable(), 3)
	assert.Equal(t, []complex64{3}, b.Readable())
	b.Commit(copy(b.Writable(), []complex64{4, 5, 6}))
	assert.Equal(t, []complex64{3, 4, 5, 6}, b.Readable())
	assert.Empty(t, b.Writable())

	b.Consume(4)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, uint64(6), b.Read())
	assert.Equal(t, 0, b.Tags.Len())
}

func TestBufferPanics(t *testing.T) {
	b := stream.New(2)
	assert.Panics(t, func() { b.Commit(3) })
	assert.Panics(t, func() { b.Consume(1) })
	assert.Panics(t, func() { b.Commit(-1) })
}
