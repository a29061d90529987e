// Package mock provides mocks for burst components and allows to execute
// integration tests.
package mock

import (
	"io"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/tag"
)

// Source mocks a burst.Source interface. If Samples are not set, Limit
// items with Value are produced.
type Source struct {
	counter
	Samples     []complex64
	Limit       int
	Value       complex64
	Tags        []tag.Tag
	ErrorOnCall error
	Hooks
}

// Pull implements burst.Source.
func (m *Source) Pull(out []complex64, written uint64, tags tag.Writer) (int, error) {
	if m.ErrorOnCall != nil {
		return 0, m.ErrorOnCall
	}
	limit := m.Limit
	if m.Samples != nil {
		limit = len(m.Samples)
	}
	left := limit - m.Items
	if left <= 0 {
		return 0, io.EOF
	}
	n := min(left, len(out))
	for i := 0; i < n; i++ {
		if m.Samples != nil {
			out[i] = m.Samples[m.Items+i]
		} else {
			out[i] = m.Value
		}
	}
	for _, t := range m.Tags {
		if t.Offset >= written && t.Offset < written+uint64(n) {
			tags.Add(t)
		}
	}
	m.advance(n)
	return n, nil
}

// Flush implements burst.Flusher.
func (m *Source) Flush() error {
	m.Flushed = true
	return m.ErrorOnFlush
}

// Sink mocks up a burst.Sink interface. Buffer is not thread-safe, so
// should not be checked while line is running.
type Sink struct {
	counter
	buffer      []complex64
	tags        []tag.Tag
	Discard     bool
	ErrorOnCall error
	Hooks
}

// Push implements burst.Sink.
func (m *Sink) Push(in []complex64, read uint64, tags []tag.Tag) error {
	if m.ErrorOnCall != nil {
		return m.ErrorOnCall
	}
	if !m.Discard {
		m.buffer = append(m.buffer, in...)
	}
	m.tags = append(m.tags, tags...)
	m.advance(len(in))
	return nil
}

// Flush implements burst.Flusher.
func (m *Sink) Flush() error {
	m.Flushed = true
	return m.ErrorOnFlush
}

// Buffer returns sink's buffer.
func (m *Sink) Buffer() []complex64 {
	return m.buffer
}

// Tags returns tags received by sink.
func (m *Sink) Tags() []tag.Tag {
	return m.tags
}

// Block mocks a one-to-one burst.Block which copies samples and forwards
// all tags.
type Block struct {
	counter
	BlockName string
	Resetted  bool
}

// Name implements burst.Block.
func (m *Block) Name() string {
	return m.BlockName
}

// Work implements burst.Block.
func (m *Block) Work(w *burst.Work) (int, int) {
	n := burst.One(w)
	copy(w.Out, w.In[:n])
	for _, t := range w.InTags.Range(w.Read, w.Read+uint64(n)) {
		w.OutTags.Add(t.At(w.Written + t.Offset - w.Read))
	}
	if n > 0 {
		m.advance(n)
	}
	return n, n
}

// Reset implements burst.Resetter.
func (m *Block) Reset() error {
	m.Resetted = true
	m.reset()
	return nil
}

// Hooks allows to mock components hooks.
type Hooks struct {
	Flushed      bool
	ErrorOnFlush error
}

// counter counts calls and items.
type counter struct {
	Calls int
	Items int
}

func (c *counter) advance(size int) {
	c.Calls++
	c.Items += size
}

func (c *counter) reset() {
	c.Calls, c.Items = 0, 0
}
