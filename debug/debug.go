// Package debug provides stages to inspect burst lines.
package debug

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/log"
	"github.com/pipelined/burst/tag"
)

var config = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Tags is a one-to-one block which copies items and forwards all tags.
// Every tag is logged and, if writer is set, dumped into it.
type Tags struct {
	name   string
	log    log.Logger
	writer io.Writer
	seen   int
}

// Option configures tags block.
type Option func(*Tags)

// WithName sets the name of the block.
func WithName(name string) Option {
	return func(t *Tags) {
		t.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(t *Tags) {
		t.log = l
	}
}

// WithWriter sets the writer for tag dumps.
func WithWriter(w io.Writer) Option {
	return func(t *Tags) {
		t.writer = w
	}
}

// NewTags returns a new tags block.
func NewTags(options ...Option) *Tags {
	t := &Tags{
		name: burst.NewName("debug"),
	}
	for _, option := range options {
		option(t)
	}
	t.log = log.Stage(t.log, t.name)
	return t
}

// Name returns the name of the block.
func (t *Tags) Name() string {
	return t.name
}

// Seen returns number of tags passed through the block.
func (t *Tags) Seen() int {
	return t.seen
}

// Work implements burst.Block.
func (t *Tags) Work(w *burst.Work) (int, int) {
	n := burst.One(w)
	if n == 0 {
		return 0, 0
	}
	copy(w.Out[:n], w.In[:n])
	for _, in := range w.InTags.Range(w.Read, w.Read+uint64(n)) {
		t.seen++
		t.log.WithField("offset", in.Offset).
			WithField("key", in.Key).
			WithField("kind", in.Value.Kind()).
			WithField("source", in.Source).
			Debug(in.Value.String())
		if t.writer != nil {
			fmt.Fprintf(t.writer, "%s: %s", t.name, Dump(in))
		}
		w.OutTags.Add(in.At(w.Written + in.Offset - w.Read))
	}
	return n, n
}

// Dump returns a readable representation of tags.
func Dump(tags ...tag.Tag) string {
	type entry struct {
		Offset uint64
		Key    string
		Kind   string
		Value  interface{}
		Source string
	}
	entries := make([]entry, 0, len(tags))
	for _, t := range tags {
		entries = append(entries, entry{
			Offset: t.Offset,
			Key:    t.Key,
			Kind:   t.Value.Kind().String(),
			Value:  t.Value.Interface(),
			Source: t.Source,
		})
	}
	if len(entries) == 1 {
		return config.Sdump(entries[0])
	}
	return config.Sdump(entries)
}
