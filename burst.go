package burst

import (
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/pipelined/burst/tag"
)

type (
	// Work is a single invocation of a block. It's prepared by the
	// scheduler and only valid for the duration of the call.
	Work struct {
		// In is the available input.
		In []complex64
		// Out is the available output space.
		Out []complex64
		// Read is the absolute number of items consumed before this call.
		Read uint64
		// Written is the absolute number of items produced before this call.
		Written uint64
		// InTags is the tag store of the input stream.
		InTags tag.Reader
		// OutTags is the tag store of the output stream.
		OutTags tag.Writer
	}

	// Block is a stage of burst line. Work must not block and must not
	// keep references to the buffers after return. It returns number of
	// items produced and consumed, these might differ for general blocks.
	Block interface {
		Name() string
		Work(*Work) (produced, consumed int)
	}

	// Forecaster is implemented by blocks that need a certain amount of
	// input to produce noutput items. Blocks without forecaster need at
	// least one input item.
	Forecaster interface {
		Forecast(noutput int) int
	}

	// Source is the origin of samples and tags. Pull fills the buffer and
	// returns number of items written. Written is the absolute number of
	// items pulled before this call, tags are added with absolute offsets.
	// io.EOF is returned when source is done.
	Source interface {
		Pull(out []complex64, written uint64, tags tag.Writer) (int, error)
	}

	// Sink is the destination of samples and tags. Tags are the tags of
	// pushed items, read is the absolute offset of the first item.
	Sink interface {
		Push(in []complex64, read uint64, tags []tag.Tag) error
	}

	// Resetter is implemented by blocks that must be reset before each
	// run.
	Resetter interface {
		Reset() error
	}

	// Flusher is implemented by sources and sinks that must release
	// resources when line is done.
	Flusher interface {
		Flush() error
	}
)

// ErrAccounting is used to report a block which produced or consumed more
// items than it was provided. It's a programming error and causes a panic.
var ErrAccounting = errors.New("block accounting violated")

// NewName returns a unique name with provided prefix.
func NewName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, xid.New().String())
}

// One returns number of items processed by one-to-one block.
func One(w *Work) int {
	if len(w.In) < len(w.Out) {
		return len(w.In)
	}
	return len(w.Out)
}
