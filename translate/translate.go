// Package translate provides the block which converts framer tags into
// transmit tags understood by delay and shift blocks.
//
// Translator copies items unchanged. A packet length tag at offset o is
// emitted as transmit length reduced by padding at o + padding. Time tags
// are moved to the same offset and carrier tags to o itself.
package translate

import (
	"sync"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/log"
	"github.com/pipelined/burst/mutable"
	"github.com/pipelined/burst/tag"
)

// Translator is a one-to-one block.
type Translator struct {
	name          string
	sps           int
	referenceTime float64
	padding       int
	propagator    tag.Propagator
	log           log.Logger
	mctx          mutable.Context

	mu       sync.Mutex
	preamble int

	// lengthOffset is the input offset of the latest packet length tag.
	lengthOffset uint64
}

// Option configures translator.
type Option func(*Translator)

// WithName sets the name of the block. It's used as source of emitted
// tags.
func WithName(name string) Option {
	return func(t *Translator) {
		t.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(t *Translator) {
		t.log = l
	}
}

// New returns a new translator. Padding is the number of leading items of
// each framed packet which don't belong to the burst.
func New(sps int, referenceTime float64, preambleLen, paddingLen int, options ...Option) *Translator {
	t := &Translator{
		name:          burst.NewName("translate"),
		sps:           sps,
		referenceTime: referenceTime,
		padding:       paddingLen,
		preamble:      preambleLen,
		propagator:    tag.Propagator{LengthKey: tag.TxPktLen},
		mctx:          mutable.Mutable(),
	}
	for _, option := range options {
		option(t)
	}
	t.log = log.Stage(t.log, t.name)
	return t
}

// Name returns the name of the block.
func (t *Translator) Name() string {
	return t.name
}

// Mutable returns the context for translator mutations.
func (t *Translator) Mutable() mutable.Context {
	return t.mctx
}

// SamplesPerSymbol returns the configured samples per symbol.
func (t *Translator) SamplesPerSymbol() int {
	return t.sps
}

// ReferenceTime returns the configured reference time.
func (t *Translator) ReferenceTime() float64 {
	return t.referenceTime
}

// Preamble returns the current preamble length in symbols.
func (t *Translator) Preamble() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.preamble
}

// SetPreambleLength sets the preamble length in symbols. It's safe to call
// concurrently with Work.
func (t *Translator) SetPreambleLength(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.preamble = n
}

// MutatePreambleLength returns mutation which sets the preamble length.
func (t *Translator) MutatePreambleLength(n int) mutable.Mutation {
	return t.mctx.Mutate(func() error {
		t.SetPreambleLength(n)
		return nil
	})
}

// Reset forgets the latest packet length offset.
func (t *Translator) Reset() error {
	t.lengthOffset = 0
	return nil
}

// Work copies items and translates tags.
func (t *Translator) Work(w *burst.Work) (int, int) {
	n := burst.One(w)
	if n == 0 {
		return 0, 0
	}
	copy(w.Out[:n], w.In[:n])
	for _, in := range w.InTags.Range(w.Read, w.Read+uint64(n)) {
		if t.propagator.Keep(in) {
			w.OutTags.Add(in.At(w.Written + in.Offset - w.Read))
		}
		switch in.Key {
		case tag.PreambleLen:
			v, ok := in.Value.AsInt()
			if !ok {
				t.malformed(in)
				continue
			}
			t.SetPreambleLength(int(v))
		case tag.PacketLen:
			v, ok := in.Value.AsInt()
			if !ok {
				t.malformed(in)
				continue
			}
			t.lengthOffset = in.Offset
			length := v - int64(t.padding)
			if length < 0 {
				t.log.WithField("offset", in.Offset).
					WithField("length", v).
					Warn("packet shorter than padding")
				continue
			}
			t.emit(w, in.Offset+uint64(t.padding), tag.TxPktLen, tag.Int(length))
		case tag.TimeOffset:
			if _, ok := in.Value.AsDouble(); !ok {
				t.malformed(in)
				continue
			}
			t.emit(w, t.lengthOffset+uint64(t.padding), tag.TxTime, in.Value)
		case tag.FreqInit:
			if _, ok := in.Value.AsDouble(); !ok {
				t.malformed(in)
				continue
			}
			t.emit(w, t.lengthOffset, tag.TxFreq, in.Value)
		}
	}
	return n, n
}

// emit adds the tag at input offset. Offsets before the call are moved to
// its first item.
func (t *Translator) emit(w *burst.Work, offset uint64, key string, v tag.Value) {
	out := w.Written
	if offset >= w.Read {
		out += offset - w.Read
	} else {
		t.log.WithField("offset", offset).
			WithField("key", key).
			WithField("clamped", w.Read).
			Debug("emit tag at call start")
	}
	w.OutTags.Add(tag.Tag{
		Offset: out,
		Key:    key,
		Value:  v,
		Source: t.name,
	})
}

func (t *Translator) malformed(in tag.Tag) {
	t.log.WithField("offset", in.Offset).
		WithField("key", in.Key).
		WithField("value", in.Value).
		Warn("ignore malformed tag")
}
