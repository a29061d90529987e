// Package shift provides the block which moves bursts to their carrier
// offset.
package shift

import (
	"sync"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/log"
	"github.com/pipelined/burst/mutable"
	"github.com/pipelined/burst/tag"
)

// DefaultCenter is the carrier frequency of the baseband in Hz.
const DefaultCenter = 1622e6

// Shifter multiplies items by a complex sinusoid. Frequency tags with
// absolute carrier retune the oscillator to the offset from center.
type Shifter struct {
	name       string
	sampleRate float64
	amplitude  float64
	center     float64
	callRetune bool
	propagator tag.Propagator
	log        log.Logger
	mctx       mutable.Context

	mu        sync.Mutex
	frequency float64
	osc       nco
}

// Option configures shifter.
type Option func(*Shifter)

// WithName sets the name of the block.
func WithName(name string) Option {
	return func(s *Shifter) {
		s.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Shifter) {
		s.log = l
	}
}

// WithCenter sets the center frequency subtracted from frequency tags.
func WithCenter(center float64) Option {
	return func(s *Shifter) {
		s.center = center
	}
}

// WithCallRetune applies the last frequency tag of the call to all items
// of the call instead of retuning at the tag offset.
func WithCallRetune() Option {
	return func(s *Shifter) {
		s.callRetune = true
	}
}

// New returns a new shifter with initial oscillator configuration.
func New(sampleRate, frequency, amplitude, phase float64, options ...Option) *Shifter {
	s := &Shifter{
		name:       burst.NewName("shift"),
		sampleRate: sampleRate,
		amplitude:  amplitude,
		center:     DefaultCenter,
		propagator: tag.Propagator{LengthKey: tag.TxPktLen},
		mctx:       mutable.Mutable(),
	}
	for _, option := range options {
		option(s)
	}
	s.log = log.Stage(s.log, s.name)
	s.setFrequency(frequency)
	s.osc.setPhase(phase)
	return s
}

// Name returns the name of the block.
func (s *Shifter) Name() string {
	return s.name
}

// Mutable returns the context for shifter mutations.
func (s *Shifter) Mutable() mutable.Context {
	return s.mctx
}

// SetPhase sets the oscillator phase. It's safe to call concurrently with
// Work.
func (s *Shifter) SetPhase(phase float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.osc.setPhase(phase)
}

// SetFrequency sets the oscillator frequency offset in Hz. It's safe to
// call concurrently with Work.
func (s *Shifter) SetFrequency(frequency float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setFrequency(frequency)
}

// MutatePhase returns mutation which sets the oscillator phase.
func (s *Shifter) MutatePhase(phase float64) mutable.Mutation {
	return s.mctx.Mutate(func() error {
		s.SetPhase(phase)
		return nil
	})
}

// MutateFrequency returns mutation which sets the oscillator frequency.
func (s *Shifter) MutateFrequency(frequency float64) mutable.Mutation {
	return s.mctx.Mutate(func() error {
		s.SetFrequency(frequency)
		return nil
	})
}

// Frequency returns the current frequency offset.
func (s *Shifter) Frequency() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frequency
}

// Phase returns the current oscillator phase.
func (s *Shifter) Phase() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.osc.phase
}

// Work mixes items with the oscillator and forwards tags. Length tags are
// emitted as shifter's own.
func (s *Shifter) Work(w *burst.Work) (int, int) {
	n := burst.One(w)
	if n == 0 {
		return 0, 0
	}
	tags := w.InTags.Range(w.Read, w.Read+uint64(n))

	s.mu.Lock()
	if s.callRetune {
		for _, t := range tags {
			if t.Key == tag.TxFreq {
				s.retune(t)
			}
		}
		s.osc.mix(w.Out[:n], w.In[:n], s.amplitude)
	} else {
		pos := 0
		for _, t := range tags {
			if t.Key != tag.TxFreq {
				continue
			}
			at := int(t.Offset - w.Read)
			s.osc.mix(w.Out[pos:at], w.In[pos:at], s.amplitude)
			pos = at
			s.retune(t)
		}
		s.osc.mix(w.Out[pos:n], w.In[pos:n], s.amplitude)
	}
	s.mu.Unlock()

	for _, t := range tags {
		out := t.At(w.Written + t.Offset - w.Read)
		if !s.propagator.Keep(t) {
			if _, ok := t.Value.AsInt(); !ok {
				s.log.WithField("offset", t.Offset).
					WithField("value", t.Value).
					Warn("ignore malformed length tag")
				continue
			}
			out.Source = s.name
		}
		w.OutTags.Add(out)
	}
	return n, n
}

// retune sets frequency from the absolute carrier tag. Must be called
// with mutex held.
func (s *Shifter) retune(t tag.Tag) {
	carrier, ok := t.Value.AsDouble()
	if !ok {
		s.log.WithField("offset", t.Offset).
			WithField("value", t.Value).
			Warn("ignore malformed frequency tag")
		return
	}
	s.setFrequency(carrier - s.center)
	s.log.WithField("offset", t.Offset).
		WithField("frequency", s.frequency).
		Debug("retune")
}

func (s *Shifter) setFrequency(frequency float64) {
	s.frequency = frequency
	s.osc.tune(frequency, s.sampleRate)
}
