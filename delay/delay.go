// Package delay provides the block which inserts timed zero padding
// before bursts.
//
// Delay waits for a time tag, converts the time difference to the previous
// time tag into a number of zero items, writes them and then copies exactly
// the number of items announced by the latest length tag. Items between
// bursts are dropped. All other tags are forwarded with corrected offsets.
package delay

import (
	"math"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/log"
	"github.com/pipelined/burst/metric"
	"github.com/pipelined/burst/tag"
)

// maxPadding is the exclusive upper bound of padding for a single gap.
const maxPadding = float64(math.MaxInt)

// Delay is a general block: it writes padding without consuming input and
// drops idle input without producing output.
type Delay struct {
	name       string
	sampleRate float64
	lengthKey  string
	timeKey    string
	propagator tag.Propagator
	log        log.Logger
	metrics    *metric.Metrics
	meter      metric.Meter

	state state
	// copyCount is the length of the announced burst.
	copyCount int
	// anchor is the input offset of the in-flight burst start.
	anchor uint64
	// previous is the time of the previous burst.
	previous float64
}

// Option configures delay.
type Option func(*Delay)

// WithName sets the name of the block. It's used as source of emitted
// tags.
func WithName(name string) Option {
	return func(d *Delay) {
		d.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(d *Delay) {
		d.log = l
	}
}

// WithMetrics enables padding, dropped items and bursts counters.
func WithMetrics(m *metric.Metrics) Option {
	return func(d *Delay) {
		d.metrics = m
	}
}

// New returns a new delay block. Time tags are converted to number of
// items with provided sample rate.
func New(sampleRate float64, lengthKey, timeKey string, options ...Option) *Delay {
	d := &Delay{
		name:       burst.NewName("delay"),
		sampleRate: sampleRate,
		lengthKey:  lengthKey,
		timeKey:    timeKey,
		propagator: tag.Propagator{LengthKey: lengthKey},
		state:      waiting{},
	}
	for _, option := range options {
		option(d)
	}
	d.log = log.Stage(d.log, d.name)
	d.meter = d.metrics.Meter(d.name)
	return d
}

// Name returns the name of the block.
func (d *Delay) Name() string {
	return d.name
}

// Forecast returns required input to produce noutput items. Padding is
// written without input.
func (d *Delay) Forecast(noutput int) int {
	if _, ok := d.state.(prepadding); ok {
		return 0
	}
	return 1
}

// Reset returns delay to its initial state. The time of the previous burst
// is reset as well.
func (d *Delay) Reset() error {
	d.state = waiting{}
	d.copyCount = 0
	d.anchor = 0
	d.previous = 0
	return nil
}

// Snapshot is a copy of delay timing state.
type Snapshot struct {
	// State is one of "wait", "prepad" or "copy".
	State string
	// Remaining is the number of items left in prepad or copy state.
	Remaining int
	CopyCount int
	Anchor    uint64
	Previous  float64
}

// Snapshot returns a copy of the current state.
func (d *Delay) Snapshot() Snapshot {
	s := Snapshot{
		CopyCount: d.copyCount,
		Anchor:    d.anchor,
		Previous:  d.previous,
	}
	switch st := d.state.(type) {
	case waiting:
		s.State = "wait"
	case prepadding:
		s.State, s.Remaining = "prepad", st.remaining
	case copying:
		s.State, s.Remaining = "copy", st.remaining
	}
	return s
}

// Work inserts padding and copies bursts. It returns as soon as a burst
// is copied, so the next burst always starts in a new call.
func (d *Delay) Work(w *burst.Work) (int, int) {
	c := call{Work: w}
	more := true
	for more {
		d.state, more = d.state.step(d, &c)
	}
	return c.written, c.read
}

// delay returns number of padding items for the burst time. Each gap is
// rounded independently, so no error accumulates across bursts. Gaps which
// don't fit into int are rejected and previous time is kept.
func (d *Delay) delay(t float64) (int, bool) {
	gap := math.Round((t - d.previous) * d.sampleRate)
	if math.IsNaN(gap) || gap >= maxPadding {
		return 0, false
	}
	d.previous = t
	if gap < 0 {
		return 0, true
	}
	return int(gap), true
}

// announce records the length of the upcoming burst.
func (d *Delay) announce(t tag.Tag) {
	n, ok := t.Value.AsInt()
	if !ok || n < 0 {
		d.log.WithField("offset", t.Offset).
			WithField("value", t.Value).
			Warn("ignore malformed length tag")
		return
	}
	d.copyCount = int(n)
}

// schedule handles the time tag. It returns false if tag is malformed:
// not a finite double or too far from the previous burst.
func (d *Delay) schedule(t tag.Tag) (int, bool) {
	v, ok := t.Value.AsDouble()
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		d.log.WithField("offset", t.Offset).
			WithField("value", t.Value).
			Warn("ignore malformed time tag")
		return 0, false
	}
	n, ok := d.delay(v)
	if !ok {
		d.log.WithField("offset", t.Offset).
			WithField("value", v).
			WithField("previous", d.previous).
			Warn("ignore out of range time tag")
		return 0, false
	}
	return n, true
}

// emitLength adds the length tag of in-flight burst at the output offset.
func (d *Delay) emitLength(w *burst.Work, offset uint64) {
	if d.copyCount == 0 {
		d.log.WithField("offset", offset).Debug("empty burst")
		return
	}
	w.OutTags.Add(tag.Tag{
		Offset: offset,
		Key:    d.lengthKey,
		Value:  tag.Int(int64(d.copyCount)),
		Source: d.name,
	})
}

// call tracks progress of a single work call.
type call struct {
	*burst.Work
	read    int
	written int
}

func (c *call) inLeft() int {
	return len(c.In) - c.read
}

func (c *call) outLeft() int {
	return len(c.Out) - c.written
}

// position returns absolute input offset.
func (c *call) position() uint64 {
	return c.Read + uint64(c.read)
}

// cursor returns absolute output offset.
func (c *call) cursor() uint64 {
	return c.Written + uint64(c.written)
}
