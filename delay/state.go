package delay

import (
	"github.com/pipelined/burst/tag"
)

// state makes progress within a work call. It returns the next state and
// true if the call should continue.
type state interface {
	step(*Delay, *call) (state, bool)
}

type (
	// waiting scans input tags for the next burst. Idle input is dropped.
	waiting struct {
		// since is the lowest input offset of tags to scan. It excludes
		// tags of the previous burst start.
		since uint64
		// held are tags of dropped input, they're forwarded with the next
		// burst.
		held []tag.Tag
	}

	// prepadding writes zero items.
	prepadding struct {
		remaining int
	}

	// copying copies burst items.
	copying struct {
		remaining int
	}
)

func (s waiting) step(d *Delay, c *call) (state, bool) {
	if c.inLeft() == 0 {
		return s, false
	}
	start := c.position()
	if s.since > start {
		start = s.since
	}
	end := c.Read + uint64(len(c.In))
	tags := c.InTags.Range(start, end)
	for i, t := range tags {
		switch t.Key {
		case d.lengthKey:
			d.announce(t)
			continue
		case d.timeKey:
			// length tags can follow the time tag at the same offset.
			last := i + 1
			for ; last < len(tags) && tags[last].Offset == t.Offset; last++ {
				if tags[last].Key == d.lengthKey {
					d.announce(tags[last])
				}
			}
			n, ok := d.schedule(t)
			if !ok {
				break
			}
			d.drop(c, int(t.Offset-c.position()))
			d.forward(c, s.held, tags[i:last])
			d.anchor = t.Offset
			d.log.WithField("offset", t.Offset).
				WithField("padding", n).
				WithField("length", d.copyCount).
				Debug("burst scheduled")
			return prepadding{remaining: n}, true
		}
		s.held = append(s.held, t)
	}
	d.drop(c, c.inLeft())
	return s, false
}

func (s prepadding) step(d *Delay, c *call) (state, bool) {
	n := min(s.remaining, c.outLeft())
	clear(c.Out[c.written : c.written+n])
	c.written += n
	s.remaining -= n
	d.meter.Padding(n)
	if s.remaining > 0 {
		return s, false
	}
	d.emitLength(c.Work, c.cursor())
	return copying{remaining: d.copyCount}, true
}

func (s copying) step(d *Delay, c *call) (state, bool) {
	n := min(s.remaining, c.outLeft(), c.inLeft())
	if n > 0 {
		d.overlapped(c.InTags.Range(c.position(), c.position()+uint64(n)))
		d.propagator.PropagateSkip(c.InTags, c.OutTags, c.position(), n, c.cursor(), d.anchor)
		copy(c.Out[c.written:c.written+n], c.In[c.read:c.read+n])
		c.read += n
		c.written += n
		s.remaining -= n
	}
	if s.remaining > 0 {
		return s, false
	}
	d.meter.Burst()
	// burst is done, return to scheduler before the next scan.
	return waiting{since: d.anchor + 1}, false
}

// drop consumes n idle items.
func (d *Delay) drop(c *call, n int) {
	if n <= 0 {
		return
	}
	c.read += n
	d.meter.Dropped(n)
}

// forward emits tags of dropped input at the current output offset.
func (d *Delay) forward(c *call, held, scanned []tag.Tag) {
	offset := c.cursor()
	for _, tags := range [][]tag.Tag{held, scanned} {
		for _, t := range tags {
			if d.propagator.Keep(t) {
				c.OutTags.Add(t.At(offset))
			}
		}
	}
}

// overlapped reports time tags inside the copied burst. They are forwarded
// but never scheduled.
func (d *Delay) overlapped(tags []tag.Tag) {
	for _, t := range tags {
		if t.Key == d.timeKey && t.Offset != d.anchor {
			d.log.WithField("offset", t.Offset).
				WithField("anchor", d.anchor).
				WithField("value", t.Value).
				Warn("ignore time tag inside burst")
		}
	}
}
