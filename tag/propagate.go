package tag

// Propagator forwards tags from the input stream of a stage to its output
// stream. Tags with LengthKey are never forwarded: every stage emits its
// own length tags.
type Propagator struct {
	LengthKey string
}

// Propagate forwards tags of count input items starting at absolute offset
// start. Forwarded tags are moved to the output offset to, keeping their
// distance from start. Number of forwarded tags is returned.
func (p Propagator) Propagate(in Reader, out Writer, start uint64, count int, to uint64) int {
	return p.forward(in, out, start, count, to, nil)
}

// PropagateSkip works like Propagate, but tags located exactly at offset
// skip are not forwarded. It's used to not repeat tags of the in-flight
// burst start, which were already emitted.
func (p Propagator) PropagateSkip(in Reader, out Writer, start uint64, count int, to, skip uint64) int {
	return p.forward(in, out, start, count, to, &skip)
}

// Keep returns true if tag passes the length key filter.
func (p Propagator) Keep(t Tag) bool {
	return t.Key != p.LengthKey
}

func (p Propagator) forward(in Reader, out Writer, start uint64, count int, to uint64, skip *uint64) int {
	if count <= 0 {
		return 0
	}
	tags := in.Range(start, start+uint64(count))
	forwarded := 0
	for _, t := range tags {
		if !p.Keep(t) {
			continue
		}
		if skip != nil && t.Offset == *skip {
			continue
		}
		out.Add(t.At(to + t.Offset - start))
		forwarded++
	}
	return forwarded
}
