package tag

import "sort"

type (
	// Reader returns tags in the offset range [start, end). Tags are
	// ordered by offset, tags with equal offset keep the order they
	// were added in.
	Reader interface {
		Range(start, end uint64) []Tag
	}

	// Writer appends tags to the stream.
	Writer interface {
		Add(Tag)
	}

	// Log is an in-memory append-only tag store. It's not safe for
	// concurrent use.
	Log struct {
		tags []Tag
	}
)

// Add inserts the tag after all tags with the same or lower offset.
func (l *Log) Add(t Tag) {
	n := len(l.tags)
	// fast path: tags mostly arrive in order.
	if n == 0 || l.tags[n-1].Offset <= t.Offset {
		l.tags = append(l.tags, t)
		return
	}
	i := sort.Search(n, func(i int) bool {
		return l.tags[i].Offset > t.Offset
	})
	l.tags = append(l.tags, Tag{})
	copy(l.tags[i+1:], l.tags[i:])
	l.tags[i] = t
}

// Range returns a copy of tags in the range [start, end).
func (l *Log) Range(start, end uint64) []Tag {
	if start >= end {
		return nil
	}
	i := l.lower(start)
	j := i
	for j < len(l.tags) && l.tags[j].Offset < end {
		j++
	}
	if i == j {
		return nil
	}
	result := make([]Tag, j-i)
	copy(result, l.tags[i:j])
	return result
}

// Prune removes all tags with offset lower than provided.
func (l *Log) Prune(before uint64) {
	i := l.lower(before)
	if i == 0 {
		return
	}
	n := copy(l.tags, l.tags[i:])
	clear(l.tags[n:])
	l.tags = l.tags[:n]
}

// All returns a copy of all tags in the log.
func (l *Log) All() []Tag {
	result := make([]Tag, len(l.tags))
	copy(result, l.tags)
	return result
}

// Len returns number of tags in the log.
func (l *Log) Len() int {
	return len(l.tags)
}

// lower returns index of the first tag with offset not less than provided.
func (l *Log) lower(offset uint64) int {
	return sort.Search(len(l.tags), func(i int) bool {
		return l.tags[i].Offset >= offset
	})
}
