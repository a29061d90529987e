package mutable

import (
	"context"
	"errors"
)

// ErrUnknownContext is returned when mutation is put for context without
// destination.
var ErrUnknownContext = errors.New("unknown mutable context")

type (
	// Pusher allows to push mutations to mutable contexts.
	Pusher struct {
		destinations map[Context]Destination
		mutations    map[Destination]Mutations
	}

	// Destination is a channel that used as source of mutations.
	Destination chan Mutations
)

// NewPusher creates new pusher.
func NewPusher() Pusher {
	return Pusher{
		destinations: make(map[Context]Destination),
		mutations:    make(map[Destination]Mutations),
	}
}

// NewDestination returns a new destination with buffer of one set.
func NewDestination() Destination {
	return make(chan Mutations, 1)
}

// AddDestination adds new mapping of mutable context to destination.
func (p Pusher) AddDestination(c Context, d Destination) {
	p.destinations[c] = d
}

// Put mutations to the pusher. Mutations are not put if any of them has
// unknown context.
func (p Pusher) Put(mutations ...Mutation) error {
	for _, m := range mutations {
		if _, ok := p.destinations[m.Context]; !ok {
			return ErrUnknownContext
		}
	}
	for _, m := range mutations {
		d := p.destinations[m.Context]
		p.mutations[d] = p.mutations[d].Put(m)
	}
	return nil
}

// Push mutations to the destinations. Destination receives all mutations
// put since the last push. If destination is busy, its mutations are
// merged into the pending set.
func (p Pusher) Push(ctx context.Context) {
	for d, ms := range p.mutations {
		if ms == nil {
			continue
		}
		select {
		case d <- ms:
			p.mutations[d] = nil
		case pending := <-d:
			d <- pending.Append(ms)
			p.mutations[d] = nil
		case <-ctx.Done():
			return
		}
	}
}
