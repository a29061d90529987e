// Package run executes burst lines.
//
// A line is executed by a single scheduler goroutine which calls source,
// blocks and sink in order, with buffers of bounded size between them.
// Mutations pushed into the run are delivered by a separate goroutine and
// applied by the scheduler between passes.
package run

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/log"
	"github.com/pipelined/burst/metric"
	"github.com/pipelined/burst/mutable"
)

// DefaultBufferSize is the capacity of buffers between stages.
const DefaultBufferSize = 4096

var (
	// ErrNoSource is returned when line has no source.
	ErrNoSource = errors.New("line has no source")
	// ErrNoSink is returned when line has no sink.
	ErrNoSink = errors.New("line has no sink")
	// ErrDone is returned when mutations are pushed into finished run.
	ErrDone = errors.New("run is done")
)

type (
	// Line is a sequence of stages: items flow from the source through
	// the blocks into the sink.
	Line struct {
		Source burst.Source
		Blocks []burst.Block
		Sink   burst.Sink
	}

	// Run is a running line.
	Run struct {
		group     *errgroup.Group
		ctx       context.Context
		contexts  map[mutable.Context]struct{}
		mutations chan []mutable.Mutation
	}

	// Option configures run.
	Option func(*options)

	options struct {
		bufferSize   int
		batch        func() int
		log          log.Logger
		metrics      *metric.Metrics
		initializers []mutable.Mutation
	}

	mutableBlock interface {
		Mutable() mutable.Context
	}
)

// WithBufferSize sets the capacity of buffers between stages.
func WithBufferSize(size int) Option {
	return func(o *options) {
		o.bufferSize = size
	}
}

// WithBatch sets the function which limits the number of items of every
// call. It allows to test blocks with arbitrary fragmentation.
func WithBatch(fn func() int) Option {
	return func(o *options) {
		o.batch = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithMetrics enables per stage work metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithMutations sets mutations applied before the first pass.
func WithMutations(ms ...mutable.Mutation) Option {
	return func(o *options) {
		o.initializers = append(o.initializers, ms...)
	}
}

// Validate checks that line has source and sink.
func (l Line) Validate() error {
	if l.Source == nil {
		return ErrNoSource
	}
	if l.Sink == nil {
		return ErrNoSink
	}
	return nil
}

// New starts the line execution.
func New(ctx context.Context, l Line, opts ...Option) *Run {
	o := options{
		bufferSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = log.Stage(o.log, "run")

	ctx, cancelFn := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	r := Run{
		group:     g,
		ctx:       ctx,
		contexts:  make(map[mutable.Context]struct{}),
		mutations: make(chan []mutable.Mutation, 1),
	}
	if err := l.Validate(); err != nil {
		cancelFn()
		g.Go(func() error { return err })
		return &r
	}

	dest := mutable.NewDestination()
	pusher := mutable.NewPusher()
	for _, b := range l.Blocks {
		if m, ok := b.(mutableBlock); ok && m.Mutable().IsMutable() {
			pusher.AddDestination(m.Mutable(), dest)
			r.contexts[m.Mutable()] = struct{}{}
		}
	}
	if err := pusher.Put(o.initializers...); err != nil {
		cancelFn()
		g.Go(func() error { return err })
		return &r
	}
	pusher.Push(ctx)

	e := newExecutor(l, o, dest)
	g.Go(func() error {
		defer cancelFn()
		o.log.WithField("blocks", len(l.Blocks)).Debug("line started")
		err := e.run(ctx)
		o.log.WithField("error", err).Debug("line done")
		return err
	})
	g.Go(func() error {
		for {
			select {
			case ms := <-r.mutations:
				// contexts are checked by Push.
				_ = pusher.Put(ms...)
				pusher.Push(ctx)
			case <-ctx.Done():
				return nil
			}
		}
	})
	return &r
}

// Execute runs the line and waits for it to finish.
func Execute(ctx context.Context, l Line, opts ...Option) error {
	return New(ctx, l, opts...).Wait()
}

// Push mutations into the running line. ErrUnknownContext is returned if
// any of mutations doesn't belong to the line blocks, no mutations are
// pushed in this case.
func (r *Run) Push(ms ...mutable.Mutation) error {
	for _, m := range ms {
		if _, ok := r.contexts[m.Context]; !ok {
			return mutable.ErrUnknownContext
		}
	}
	if r.ctx.Err() != nil {
		return ErrDone
	}
	select {
	case r.mutations <- ms:
		return nil
	case <-r.ctx.Done():
		return ErrDone
	}
}

// Wait for successful finish or first error to occur.
func (r *Run) Wait() error {
	return r.group.Wait()
}
