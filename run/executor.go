package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/internal/stream"
	"github.com/pipelined/burst/log"
	"github.com/pipelined/burst/metric"
	"github.com/pipelined/burst/mutable"
)

// idleBackoff is the pause after a pass without progress.
const idleBackoff = time.Millisecond

// executor executes all stages of the line in a single goroutine.
type executor struct {
	line    Line
	buffers []*stream.Buffer
	batch   func() int
	log     log.Logger

	sourceMeter metric.Meter
	sinkMeter   metric.Meter
	blockMeters []metric.Meter

	mutations  mutable.Destination
	sourceDone bool
}

func newExecutor(l Line, o options, mutations mutable.Destination) *executor {
	e := executor{
		line:        l,
		buffers:     make([]*stream.Buffer, len(l.Blocks)+1),
		batch:       o.batch,
		log:         o.log,
		sourceMeter: o.metrics.Meter("source"),
		sinkMeter:   o.metrics.Meter("sink"),
		blockMeters: make([]metric.Meter, len(l.Blocks)),
		mutations:   mutations,
	}
	for i := range e.buffers {
		e.buffers[i] = stream.New(o.bufferSize)
	}
	for i, b := range l.Blocks {
		e.blockMeters[i] = o.metrics.Meter(b.Name())
	}
	return &e
}

// run starts, executes and flushes the line.
func (e *executor) run(ctx context.Context) error {
	if err := e.start(); err != nil {
		return fmt.Errorf("error starting line: %w", err)
	}
	var err error
	for err == nil {
		err = e.execute(ctx)
	}
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return (&burst.ErrorRun{
		ErrExec:  err,
		ErrFlush: e.flush(),
	}).Ret()
}

// start resets all blocks.
func (e *executor) start() error {
	for _, b := range e.line.Blocks {
		if r, ok := b.(burst.Resetter); ok {
			if err := r.Reset(); err != nil {
				return fmt.Errorf("error resetting %s: %w", b.Name(), err)
			}
		}
	}
	return nil
}

// execute makes a single pass over the line. Pending mutations are applied
// before the pass. io.EOF is returned when source is done and pass made no
// progress. Pass without progress on live source is followed by a pause.
func (e *executor) execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.mutate(); err != nil {
		return err
	}
	progress, err := e.pull(ctx)
	if err != nil {
		return err
	}
	for i := range e.line.Blocks {
		if e.work(ctx, i) {
			progress = true
		}
	}
	pushed, err := e.push(ctx)
	if err != nil {
		return err
	}
	if progress || pushed {
		return nil
	}
	if e.sourceDone {
		return io.EOF
	}
	return e.idle(ctx)
}

// idle backs off when live source has no items yet.
func (e *executor) idle(ctx context.Context) error {
	t := time.NewTimer(idleBackoff)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *executor) mutate() error {
	select {
	case ms := <-e.mutations:
		for _, b := range e.line.Blocks {
			m, ok := b.(mutableBlock)
			if !ok {
				continue
			}
			if err := ms.ApplyTo(m.Mutable()); err != nil {
				return fmt.Errorf("error mutating %s: %w", b.Name(), err)
			}
		}
	default:
	}
	return nil
}

func (e *executor) pull(ctx context.Context) (bool, error) {
	if e.sourceDone {
		return false, nil
	}
	out := e.limit(e.buffers[0].Writable())
	if len(out) == 0 {
		return false, nil
	}
	start := time.Now()
	n, err := e.line.Source.Pull(out, e.buffers[0].Written(), e.buffers[0].Tags)
	if n > len(out) || n < 0 {
		panic(fmt.Errorf("%w: source produced %d of %d", burst.ErrAccounting, n, len(out)))
	}
	e.buffers[0].Commit(n)
	e.sourceMeter.Work(ctx, n, 0, time.Since(start))
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("error pulling source: %w", err)
		}
		e.sourceDone = true
		e.log.WithField("items", e.buffers[0].Written()).Debug("source done")
	}
	return n > 0, nil
}

// work executes block i if it has enough input and output space.
func (e *executor) work(ctx context.Context, i int) bool {
	b := e.line.Blocks[i]
	in, out := e.buffers[i], e.buffers[i+1]
	outSpace := e.limit(out.Writable())
	if len(outSpace) == 0 {
		return false
	}
	inItems := e.limit(in.Readable())
	required := 1
	if f, ok := b.(burst.Forecaster); ok {
		required = f.Forecast(len(outSpace))
	}
	if required > len(inItems) {
		return false
	}
	w := burst.Work{
		In:      inItems,
		Out:     outSpace,
		Read:    in.Read(),
		Written: out.Written(),
		InTags:  in.Tags,
		OutTags: out.Tags,
	}
	start := time.Now()
	produced, consumed := b.Work(&w)
	if produced > len(outSpace) || consumed > len(inItems) || produced < 0 || consumed < 0 {
		panic(fmt.Errorf("%w: %s produced %d of %d consumed %d of %d", burst.ErrAccounting, b.Name(), produced, len(outSpace), consumed, len(inItems)))
	}
	out.Commit(produced)
	in.Consume(consumed)
	e.blockMeters[i].Work(ctx, produced, consumed, time.Since(start))
	return produced > 0 || consumed > 0
}

func (e *executor) push(ctx context.Context) (bool, error) {
	last := e.buffers[len(e.buffers)-1]
	in := e.limit(last.Readable())
	if len(in) == 0 {
		return false, nil
	}
	start := time.Now()
	tags := last.Tags.Range(last.Read(), last.Read()+uint64(len(in)))
	if err := e.line.Sink.Push(in, last.Read(), tags); err != nil {
		return false, fmt.Errorf("error pushing sink: %w", err)
	}
	last.Consume(len(in))
	e.sinkMeter.Work(ctx, 0, len(in), time.Since(start))
	return true, nil
}

// flush calls flush hooks of source and sink. Both are called even if the
// first one fails.
func (e *executor) flush() error {
	var errs []error
	for _, c := range []interface{}{e.line.Source, e.line.Sink} {
		if f, ok := c.(burst.Flusher); ok {
			if err := f.Flush(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("error flushing line: %w", err)
	}
	return nil
}

// limit applies batch size to the buffer.
func (e *executor) limit(s []complex64) []complex64 {
	if e.batch == nil {
		return s
	}
	if n := e.batch(); n > 0 && n < len(s) {
		return s[:n]
	}
	return s
}
