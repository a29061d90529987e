package run

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/burst"
	"github.com/pipelined/burst/internal/mock"
	"github.com/pipelined/burst/log"
	"github.com/pipelined/burst/mutable"
	"github.com/pipelined/burst/tag"
)

// greedy reports more items than it was given.
type greedy struct{}

func (greedy) Name() string { return "greedy" }

func (greedy) Work(w *burst.Work) (int, int) {
	return len(w.Out) + 1, 0
}

func TestAccounting(t *testing.T) {
	o := options{bufferSize: 8, log: log.GetLogger()}
	e := newExecutor(Line{
		Source: &mock.Source{Limit: 4},
		Blocks: []burst.Block{greedy{}},
		Sink:   &mock.Sink{},
	}, o, mutable.NewDestination())

	progress, err := e.pull(context.Background())
	assert.True(t, progress)
	assert.NoError(t, err)
	assert.PanicsWithError(t, "block accounting violated: greedy produced 9 of 8 consumed 0 of 4", func() {
		e.work(context.Background(), 0)
	})
}

func TestForecast(t *testing.T) {
	o := options{bufferSize: 8, log: log.GetLogger()}
	block := &mock.Block{BlockName: "copy"}
	e := newExecutor(Line{
		Source: &mock.Source{Limit: 4},
		Blocks: []burst.Block{block},
		Sink:   &mock.Sink{},
	}, o, mutable.NewDestination())

	// no input, block isn't called.
	assert.False(t, e.work(context.Background(), 0))
	assert.Equal(t, 0, block.Calls)

	_, _ = e.pull(context.Background())
	assert.True(t, e.work(context.Background(), 0))
	assert.Equal(t, 4, block.Items)
}

func TestLimit(t *testing.T) {
	e := executor{batch: func() int { return 3 }}
	assert.Len(t, e.limit(make([]complex64, 10)), 3)
	assert.Len(t, e.limit(make([]complex64, 2)), 2)
	e.batch = nil
	assert.Len(t, e.limit(make([]complex64, 10)), 10)
}

func TestExecuteEOF(t *testing.T) {
	o := options{bufferSize: 8, log: log.GetLogger()}
	e := newExecutor(Line{
		Source: &mock.Source{Limit: 3},
		Sink:   &mock.Sink{},
	}, o, mutable.NewDestination())
	var err error
	passes := 0
	for err == nil {
		err = e.execute(context.Background())
		passes++
	}
	assert.True(t, errors.Is(err, io.EOF))
	assert.LessOrEqual(t, passes, 3)
}

// liveSource has no items for the first empty calls.
type liveSource struct {
	empty int
	calls int
}

func (s *liveSource) Pull([]complex64, uint64, tag.Writer) (int, error) {
	s.calls++
	if s.calls <= s.empty {
		return 0, nil
	}
	return 0, io.EOF
}

func TestIdle(t *testing.T) {
	o := options{bufferSize: 8, log: log.GetLogger()}
	source := &liveSource{empty: 5}
	e := newExecutor(Line{
		Source: source,
		Sink:   &mock.Sink{},
	}, o, mutable.NewDestination())

	start := time.Now()
	var err error
	for err == nil {
		err = e.execute(context.Background())
	}
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 6, source.calls)
	assert.GreaterOrEqual(t, time.Since(start), 5*idleBackoff)

	// pause is interrupted by cancel.
	ctx, cancelFn := context.WithCancel(context.Background())
	cancelFn()
	require.ErrorIs(t, e.idle(ctx), context.Canceled)
}
