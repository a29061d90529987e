package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/burst/internal/mock"
	"github.com/pipelined/burst/tag"
	"github.com/pipelined/burst/wav"
)

func TestInit(t *testing.T) {
	// check if commands are registered
	assert.Equal(t, 3, len(commands()))

	var out bytes.Buffer
	c := app{args: []string{"bursttx"}, stdout: &out}
	assert.Equal(t, errorExitCode, c.run())
	assert.Contains(t, out.String(), "process")

	out.Reset()
	c = app{args: []string{"bursttx", "process"}, stdout: &out}
	assert.Equal(t, errorExitCode, c.run())
	assert.Contains(t, out.String(), "missing -in required flag")
}

// writeInput writes a recording with one framed packet.
func writeInput(t *testing.T, path string) {
	t.Helper()
	in := make([]complex64, 1000)
	for i := range in {
		in[i] = complex(0.5, 0)
	}
	sink, err := wav.NewSink(path, 100000, wav.BitDepth16)
	require.NoError(t, err)
	require.NoError(t, sink.Push(in, 0, []tag.Tag{
		{Offset: 0, Key: tag.PacketLen, Value: tag.Int(1000)},
		{Offset: 16, Key: tag.TimeOffset, Value: tag.Double(0.001)},
		{Offset: 16, Key: tag.FreqInit, Value: tag.Double(1622e6 + 25000)},
	}))
	require.NoError(t, sink.Flush())
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.wav"), filepath.Join(dir, "out.wav")
	writeInput(t, in)

	var stdout bytes.Buffer
	c := app{args: []string{"bursttx", "process", "-in", in, "-out", out}, stdout: &stdout}
	require.Equal(t, successExitCode, c.run(), stdout.String())

	tags, err := wav.ReadTags(wav.SidecarPath(out))
	require.NoError(t, err)
	var lengths []tag.Tag
	for _, tg := range tags {
		if tg.Key == tag.TxPktLen {
			lengths = append(lengths, tg)
		}
	}
	require.Len(t, lengths, 1)
	assert.Equal(t, uint64(100), lengths[0].Offset)
	assert.Equal(t, tag.Int(900), lengths[0].Value)

	stdout.Reset()
	c = app{args: []string{"bursttx", "inspect", "-in", out}, stdout: &stdout}
	require.Equal(t, successExitCode, c.run(), stdout.String())
	assert.Contains(t, stdout.String(), "burst at 100: 900 items, peak 25000.0 Hz")

	stdout.Reset()
	c = app{args: []string{"bursttx", "diff", "-a", in, "-b", in}, stdout: &stdout}
	assert.Equal(t, successExitCode, c.run())
	assert.Empty(t, stdout.String())

	stdout.Reset()
	c = app{args: []string{"bursttx", "diff", "-a", in, "-b", wav.SidecarPath(out)}, stdout: &stdout}
	assert.Equal(t, errorExitCode, c.run())
	assert.Contains(t, stdout.String(), "+100 tx_pkt_len=900")
}

func TestMissingFile(t *testing.T) {
	var stdout bytes.Buffer
	c := app{args: []string{"bursttx", "inspect", "-in", filepath.Join(t.TempDir(), "none.wav")}, stdout: &stdout}
	assert.Equal(t, errorExitCode, c.run())
	assert.Contains(t, stdout.String(), "Command failed")
}

type rateSource struct {
	*mock.Source
}

func (rateSource) SampleRate() int {
	return 1000
}

func TestReadSource(t *testing.T) {
	errClose := errors.New("close failed")
	tests := map[string]struct {
		source *mock.Source
		err    error
	}{
		"ok": {
			source: &mock.Source{
				Limit: 10,
				Value: 1,
				Tags:  []tag.Tag{{Offset: 3, Key: tag.TxTime, Value: tag.Double(1)}},
			},
		},
		"flush error": {
			source: &mock.Source{
				Limit: 10,
				Value: 1,
				Hooks: mock.Hooks{ErrorOnFlush: errClose},
			},
			err: errClose,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			samples, tags, rate, err := readSource(rateSource{test.source})
			assert.True(t, test.source.Flushed)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, samples, 10)
			assert.Equal(t, test.source.Tags, tags)
			assert.Equal(t, 1000, rate)
		})
	}
}
