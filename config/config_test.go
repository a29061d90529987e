package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/burst/config"
	"github.com/pipelined/burst/delay"
	"github.com/pipelined/burst/shift"
	"github.com/pipelined/burst/translate"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	assert.Equal(t, 4, c.Translator.SamplesPerSymbol)
	assert.Equal(t, 16, c.Translator.PreambleLen)
	assert.Equal(t, 100, c.Translator.PaddingLen)
	assert.Equal(t, 100000.0, c.Delay.SampleRate)
	assert.Equal(t, "tx_pkt_len", c.Delay.LengthKey)
	assert.Equal(t, "tx_time", c.Delay.TimeKey)
	assert.Equal(t, 1.0, c.Shifter.Amplitude)
	assert.Equal(t, shift.DefaultCenter, c.Shifter.Center)
	assert.Equal(t, 4096, c.Run.BufferSize)
	assert.Equal(t, "info", c.Log.Level)
}

func TestRead(t *testing.T) {
	c, err := config.Read(strings.NewReader(`
translator:
  padding_len: 50
delay:
  sample_rate: 1000000
shifter:
  frequency: -2500.5
  call_retune: true
log:
  level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, 50, c.Translator.PaddingLen)
	assert.Equal(t, 4, c.Translator.SamplesPerSymbol)
	assert.Equal(t, 1e6, c.Delay.SampleRate)
	assert.Equal(t, -2500.5, c.Shifter.Frequency)
	assert.True(t, c.Shifter.CallRetune)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burst.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run:\n  buffer_size: 128\n"), 0o644))
	t.Setenv("BURST_DELAY_SAMPLE_RATE", "2000000")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 128, c.Run.BufferSize)
	assert.Equal(t, 2e6, c.Delay.SampleRate)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInvalid(t *testing.T) {
	tests := []string{
		"translator:\n  sps: 0\n",
		"delay:\n  sample_rate: -1\n",
		"shifter:\n  sample_rate: 0\n",
		"run:\n  buffer_size: 0\n",
		"log:\n  level: loud\n",
		"delay:\n  time_key: \"\"\n",
	}
	for _, test := range tests {
		_, err := config.Read(strings.NewReader(test))
		assert.True(t, errors.Is(err, config.ErrInvalid), "%q: %v", test, err)
	}
}

func TestBlocks(t *testing.T) {
	l, _ := logtest.NewNullLogger()
	c := config.Default()
	c.Shifter.CallRetune = true
	blocks := c.Blocks(l, nil)
	require.Len(t, blocks, 3)

	tr, ok := blocks[0].(*translate.Translator)
	require.True(t, ok)
	assert.Equal(t, 16, tr.Preamble())
	_, ok = blocks[1].(*delay.Delay)
	assert.True(t, ok)
	s, ok := blocks[2].(*shift.Shifter)
	require.True(t, ok)
	assert.Equal(t, 0.0, s.Frequency())
}
