package debug_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/pipelined/burst/debug"
	"github.com/pipelined/burst/internal/mock"
	"github.com/pipelined/burst/tag"
)

func TestTags(t *testing.T) {
	l, hook := logtest.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	var buf bytes.Buffer
	d := debug.NewTags(debug.WithName("dbg"), debug.WithLogger(l), debug.WithWriter(&buf))

	in := []complex64{1, 2, 3, 4, 5}
	tags := []tag.Tag{
		{Offset: 1, Key: tag.TxPktLen, Value: tag.Int(3), Source: "delay"},
		{Offset: 4, Key: tag.TxTime, Value: tag.Double(0.25)},
	}
	result := mock.Drive(d, in, tags, 2)

	assert.Equal(t, in, result.Samples)
	assert.Equal(t, tags, result.Tags)
	assert.Equal(t, 2, d.Seen())
	assert.Equal(t, "dbg", d.Name())
	assert.Len(t, hook.AllEntries(), 2)
	assert.Contains(t, buf.String(), "tx_pkt_len")
	assert.Contains(t, buf.String(), "0.25")
	assert.Contains(t, buf.String(), "dbg: ")
}

func TestDump(t *testing.T) {
	one := debug.Dump(tag.Tag{Offset: 7, Key: tag.TxFreq, Value: tag.Double(1622e6)})
	assert.Contains(t, one, "Offset: (uint64) 7")
	assert.Contains(t, one, "Kind: (string) (len=6) \"double\"")

	many := debug.Dump(
		tag.Tag{Offset: 1, Key: "a", Value: tag.Int(1)},
		tag.Tag{Offset: 2, Key: "b", Value: tag.Opaque("c")},
	)
	assert.Contains(t, many, "len=2")
}
