package log_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/pipelined/burst/log"
)

func TestWithLevel(t *testing.T) {
	l, err := log.WithLevel("warn")
	assert.Nil(t, err)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	l, err = log.WithLevel("")
	assert.Nil(t, err)
	assert.NotNil(t, l)

	_, err = log.WithLevel("loud")
	assert.NotNil(t, err)
}

func TestStage(t *testing.T) {
	var buf bytes.Buffer
	l := log.GetLogger()
	l.SetOutput(&buf)
	log.Stage(l, "delay-1").Info("hello")
	assert.Contains(t, buf.String(), "stage=delay-1")
}
