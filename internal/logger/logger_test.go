package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoAfterWarnKeepsOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup("info", &buf)
	t.Cleanup(func() { Setup("info", os.Stderr) })

	logrus.Info("first-info")
	logrus.Warn("a-warning")
	logrus.Info("second-info")

	out := buf.String()
	assert.Contains(t, out, "first-info")
	assert.Contains(t, out, "second-info")
	assert.NotContains(t, out, "a-warning")
}

func TestSetupReplacesHooks(t *testing.T) {
	var buf bytes.Buffer
	Setup("debug", &buf)
	Setup("debug", &buf)
	t.Cleanup(func() { Setup("info", os.Stderr) })

	logrus.Debug("once")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("once")))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestWriterHookLevels(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	log.AddHook(&WriterHook{Writer: &buf, LogLevels: errorLevels})

	log.Info("quiet")
	log.Error("loud")
	require.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), "loud")
	assert.NotContains(t, buf.String(), "quiet")
}
