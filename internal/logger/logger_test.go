package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugSuppressedUntilEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetDebug(false)
	})

	SetDebug(false)
	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())
	assert.False(t, IsDebug())

	SetDebug(true)
	Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.True(t, IsDebug())
}

func TestLevelsAreTagged(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("info message")
	Warn("warn message")
	Error("error message %s", "here")

	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "level=error")
	assert.Contains(t, out, "error message here")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	WithFields(map[string]interface{}{"dataset": "traces"}).Info("loaded")
	assert.Contains(t, buf.String(), "dataset=traces")
}
