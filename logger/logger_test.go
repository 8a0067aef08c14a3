package logger

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerComponents(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	defer func() { Default = nil }()

	ForVenue("r-1").Info().Msg("scrape started")
	LogError("worker", errors.New("boom"), "job %d failed", 7)

	out := buf.String()
	assert.Contains(t, out, `"restaurant_id":"r-1"`)
	assert.Contains(t, out, `"component":"pipeline"`)
	assert.Contains(t, out, `"component":"worker"`)
	assert.Contains(t, out, "job 7 failed")
	assert.Contains(t, out, "boom")
}

func TestGetLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, "warn", getLogLevel().String())

	os.Setenv("LOG_LEVEL", "nonsense")
	assert.Equal(t, "info", getLogLevel().String())

	os.Unsetenv("LOG_LEVEL")
	os.Setenv("DEALWORKER_ENVIRONMENT", "production")
	assert.Equal(t, "info", getLogLevel().String())

	os.Unsetenv("DEALWORKER_ENVIRONMENT")
	assert.Equal(t, "debug", getLogLevel().String())
}
