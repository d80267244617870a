package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithConfigJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "INFO", Format: "json"}, &buf))

	Info(context.Background(), "tables loaded", "news", 3)
	assert.Contains(t, buf.String(), `"msg":"tables loaded"`)
	assert.Contains(t, buf.String(), `"news":3`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "WARN", Format: "text"}, &buf))

	Info(context.Background(), "hidden")
	Warn(context.Background(), "shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestDebugNeedsDetailedLogging(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "DEBUG", Format: "text"}, &buf))
	Debug(context.Background(), "quiet")
	assert.Empty(t, buf.String())

	require.NoError(t, InitWithConfig(LogConfig{Level: "DEBUG", Format: "text", DetailedLogging: true}, &buf))
	Debug(context.Background(), "loud")
	assert.Contains(t, buf.String(), "loud")
	assert.Contains(t, buf.String(), "source.function")
	assert.True(t, IsDebugEnabled())
}

func TestErrorWithErrAndOperationTimer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "INFO", Format: "text"}, &buf))

	op := StartOperation(context.Background(), "dataset.Load", "source", "csv")
	op.EndWithError(errors.New("boom"))
	assert.Contains(t, buf.String(), "Operation failed")
	assert.Contains(t, buf.String(), "operation=dataset.Load")
	assert.Contains(t, buf.String(), "error=boom")

	buf.Reset()
	ErrorWithErr(context.Background(), "report failed", errors.New("timeout"))
	assert.Contains(t, buf.String(), "error=timeout")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "INFO", parseLogLevel("nonsense").String())
	assert.Equal(t, "ERROR", parseLogLevel("ERROR").String())
}
