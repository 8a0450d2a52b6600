package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/placement-go/internal/application/logging"
)

func TestLoggerFromContext_FallsBackToNoOp(t *testing.T) {
	logger := logging.LoggerFromContext(context.Background())

	assert.NotPanics(t, func() { logger.Log("INFO", "ignored", nil) })
}

func TestSlogLogger_WritesJSONAboveLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logging.NewSlogLogger(&buf, "info", "json", false)
	ctx := logging.WithLogger(context.Background(), logger)

	// Act
	logging.LoggerFromContext(ctx).Log("DEBUG", "hidden", nil)
	logging.LoggerFromContext(ctx).Log("INFO", "[Placement] 2 infantry placed in Germany", map[string]interface{}{"producer": "Germany"})

	// Assert
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "[Placement] 2 infantry placed in Germany", entry["msg"])
	assert.Equal(t, "Germany", entry["producer"])
}

func TestSlogLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlogLogger(&buf, "debug", "text", false)

	logger.Log("ERROR", "boom", nil)

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "msg=boom")
}
