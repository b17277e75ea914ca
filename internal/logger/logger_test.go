package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	Info().Str("doc", "r-1").Msg("analyzed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "r-1", entry["doc"])
	assert.Equal(t, "analyzed", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestInit_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("hidden")
	assert.Empty(t, buf.String())

	Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInit_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "loud", Output: &buf})

	Debug().Msg("hidden")
	assert.Empty(t, buf.String())
	Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})

	ctx := WithContext(context.Background())
	Ctx(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}
