package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0, cfg.Threads)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.ExplainFormat)
}

func TestConfigSetThreads(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Set("threads", "4"))
	assert.Equal(t, 4, cfg.Threads)
}

func TestConfigSetThreadsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Set("threads", "not-a-number"), "expected error setting threads to a non-integer")
}

func TestConfigSetTimeout(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Set("timeout", "500"))
	assert.EqualValues(t, 500, cfg.Timeout.Milliseconds())
}

func TestConfigSetExplainFormatValidation(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Set("explain_format", "json"))
	assert.Equal(t, "json", cfg.ExplainFormat)
	assert.Error(t, cfg.Set("explain_format", "xml"), "expected error for an unsupported explain_format")
}

func TestConfigSetUnknownKey(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Set("bogus_option", "1"), "expected error setting an unknown option")
}
