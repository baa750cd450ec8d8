package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "recipetalk", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "recipetalk.db", cfg.Database.Path)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "http://localhost:11434", cfg.AI.BaseURL)
	assert.Equal(t, 3, cfg.Dialogue.TopN)
	assert.Equal(t, 10, cfg.Dialogue.ReadyAttempts)
	assert.Equal(t, time.Second, cfg.Dialogue.ReadyInterval)
	assert.Equal(t, 30*time.Second, cfg.Dialogue.QueryTimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RECIPETALK_SERVER_PORT", "9090")
	t.Setenv("RECIPETALK_AI_MODEL", "llama3.1:8b")
	t.Setenv("RECIPETALK_DIALOGUE_TOP_N", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "llama3.1:8b", cfg.AI.Model)
	assert.Equal(t, 5, cfg.Dialogue.TopN)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	cfg := valid()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.AI.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Dialogue.TopN = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Dialogue.QueryTimeout = 0
	assert.Error(t, cfg.Validate())
}
