package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 8, cfg.DefaultPageSize)
	assert.Equal(t, 2, cfg.RateLimitMax)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadRejectsUnknownDBType(t *testing.T) {
	t.Setenv("DB_TYPE", "mysql")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STREAM_LIBRARY_ID", " 424242 ")
	t.Setenv("DEFAULT_PAGE_SIZE", "20")
	t.Setenv("MAX_PAGE_SIZE", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "424242", cfg.LibraryID)
	// max page size can never undercut the default
	assert.Equal(t, 20, cfg.MaxPageSize)
}
