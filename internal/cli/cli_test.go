package cli

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("FINTRACK_CONFIG", "")
	t.Setenv("SQLITE_DB_PATH", t.TempDir()+"/fintrack.db")
	t.Setenv("SESSION_SECRET", "")
	_, err := LoadAndValidateConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	t.Setenv("SESSION_SECRET", "0123456789abcdef-secret")
	t.Setenv("PORT", "9000")
	cfg, err := LoadAndValidateConfig("")
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
}

func TestBudgetAlertsDisabledWithoutURL(t *testing.T) {
	cfg := config.Default()
	pub, closeFn := budgetAlerts(log.New(log.Config{Output: io.Discard}), cfg)
	assert.Nil(t, pub)
	closeFn()
}

func TestInitSQLite(t *testing.T) {
	repo, err := InitSQLite(log.New(log.Config{Output: io.Discard}), t.TempDir()+"/nested/fintrack.db")
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}
