package config_test

import (
	"testing"

	"github.com/communitybank/corebank/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret-value")

	cfg, err := config.Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "Community Trust Bank", cfg.Bank.Name)
	assert.InDelta(t, 3.5, cfg.Bank.SavingsRate, 0.0001)
	assert.Equal(t, "unit-test-secret-value", cfg.Jwt.Secret)
	assert.True(t, cfg.Jobs.Enabled)
	assert.Equal(t, "0 2 1 * *", cfg.Jobs.InterestSchedule)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("BANK_NAME", "First Harbor Bank")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("JOBS_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "First Harbor Bank", cfg.Bank.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Jobs.Enabled)
}
