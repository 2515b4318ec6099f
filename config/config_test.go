package config

import (
	"testing"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "@every 1m", cfg.Jobs.StatsCron)
	assert.Equal(t, domain.DefaultConfig(), cfg.SimulationConfig())
	assert.True(t, cfg.Traffic.AutoStart)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("TRAFFIC_NODE_COUNT", "12")
	t.Setenv("TRAFFIC_ROAD_DENSITY", "0.5")
	t.Setenv("TRAFFIC_UPDATE_INTERVAL_MS", "2000")
	t.Setenv("TRAFFIC_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, uint64(42), cfg.Traffic.Seed)

	sim := cfg.SimulationConfig()
	assert.Equal(t, 12, sim.NodeCount)
	assert.Equal(t, 0.5, sim.RoadDensity)
	assert.Equal(t, int64(2000), sim.UpdateInterval)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("TRAFFIC_NODE_COUNT", "lots")
	t.Setenv("TRAFFIC_BASE_LEVEL", "high")
	t.Setenv("REDIS_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig().NodeCount, cfg.Traffic.NodeCount)
	assert.Equal(t, domain.DefaultConfig().BaseTrafficLevel, cfg.Traffic.BaseTrafficLevel)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_RejectsOutOfRangeTraffic(t *testing.T) {
	t.Setenv("TRAFFIC_NODE_COUNT", "500")

	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg.Redis.Enabled = false
	cfg.Server.Port = ""
	assert.Error(t, cfg.Validate())
}
