package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Traffic TrafficConfig
	Jobs    JobsConfig
	App     AppConfig
}

type ServerConfig struct {
	Port string
	// Mutating endpoints share one token bucket; zero disables limiting.
	IncidentRateLimit float64 // requests per second
	IncidentRateBurst int
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type TrafficConfig struct {
	NodeCount           int
	RoadDensity         float64
	UpdateIntervalMs    int64
	BaseTrafficLevel    float64
	TrafficVariability  float64
	IncidentProbability float64
	Seed                uint64 // 0 seeds from the clock
	AutoStart           bool
}

type JobsConfig struct {
	StatsCron string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	def := domain.DefaultConfig()
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "8000"),
			IncidentRateLimit: getEnvAsFloat("INCIDENT_RATE_LIMIT", 5),
			IncidentRateBurst: getEnvAsInt("INCIDENT_RATE_BURST", 10),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Traffic: TrafficConfig{
			NodeCount:           getEnvAsInt("TRAFFIC_NODE_COUNT", def.NodeCount),
			RoadDensity:         getEnvAsFloat("TRAFFIC_ROAD_DENSITY", def.RoadDensity),
			UpdateIntervalMs:    int64(getEnvAsInt("TRAFFIC_UPDATE_INTERVAL_MS", int(def.UpdateInterval))),
			BaseTrafficLevel:    getEnvAsFloat("TRAFFIC_BASE_LEVEL", def.BaseTrafficLevel),
			TrafficVariability:  getEnvAsFloat("TRAFFIC_VARIABILITY", def.TrafficVariability),
			IncidentProbability: getEnvAsFloat("TRAFFIC_INCIDENT_PROBABILITY", def.IncidentProbability),
			Seed:                uint64(getEnvAsInt("TRAFFIC_SEED", 0)),
			AutoStart:           getEnvAsBool("TRAFFIC_AUTOSTART", true),
		},
		Jobs: JobsConfig{
			StatsCron: getEnv("STATS_CRON", "@every 1m"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED is set")
	}

	if c.Server.IncidentRateLimit < 0 || c.Server.IncidentRateBurst < 0 {
		return fmt.Errorf("INCIDENT_RATE_LIMIT and INCIDENT_RATE_BURST must not be negative")
	}

	if err := c.SimulationConfig().Validate(); err != nil {
		return fmt.Errorf("traffic config: %w", err)
	}

	return nil
}

// SimulationConfig converts the env-driven settings into engine tunables
func (c *Config) SimulationConfig() domain.Config {
	return domain.Config{
		NodeCount:           c.Traffic.NodeCount,
		UpdateInterval:      c.Traffic.UpdateIntervalMs,
		BaseTrafficLevel:    c.Traffic.BaseTrafficLevel,
		TrafficVariability:  c.Traffic.TrafficVariability,
		IncidentProbability: c.Traffic.IncidentProbability,
		RoadDensity:         c.Traffic.RoadDensity,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}
