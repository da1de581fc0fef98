package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "festflow", cfg.Database.Database)
	assert.Equal(t, 20, cfg.Database.MaxConns)
	assert.Equal(t, 8, cfg.Allocation.CandidateLimit)
	assert.Equal(t, 30*time.Second, cfg.OccupancyCacheTTL)
	assert.Equal(t, "festflow:registrations", cfg.Registration.Stream)
	assert.False(t, cfg.MQTTEnabled)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ALLOCATION_CANDIDATE_LIMIT", "2")
	t.Setenv("OCCUPANCY_CACHE_TTL_SECONDS", "5")
	t.Setenv("REGISTRATION_BATCH_SIZE", "50")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("MQTT_TOPIC_PREFIX", "campus")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 2, cfg.Allocation.CandidateLimit)
	assert.Equal(t, 5*time.Second, cfg.OccupancyCacheTTL)
	assert.Equal(t, int64(50), cfg.Registration.BatchSize)
	assert.True(t, cfg.MQTTEnabled)
	assert.Equal(t, "campus", cfg.MQTTTopicPrefix)
}

func TestParseInt_InvalidFallsBack(t *testing.T) {
	assert.Equal(t, 7, parseInt("abc", 7))
	assert.Equal(t, 0, parseInt("0", 7))
}
