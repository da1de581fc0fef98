package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.local",
		Port:     5433,
		User:     "fest",
		Password: "secret",
		Database: "fest_flow",
		SSLMode:  "disable",
	}

	assert.Equal(t, "host=db.local port=5433 user=fest password=secret dbname=fest_flow sslmode=disable", cfg.GetDSN())
}

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("FF_DB_HOST", "pg")
	t.Setenv("FF_DB_PORT", "6543")
	t.Setenv("FF_DB_NAME", "festflow_test")
	t.Setenv("FF_DB_MAX_CONNS", "not-a-number")

	cfg := DatabaseConfig{Host: "localhost", Port: 5432, Database: "fest_flow", MaxConns: 10}
	cfg.LoadFromEnv("FF_DB")

	assert.Equal(t, "pg", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "festflow_test", cfg.Database)
	// 非法数字保持原值
	assert.Equal(t, 10, cfg.MaxConns)
}

func TestMQTTConfig_LoadFromEnv_QoSRange(t *testing.T) {
	t.Setenv("FF_MQTT_QOS", "7")

	cfg := MQTTConfig{QoS: 1}
	cfg.LoadFromEnv("FF_MQTT")
	assert.Equal(t, byte(1), cfg.QoS)

	t.Setenv("FF_MQTT_QOS", "2")
	cfg.LoadFromEnv("FF_MQTT")
	assert.Equal(t, byte(2), cfg.QoS)
}
