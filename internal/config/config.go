package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "festflow/common/config"
)

// Config festflow 配置（环境变量）
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled    bool
	Database     commoncfg.DatabaseConfig
	RedisEnabled bool
	Redis        commoncfg.RedisConfig
	Log          struct {
		Level  string
		Format string
	}
	Allocation struct {
		CandidateLimit int
	}
	OccupancyCacheTTL time.Duration
	Registration      RegistrationStreamConfig
	MQTTEnabled       bool
	MQTT              commoncfg.MQTTConfig
	MQTTTopicPrefix   string
	Seed              struct {
		APIBaseURL string
	}
}

// RegistrationStreamConfig 报名事件 Redis Stream
type RegistrationStreamConfig struct {
	Stream        string
	ConsumerGroup string
	ConsumerName  string
	BatchSize     int64
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// 默认启用；DB 不可用时 API 回退到内存存储
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "festflow")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Allocation.CandidateLimit = parseInt(getEnv("ALLOCATION_CANDIDATE_LIMIT", "8"), 8)
	cfg.OccupancyCacheTTL = time.Duration(parseInt(getEnv("OCCUPANCY_CACHE_TTL_SECONDS", "30"), 30)) * time.Second

	cfg.Registration.Stream = getEnv("REGISTRATION_STREAM", "festflow:registrations")
	cfg.Registration.ConsumerGroup = getEnv("REGISTRATION_CONSUMER_GROUP", "festflow-notifier")
	cfg.Registration.ConsumerName = getEnv("REGISTRATION_CONSUMER_NAME", hostname("notifier"))
	cfg.Registration.BatchSize = int64(parseInt(getEnv("REGISTRATION_BATCH_SIZE", "10"), 10))

	// MQTT 仅 notifier 使用，默认禁用
	cfg.MQTTEnabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "festflow-notifier")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1
	cfg.MQTTTopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "festflow")

	cfg.Seed.APIBaseURL = getEnv("SEED_API_BASE_URL", "http://localhost:8080")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func hostname(def string) string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return def
}
