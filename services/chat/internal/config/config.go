package config

import (
	"os"

	"github.com/Skotchmaster/tradefund/pkg/config"
)

type ServiceConfig struct {
	config.Config

	RealtimeEnabled bool
	RedisFanout     bool
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	AllowedOrigins []string
	ConsumerGroup  string
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "chat"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	sc := ServiceConfig{
		Config:          cfg,
		RealtimeEnabled: config.EnvBoolDefault("CHAT_REALTIME_ENABLED", true),
		RedisFanout:     config.EnvBoolDefault("CHAT_REDIS_FANOUT", false),
		RedisAddr:       config.EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         config.EnvIntDefault("REDIS_DB", 0),
		AllowedOrigins:  config.CSV(os.Getenv("CHAT_ALLOWED_ORIGINS")),
		ConsumerGroup:   config.EnvDefault("CHAT_CONSUMER_GROUP", "chat"),
	}
	if sc.RedisFanout {
		config.MustNonEmpty(sc.RedisAddr, "REDIS_ADDR")
	}
	return sc
}
