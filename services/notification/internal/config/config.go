package config

import "github.com/Skotchmaster/tradefund/pkg/config"

type ServiceConfig struct {
	config.Config
	ConsumerGroup string
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "notification"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	return ServiceConfig{
		Config:        cfg,
		ConsumerGroup: config.EnvDefault("NOTIFICATION_CONSUMER_GROUP", "notification"),
	}
}
