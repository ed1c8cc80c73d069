package config

import (
	"time"

	"github.com/Skotchmaster/tradefund/pkg/config"
)

type ServiceConfig struct {
	config.Config

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	LoginRatePerSecond float64
	LoginBurst         int

	SuperAdminEmail    string
	SuperAdminPassword string
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "auth"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")

	return ServiceConfig{
		Config:             cfg,
		AccessTTL:          config.EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:         config.EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		LoginRatePerSecond: float64(config.EnvIntDefault("LOGIN_RATE_PER_MINUTE", 30)) / 60,
		LoginBurst:         config.EnvIntDefault("LOGIN_BURST", 10),
		SuperAdminEmail:    config.EnvDefault("SUPER_ADMIN_EMAIL", ""),
		SuperAdminPassword: config.EnvDefault("SUPER_ADMIN_PASSWORD", ""),
	}
}
