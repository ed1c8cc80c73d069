package config

import "github.com/Skotchmaster/tradefund/pkg/config"

type ServiceConfig struct {
	config.Config

	Root       string
	RatePerSec float64
	RateBurst  int
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "upload"
	}
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	rate := 0.5
	if v := config.EnvIntDefault("UPLOAD_RATE_PER_MIN", 30); v > 0 {
		rate = float64(v) / 60
	}
	return ServiceConfig{
		Config:     cfg,
		Root:       config.EnvDefault("UPLOAD_ROOT", "./uploads"),
		RatePerSec: rate,
		RateBurst:  config.EnvIntDefault("UPLOAD_RATE_BURST", 5),
	}
}
