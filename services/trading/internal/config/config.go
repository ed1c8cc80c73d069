package config

import (
	"os"

	"github.com/Skotchmaster/tradefund/pkg/config"
)

type ServiceConfig struct {
	config.Config

	SearchEnabled bool
	ESURL         string
	ESUser        string
	ESPassword    string
	ESIndex       string
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "trading"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	sc := ServiceConfig{
		Config:        cfg,
		SearchEnabled: config.EnvBoolDefault("SEARCH_ENABLED", false),
		ESURL:         os.Getenv("ES_URL"),
		ESUser:        os.Getenv("ES_USER"),
		ESPassword:    os.Getenv("ES_PASSWORD"),
		ESIndex:       config.EnvDefault("ES_INDEX", "products"),
	}
	if sc.SearchEnabled {
		config.MustNonEmpty(sc.ESURL, "ES_URL")
	}
	return sc
}
