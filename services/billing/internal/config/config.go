package config

import (
	"os"
	"strings"

	"github.com/Skotchmaster/tradefund/pkg/config"
)

type ServiceConfig struct {
	config.Config

	Providers      []string
	CallbackSecret []byte
	CheckoutURL    string
	SweepSpec      string
	SeedPlans      bool
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "billing"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	providers := config.CSV(config.EnvDefault("BILLING_PROVIDERS", "midtrans,xendit,stripe"))
	for i := range providers {
		providers[i] = strings.ToLower(providers[i])
	}
	sc := ServiceConfig{
		Config:         cfg,
		Providers:      providers,
		CallbackSecret: []byte(os.Getenv("BILLING_CALLBACK_SECRET")),
		CheckoutURL:    os.Getenv("BILLING_CHECKOUT_URL"),
		SweepSpec:      config.EnvDefault("BILLING_SWEEP_SPEC", "@every 10m"),
		SeedPlans:      config.EnvBoolDefault("BILLING_SEED_PLANS", true),
	}
	config.MustNonEmptyBytes(sc.CallbackSecret, "BILLING_CALLBACK_SECRET")
	return sc
}
