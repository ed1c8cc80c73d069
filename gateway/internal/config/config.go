package config

import (
	"github.com/Skotchmaster/tradefund/pkg/config"
)

type Config struct {
	config.Config

	AuthURL         string
	TradingURL      string
	InvestmentURL   string
	NotificationURL string
	ChatURL         string
	UploadURL       string
	DashboardURL    string
	BillingURL      string

	CSRFEnabled  bool
	CookieSecure bool

	RatePerSecond float64
	RateBurst     int
}

func Load() *Config {
	base := config.Load()
	if base.ServiceName == "" {
		base.ServiceName = "gateway"
	}
	config.MustNonEmptyBytes(base.JWTAccessSecret, "JWT_SECRET")

	cfg := &Config{
		Config:          base,
		AuthURL:         config.EnvDefault("AUTH_URL", "http://localhost:8081"),
		TradingURL:      config.EnvDefault("TRADING_URL", "http://localhost:8082"),
		InvestmentURL:   config.EnvDefault("INVESTMENT_URL", "http://localhost:8083"),
		NotificationURL: config.EnvDefault("NOTIFICATION_URL", "http://localhost:8084"),
		ChatURL:         config.EnvDefault("CHAT_URL", "http://localhost:8085"),
		UploadURL:       config.EnvDefault("UPLOAD_URL", "http://localhost:8086"),
		DashboardURL:    config.EnvDefault("DASHBOARD_URL", "http://localhost:8087"),
		BillingURL:      config.EnvDefault("BILLING_URL", "http://localhost:8088"),
		CSRFEnabled:     config.EnvBoolDefault("GATEWAY_CSRF_ENABLED", true),
		CookieSecure:    config.EnvBoolDefault("GATEWAY_COOKIE_SECURE", false),
		RatePerSecond:   float64(config.EnvIntDefault("GATEWAY_RATE_PER_SEC", 20)),
		RateBurst:       config.EnvIntDefault("GATEWAY_RATE_BURST", 40),
	}
	return cfg
}
