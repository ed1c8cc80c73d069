package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/tradefund/gateway/internal/config"
	"github.com/Skotchmaster/tradefund/gateway/internal/httpserver"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/middleware/csrf"
	"github.com/Skotchmaster/tradefund/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/tradefund/pkg/server"
	"github.com/Skotchmaster/tradefund/pkg/tradingclient"
)

func main() {
	if err := godotenv.Load("gateway/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	var csrfCfg *csrf.Config
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		c.Secure = cfg.CookieSecure
		c.SkipPaths = []string{"/api/v1/auth/login", "/api/v1/auth/register", "/api/v1/auth/refresh"}
		c.SkipPrefixes = []string{"/api/v1/subscription/callbacks/"}
		csrfCfg = &c
	}

	limiter := ratelimit.New(cfg.RatePerSecond, cfg.RateBurst)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		t := time.NewTicker(5 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				limiter.Cleanup()
			}
		}
	}()

	e := server.NewEcho(logger, cfg.ServiceName)
	if err := httpserver.Register(e, &httpserver.Deps{
		Upstreams: httpserver.DefaultUpstreams(
			cfg.AuthURL, cfg.TradingURL, cfg.InvestmentURL, cfg.NotificationURL,
			cfg.ChatURL, cfg.DashboardURL, cfg.BillingURL, cfg.UploadURL,
		),
		UploadURL: cfg.UploadURL,
		Checkout:  &httpserver.CheckoutHTTP{Trading: tradingclient.NewClient(cfg.TradingURL)},
		JWTSecret: cfg.JWTAccessSecret,
		CSRF:      csrfCfg,
		Limiter:   limiter,
	}); err != nil {
		log.Fatal(err)
	}

	srv := server.NewHTTPServer(cfg.Addr(), e)
	// proxied chat websockets outlive any per-request deadline
	srv.ReadTimeout = 0
	srv.WriteTimeout = 0
	server.Run(ctx, cancel, srv, logger)
}
