package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	pkgdb "github.com/Skotchmaster/tradefund/pkg/db"
	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/server"

	billingcfg "github.com/Skotchmaster/tradefund/services/billing/internal/config"
	"github.com/Skotchmaster/tradefund/services/billing/internal/httpserver"
	"github.com/Skotchmaster/tradefund/services/billing/internal/models"
	"github.com/Skotchmaster/tradefund/services/billing/internal/repo"
	"github.com/Skotchmaster/tradefund/services/billing/internal/service"
	"github.com/Skotchmaster/tradefund/services/billing/internal/sweeper"
)

func main() {
	if err := godotenv.Load("services/billing/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := billingcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := pkgdb.Migrate(initCtx, db, models.All()...); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	r := &repo.GormRepo{DB: db}
	if cfg.SeedPlans {
		if err := r.SeedPlans(initCtx, models.DefaultPlans()); err != nil {
			log.Fatalf("seed plans: %v", err)
		}
	}
	cancelInit()
	defer pkgdb.Close(db)

	pub, closePub := events.Open(cfg.EventsEnabled, cfg.KafkaBrokers)
	defer closePub()

	svc := &service.BillingService{
		Repo:           r,
		Events:         events.NewBestEffort(pub, cfg.ServiceName),
		Providers:      cfg.Providers,
		CallbackSecret: cfg.CallbackSecret,
		CheckoutURL:    cfg.CheckoutURL,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw, err := sweeper.New(ctx, cfg.SweepSpec, svc, logger)
	if err != nil {
		log.Fatalf("sweep spec %q: %v", cfg.SweepSpec, err)
	}
	sw.Start()
	defer sw.Stop()

	e := server.NewEcho(logger, cfg.ServiceName)
	httpserver.Register(e, &httpserver.Deps{
		BillingHandler: &httpserver.BillingHTTP{Svc: svc},
		JWTSecret:      cfg.JWTAccessSecret,
		AuthClient:     authclient.NewClient(cfg.AuthHTTPURL),
	})

	server.Run(ctx, cancel, server.NewHTTPServer(cfg.Addr(), e), logger)
}
