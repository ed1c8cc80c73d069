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

	investcfg "github.com/Skotchmaster/tradefund/services/investment/internal/config"
	"github.com/Skotchmaster/tradefund/services/investment/internal/httpserver"
	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
	"github.com/Skotchmaster/tradefund/services/investment/internal/repo"
	"github.com/Skotchmaster/tradefund/services/investment/internal/service"
)

func main() {
	if err := godotenv.Load("services/investment/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := investcfg.Load()

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
	cancelInit()
	defer pkgdb.Close(db)

	pub, closePub := events.Open(cfg.EventsEnabled, cfg.KafkaBrokers)
	defer closePub()
	fx := events.NewBestEffort(pub, cfg.ServiceName)

	r := &repo.GormRepo{DB: db}
	e := server.NewEcho(logger, cfg.ServiceName)
	httpserver.Register(e, &httpserver.Deps{
		ProjectHandler:    &httpserver.ProjectHTTP{Svc: &service.ProjectService{Repo: r, Events: fx}},
		InvestmentHandler: &httpserver.InvestmentHTTP{Svc: &service.InvestmentService{Repo: r, Events: fx}},
		DividendHandler:   &httpserver.DividendHTTP{Svc: &service.DividendService{Repo: r, Events: fx}},
		ReportHandler:     &httpserver.ReportHTTP{Svc: &service.ReportService{Repo: r, Events: fx}},
		JWTSecret:         cfg.JWTAccessSecret,
		AuthClient:        authclient.NewClient(cfg.AuthHTTPURL),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server.Run(ctx, cancel, server.NewHTTPServer(cfg.Addr(), e), logger)
}
