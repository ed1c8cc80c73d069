package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	pkgdb "github.com/Skotchmaster/tradefund/pkg/db"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/server"

	dashcfg "github.com/Skotchmaster/tradefund/services/dashboard/internal/config"
	"github.com/Skotchmaster/tradefund/services/dashboard/internal/httpserver"
	"github.com/Skotchmaster/tradefund/services/dashboard/internal/repo"
	"github.com/Skotchmaster/tradefund/services/dashboard/internal/service"
)

// The dashboard reads tables migrated by the other services and never migrates itself.
func main() {
	if err := godotenv.Load("services/dashboard/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := dashcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	cancelInit()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer pkgdb.Close(db)

	svc := &service.DashboardService{Repo: &repo.GormRepo{DB: db}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := server.NewEcho(logger, cfg.ServiceName)
	httpserver.Register(e, &httpserver.Deps{
		DashboardHandler: &httpserver.DashboardHTTP{Svc: svc},
		JWTSecret:        cfg.JWTAccessSecret,
		AuthClient:       authclient.NewClient(cfg.AuthHTTPURL),
	})

	server.Run(ctx, cancel, server.NewHTTPServer(cfg.Addr(), e), logger)
}
