package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	pkgdb "github.com/Skotchmaster/tradefund/pkg/db"
	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/tradefund/pkg/server"

	authcfg "github.com/Skotchmaster/tradefund/services/auth/internal/config"
	"github.com/Skotchmaster/tradefund/services/auth/internal/httpserver"
	"github.com/Skotchmaster/tradefund/services/auth/internal/models"
	"github.com/Skotchmaster/tradefund/services/auth/internal/repo"
	"github.com/Skotchmaster/tradefund/services/auth/internal/service"
)

func main() {
	if err := godotenv.Load("services/auth/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := authcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := pkgdb.Migrate(initCtx, db, &models.User{}, &models.RefreshToken{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	cancelInit()
	defer pkgdb.Close(db)

	pub, closePub := events.Open(cfg.EventsEnabled, cfg.KafkaBrokers)
	defer closePub()

	svc := &service.AuthService{
		Repo:          &repo.GormRepo{DB: db},
		JWTSecret:     cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		Events:        events.NewBestEffort(pub, cfg.ServiceName),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.EnsureSuperAdmin(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
		log.Fatalf("bootstrap super admin: %v", err)
	}

	e := server.NewEcho(logger, cfg.ServiceName)
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: svc},
		JWTSecret:    cfg.JWTAccessSecret,
		LoginLimiter: ratelimit.New(cfg.LoginRatePerSecond, cfg.LoginBurst),
	})

	server.Run(ctx, cancel, server.NewHTTPServer(cfg.Addr(), e), logger)
}
