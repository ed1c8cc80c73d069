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

	notifcfg "github.com/Skotchmaster/tradefund/services/notification/internal/config"
	"github.com/Skotchmaster/tradefund/services/notification/internal/httpserver"
	"github.com/Skotchmaster/tradefund/services/notification/internal/models"
	"github.com/Skotchmaster/tradefund/services/notification/internal/repo"
	"github.com/Skotchmaster/tradefund/services/notification/internal/service"
)

func main() {
	if err := godotenv.Load("services/notification/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := notifcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := pkgdb.Migrate(initCtx, db, &models.Notification{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	cancelInit()
	defer pkgdb.Close(db)

	svc := &service.NotificationService{Repo: &repo.GormRepo{DB: db}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.EventsEnabled {
		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, events.AllTopics...)
		go func() {
			if err := consumer.Run(logging.IntoContext(ctx, logger), svc.Router()); err != nil {
				logger.Error("consumer_stopped", "error", err)
				cancel()
			}
		}()
	} else {
		logger.Warn("events disabled, notifications will only be served, not created")
	}

	e := server.NewEcho(logger, cfg.ServiceName)
	httpserver.Register(e, &httpserver.Deps{
		NotificationHandler: &httpserver.NotificationHTTP{Svc: svc},
		JWTSecret:           cfg.JWTAccessSecret,
		AuthClient:          authclient.NewClient(cfg.AuthHTTPURL),
	})

	server.Run(ctx, cancel, server.NewHTTPServer(cfg.Addr(), e), logger)
}
