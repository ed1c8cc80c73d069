package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	pkgdb "github.com/Skotchmaster/tradefund/pkg/db"
	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/server"

	chatcfg "github.com/Skotchmaster/tradefund/services/chat/internal/config"
	"github.com/Skotchmaster/tradefund/services/chat/internal/httpserver"
	"github.com/Skotchmaster/tradefund/services/chat/internal/models"
	"github.com/Skotchmaster/tradefund/services/chat/internal/realtime"
	"github.com/Skotchmaster/tradefund/services/chat/internal/repo"
	"github.com/Skotchmaster/tradefund/services/chat/internal/service"
)

func main() {
	if err := godotenv.Load("services/chat/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := chatcfg.Load()

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
	defer pkgdb.Close(db)

	ctx, cancel := context.WithCancel(logging.IntoContext(context.Background(), logger))
	defer cancel()

	var hub *realtime.Hub
	if cfg.RealtimeEnabled {
		var broker realtime.Broker = realtime.NewMemoryBroker()
		if cfg.RedisFanout {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
			if err := rdb.Ping(initCtx).Err(); err != nil {
				log.Fatalf("redis ping: %v", err)
			}
			defer rdb.Close()
			broker = realtime.NewRedisBroker(rdb)
			logger.Info("chat fan-out over redis", "addr", cfg.RedisAddr)
		}
		hub = realtime.NewHub(ctx, broker)
		defer hub.Close()
	} else {
		logger.Warn("realtime chat disabled, messages are REST only")
	}
	cancelInit()

	svc := &service.ChatService{
		Repo:    &repo.GormRepo{DB: db},
		Hub:     hub,
		Effects: events.NewBestEffort(events.NopPublisher{}, cfg.ServiceName),
	}

	if cfg.EventsEnabled {
		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, events.TopicTrading)
		go func() {
			if err := consumer.Run(ctx, svc.Router()); err != nil {
				logger.Error("consumer_stopped", "error", err)
				cancel()
			}
		}()
	}

	var sockets *httpserver.SocketHTTP
	if hub != nil {
		sockets = httpserver.NewSocketHTTP(hub, svc, cfg.AllowedOrigins)
	}

	e := server.NewEcho(logger, cfg.ServiceName)
	httpserver.Register(e, &httpserver.Deps{
		ChatHandler:   &httpserver.ChatHTTP{Svc: svc},
		SocketHandler: sockets,
		JWTSecret:     cfg.JWTAccessSecret,
		AuthClient:    authclient.NewClient(cfg.AuthHTTPURL),
	})

	server.Run(ctx, cancel, server.NewHTTPServer(cfg.Addr(), e), logger)
}
