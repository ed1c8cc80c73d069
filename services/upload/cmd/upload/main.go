package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/tradefund/pkg/server"

	uploadcfg "github.com/Skotchmaster/tradefund/services/upload/internal/config"
	"github.com/Skotchmaster/tradefund/services/upload/internal/httpserver"
	"github.com/Skotchmaster/tradefund/services/upload/internal/service"
	"github.com/Skotchmaster/tradefund/services/upload/internal/storage"
)

func main() {
	if err := godotenv.Load("services/upload/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := uploadcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	disk := &storage.Disk{Root: cfg.Root}
	if err := disk.Ensure(service.CategoryNames()...); err != nil {
		log.Fatalf("upload root: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := ratelimit.New(cfg.RatePerSec, cfg.RateBurst)
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
	httpserver.Register(e, &httpserver.Deps{
		UploadHandler: &httpserver.UploadHTTP{Svc: &service.UploadService{Store: disk}},
		Root:          cfg.Root,
		Limiter:       limiter,
		JWTSecret:     cfg.JWTAccessSecret,
		AuthClient:    authclient.NewClient(cfg.AuthHTTPURL),
	})

	server.Run(ctx, cancel, server.NewHTTPServer(cfg.Addr(), e), logger)
}
