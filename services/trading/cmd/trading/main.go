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

	tradingcfg "github.com/Skotchmaster/tradefund/services/trading/internal/config"
	"github.com/Skotchmaster/tradefund/services/trading/internal/httpserver"
	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/repo"
	"github.com/Skotchmaster/tradefund/services/trading/internal/search"
	"github.com/Skotchmaster/tradefund/services/trading/internal/service"
)

func main() {
	if err := godotenv.Load("services/trading/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := tradingcfg.Load()

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

	var index search.Indexer
	if cfg.SearchEnabled {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = &search.ESIndexer{ES: es, IndexName: cfg.ESIndex}
		logger.Info("search enabled", "es_url", cfg.ESURL, "index", cfg.ESIndex)
	}

	r := &repo.GormRepo{DB: db}
	orders := &service.OrderService{Repo: r, Events: fx}
	shipments := &service.ShipmentService{Repo: r, Events: fx}

	e := server.NewEcho(logger, cfg.ServiceName)
	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Index: index, Events: fx}},
		OrderHandler:    &httpserver.OrderHTTP{Svc: orders, Shipments: shipments},
		ShipmentHandler: &httpserver.ShipmentHTTP{Svc: shipments},
		SellerHandler:   &httpserver.SellerHTTP{Svc: &service.SellerService{Repo: r}},
		CartHandler:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Orders: orders}},
		JWTSecret:       cfg.JWTAccessSecret,
		AuthClient:      authclient.NewClient(cfg.AuthHTTPURL),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server.Run(ctx, cancel, server.NewHTTPServer(cfg.Addr(), e), logger)
}
