package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/emlakradar/api/internal/business/crawler"
	"github.com/emlakradar/api/internal/business/crawler/sources"
	"github.com/emlakradar/api/internal/platform/config"
	apirouter "github.com/emlakradar/api/internal/platform/http"
	pgclient "github.com/emlakradar/api/internal/platform/postgres"
	"github.com/emlakradar/api/internal/platform/sqlitedb"
	"github.com/emlakradar/api/internal/repository"
	"github.com/emlakradar/api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	gin.SetMode(cfg.GinMode)
	appLog := logger.New("server", cfg.Debug)

	var (
		listings repository.ListingStore
		runs     repository.RunStore
	)
	switch cfg.DBDriver {
	case "postgres":
		pool, err := pgclient.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres init: %v", err)
		}
		defer pool.Close()
		if err := pgclient.Ping(ctx, pool); err != nil {
			log.Fatalf("postgres ping: %v", err)
		}
		store, err := repository.NewPostgresStore(ctx, pool)
		if err != nil {
			log.Fatalf("postgres migrate: %v", err)
		}
		listings, runs = store, store
		appLog.Infof("connected to postgres")
	case "sqlite":
		db, err := sqlitedb.New(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("sqlite init: %v", err)
		}
		defer db.Close()
		if err := sqlitedb.Ping(ctx, db); err != nil {
			log.Fatalf("sqlite ping: %v", err)
		}
		store, err := repository.NewSQLiteStore(ctx, db)
		if err != nil {
			log.Fatalf("sqlite migrate: %v", err)
		}
		listings, runs = store, repository.NewMemoryRunStore()
		appLog.Infof("opened sqlite database %s", cfg.SQLitePath)
	}

	sourceCfgs, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("load sources: %v", err)
	}
	registry, err := sources.Build(sourceCfgs, cfg.CrawlWorkers)
	if err != nil {
		log.Fatalf("build sources: %v", err)
	}
	defer registry.Close()

	upserter := crawler.NewUpserter(listings)
	crawlService := crawler.NewService(registry.Runners(), upserter, runs, logger.New("crawler", cfg.Debug))

	router := apirouter.NewRouter(listings, runs, crawlService, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	appLog.Infof("server listening on :%s", cfg.Port)

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Errorf("server shutdown error: %v", err)
	}
	appLog.Infof("server exited")
}
