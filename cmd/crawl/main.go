// Command crawl runs one synchronous crawl across the configured sources
// and prints the resulting counters. Meant for cron and manual runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/emlakradar/api/internal/business/crawler"
	"github.com/emlakradar/api/internal/business/crawler/sources"
	"github.com/emlakradar/api/internal/platform/config"
	pgclient "github.com/emlakradar/api/internal/platform/postgres"
	"github.com/emlakradar/api/internal/platform/sqlitedb"
	"github.com/emlakradar/api/internal/repository"
	"github.com/emlakradar/api/pkg/logger"
)

func main() {
	sourceFlag := flag.String("sources", "", "comma-separated source names (default: all enabled)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	var listings repository.ListingStore
	switch cfg.DBDriver {
	case "postgres":
		pool, err := pgclient.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres init: %v", err)
		}
		defer pool.Close()
		store, err := repository.NewPostgresStore(ctx, pool)
		if err != nil {
			log.Fatalf("postgres migrate: %v", err)
		}
		listings = store
	case "sqlite":
		db, err := sqlitedb.New(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("sqlite init: %v", err)
		}
		defer db.Close()
		store, err := repository.NewSQLiteStore(ctx, db)
		if err != nil {
			log.Fatalf("sqlite migrate: %v", err)
		}
		listings = store
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
	svc := crawler.NewService(registry.Runners(), upserter, repository.NewMemoryRunStore(), logger.New("crawl", cfg.Debug))

	var wanted []string
	if *sourceFlag != "" {
		for _, name := range strings.Split(*sourceFlag, ",") {
			if name = strings.TrimSpace(name); name != "" {
				wanted = append(wanted, name)
			}
		}
	}

	run, err := svc.Execute(ctx, wanted)
	if err != nil {
		log.Fatalf("crawl: %v", err)
	}

	fmt.Printf("run %s %s in %s\n", run.RunID, run.Status, run.FinishedAt.Sub(run.StartedAt).Round(1e9))
	for _, name := range run.Sources {
		s := run.BySource[name]
		fmt.Printf("  %-14s found=%-4d new=%-4d updated=%-4d unchanged=%-4d failed=%d\n",
			name, s.Found, s.New, s.Updated, s.Unchanged, s.Failed)
	}
	fmt.Printf("total: found=%d new=%d updated=%d unchanged=%d failed=%d\n",
		run.Stats.Found, run.Stats.New, run.Stats.Updated, run.Stats.Unchanged, run.Stats.Failed)
	if run.Status == "failed" {
		os.Exit(1)
	}
}
