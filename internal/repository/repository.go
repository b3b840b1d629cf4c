// Package repository persists listings and crawl runs. Two backends are
// provided: Postgres over pgx for deployments and SQLite for local runs.
package repository

import (
	"context"
	"time"

	"github.com/emlakradar/api/pkg/model"
)

// ListingFilter narrows List queries. Zero values mean "no constraint".
type ListingFilter struct {
	Source      string
	ListingType string
	District    string
	MinPrice    *float64
	MaxPrice    *float64
	MinRooms    *int
	Limit       int
	Offset      int
}

// ListingStore is the full persistence surface for listings. The crawler
// uses the keyed subset, the HTTP layer the query side.
type ListingStore interface {
	GetByKey(ctx context.Context, key model.ListingKey) (model.Listing, bool, error)
	Insert(ctx context.Context, l model.Listing) error
	Update(ctx context.Context, l model.Listing) error
	Touch(ctx context.Context, key model.ListingKey, at time.Time) error

	List(ctx context.Context, f ListingFilter) ([]model.Listing, int, error)
	// StreamAll walks every listing ordered by id, for CSV export.
	StreamAll(ctx context.Context, fn func(model.Listing) error) error
	Stats(ctx context.Context) (model.SystemStats, error)
}

// RunStore persists crawl run lifecycle records.
type RunStore interface {
	CreateRun(ctx context.Context, run model.CrawlRun) error
	UpdateRun(ctx context.Context, run model.CrawlRun) error
	GetRun(ctx context.Context, runID string) (model.CrawlRun, bool, error)
	ListRuns(ctx context.Context, limit int) ([]model.CrawlRun, error)
}
