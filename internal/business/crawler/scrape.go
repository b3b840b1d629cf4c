package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emlakradar/api/pkg/logger"
	"github.com/emlakradar/api/pkg/model"
)

const maxErrorSamples = 10

// ScrapeOptions tunes one source scrape.
type ScrapeOptions struct {
	Pages     int
	Workers   int
	PageDelay time.Duration
}

// ScrapeSource runs the pipeline for one site: fetch result pages, parse
// cards, enrich each card from its detail page with bounded concurrency,
// normalize and upsert. Failures are isolated per listing.
func ScrapeSource(
	ctx context.Context,
	src Source,
	fetcher HTMLFetcher,
	upserter *Upserter,
	opts ScrapeOptions,
	log *logger.Logger,
) model.RunStats {
	stats := model.RunStats{Source: src.Name(), FieldChanges: make(map[string]int)}
	var mu sync.Mutex

	recordError := func(url string, err error) {
		mu.Lock()
		defer mu.Unlock()
		stats.Failed++
		if len(stats.ErrorSample) < maxErrorSamples {
			stats.ErrorSample = append(stats.ErrorSample, model.ErrorSample{URL: url, Reason: err.Error()})
		}
	}

	pages := opts.Pages
	if pages <= 0 {
		pages = 1
	}
	orch := NewOrchestrator(opts.Workers)

	for page := 1; page <= pages; page++ {
		select {
		case <-ctx.Done():
			return stats
		default:
		}

		pageURL := src.PageURL(page)
		body, err := fetcher.Fetch(ctx, pageURL)
		if err != nil {
			log.Warnf("%s: fetch page %d: %v", src.Name(), page, err)
			recordError(pageURL, err)
			continue
		}
		raws, err := src.ParsePage(body)
		body.Close()
		if err != nil {
			log.Warnf("%s: parse page %d: %v", src.Name(), page, err)
			recordError(pageURL, err)
			continue
		}
		if len(raws) == 0 {
			log.Debugf("%s: page %d empty, stopping pagination", src.Name(), page)
			break
		}

		mu.Lock()
		stats.Found += len(raws)
		mu.Unlock()

		orch.Run(ctx, raws, func(ctx context.Context, raw RawListing) {
			if err := src.FetchDetail(ctx, fetcher, &raw); err != nil {
				// Card data is still worth keeping; note the miss.
				log.Debugf("%s: detail %s: %v", src.Name(), raw.SourceURL, err)
				mu.Lock()
				if len(stats.ErrorSample) < maxErrorSamples {
					stats.ErrorSample = append(stats.ErrorSample, model.ErrorSample{
						URL:    raw.SourceURL,
						Reason: fmt.Sprintf("detail: %v", err),
					})
				}
				mu.Unlock()
			}

			listing, err := Normalize(raw, time.Now().UTC())
			if err != nil {
				recordError(raw.SourceURL, err)
				return
			}

			outcome, changedFields, err := upserter.Apply(ctx, listing)
			if err != nil {
				log.Warnf("%s: upsert %s: %v", src.Name(), listing.ListingID, err)
				recordError(raw.SourceURL, err)
				return
			}

			mu.Lock()
			switch outcome {
			case OutcomeNew:
				stats.New++
			case OutcomeUpdated:
				stats.Updated++
				for _, f := range changedFields {
					stats.FieldChanges[f]++
				}
			case OutcomeUnchanged:
				stats.Unchanged++
			}
			mu.Unlock()
		})

		if opts.PageDelay > 0 && page < pages {
			select {
			case <-time.After(opts.PageDelay):
			case <-ctx.Done():
				return stats
			}
		}
	}

	log.Infof("%s: found=%d new=%d updated=%d unchanged=%d failed=%d",
		src.Name(), stats.Found, stats.New, stats.Updated, stats.Unchanged, stats.Failed)
	return stats
}
