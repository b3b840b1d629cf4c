// Package sources maps yaml source configs onto runnable crawlers.
package sources

import (
	"fmt"
	"time"

	"github.com/emlakradar/api/internal/business/crawler"
	"github.com/emlakradar/api/internal/business/crawler/arenda"
	"github.com/emlakradar/api/internal/business/crawler/bina"
	"github.com/emlakradar/api/internal/business/crawler/emlak"
	"github.com/emlakradar/api/internal/business/crawler/ev10"
	"github.com/emlakradar/api/internal/business/crawler/ipoteka"
	"github.com/emlakradar/api/internal/business/crawler/lalafo"
	"github.com/emlakradar/api/internal/business/crawler/tap"
	"github.com/emlakradar/api/internal/business/crawler/unvan"
	"github.com/emlakradar/api/internal/business/crawler/vipemlak"
	"github.com/emlakradar/api/internal/business/crawler/yeniemlak"
	"github.com/emlakradar/api/pkg/model"
)

const defaultPageDelay = time.Second

// Registry owns the runners built from configuration and any long-lived
// resources behind them, currently the headless browser session.
type Registry struct {
	runners []crawler.SourceRunner
	closers []func()
}

// Build constructs a runner per enabled source. workers bounds detail-page
// concurrency within each source.
func Build(cfgs []model.SourceConfig, workers int) (*Registry, error) {
	reg := &Registry{}
	httpFetcher := crawler.NewHTTPFetcher()

	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}

		src, err := newSource(cfg)
		if err != nil {
			reg.Close()
			return nil, err
		}

		fetcher := crawler.HTMLFetcher(httpFetcher)
		srcWorkers := workers
		if cfg.RequiresBrowser {
			browser, err := bina.NewBrowserClient()
			if err != nil {
				reg.Close()
				return nil, fmt.Errorf("%s: start browser session: %w", cfg.Name, err)
			}
			reg.closers = append(reg.closers, browser.Close)
			fetcher = browser
			// The browser serializes navigation on one tab; extra
			// workers would only queue on its lock.
			srcWorkers = 1
		}

		reg.runners = append(reg.runners, crawler.SourceRunner{
			Source:  src,
			Fetcher: fetcher,
			Options: crawler.ScrapeOptions{
				Pages:     cfg.Pages,
				Workers:   srcWorkers,
				PageDelay: defaultPageDelay,
			},
		})
	}

	if len(reg.runners) == 0 {
		return nil, fmt.Errorf("no sources enabled")
	}
	return reg, nil
}

func newSource(cfg model.SourceConfig) (crawler.Source, error) {
	switch cfg.Name {
	case arenda.SourceName:
		return arenda.New(cfg.BaseURL), nil
	case bina.SourceName:
		return bina.New(cfg.BaseURL, bina.NewPhoneClient(cfg.BaseURL)), nil
	case emlak.SourceName:
		return emlak.New(cfg.BaseURL), nil
	case ev10.SourceName:
		return ev10.New(cfg.BaseURL), nil
	case ipoteka.SourceName:
		return ipoteka.New(cfg.BaseURL), nil
	case lalafo.SourceName:
		return lalafo.New(cfg.BaseURL), nil
	case tap.SourceName:
		return tap.New(cfg.BaseURL, tap.NewPhoneClient(cfg.BaseURL)), nil
	case unvan.SourceName:
		return unvan.New(cfg.BaseURL), nil
	case vipemlak.SourceName:
		return vipemlak.New(cfg.BaseURL, vipemlak.NewPhoneClient(cfg.BaseURL)), nil
	case yeniemlak.SourceName:
		return yeniemlak.New(cfg.BaseURL, cfg.Segment), nil
	default:
		return nil, fmt.Errorf("unknown source %q in config", cfg.Name)
	}
}

// Runners returns the built source runners.
func (r *Registry) Runners() []crawler.SourceRunner { return r.runners }

// Close releases browser sessions and other held resources.
func (r *Registry) Close() {
	for _, c := range r.closers {
		c()
	}
	r.closers = nil
}
