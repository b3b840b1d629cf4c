package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emlakradar/api/pkg/logger"
	"github.com/emlakradar/api/pkg/model"
)

// RunLifecycleStore persists crawl run metadata.
type RunLifecycleStore interface {
	CreateRun(ctx context.Context, run model.CrawlRun) error
	UpdateRun(ctx context.Context, run model.CrawlRun) error
}

// SourceRunner couples a source with its fetcher and tuning. Sources behind
// anti-bot walls get a browser-backed fetcher, the rest share one HTTP
// fetcher.
type SourceRunner struct {
	Source  Source
	Fetcher HTMLFetcher
	Options ScrapeOptions
}

// Service orchestrates crawl runs across all configured sources.
type Service struct {
	runners  []SourceRunner
	upserter *Upserter
	runs     RunLifecycleStore
	log      *logger.Logger

	mu      sync.Mutex
	running bool
}

func NewService(runners []SourceRunner, upserter *Upserter, runs RunLifecycleStore, log *logger.Logger) *Service {
	return &Service{runners: runners, upserter: upserter, runs: runs, log: log}
}

// SourceNames lists the configured sources, once per name.
func (s *Service) SourceNames() []string {
	return runnerNames(s.runners)
}

// Start kicks off a crawl run asynchronously and returns its run id. Only
// one run may be active at a time.
func (s *Service) Start(ctx context.Context, sources []string) (string, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return "", fmt.Errorf("a crawl run is already in progress")
	}
	s.running = true
	s.mu.Unlock()

	runners, err := s.selectRunners(sources)
	if err != nil {
		s.setIdle()
		return "", err
	}

	runID := generateRunID()
	run := newRun(runID, runners)
	if err := s.runs.CreateRun(ctx, run); err != nil {
		s.setIdle()
		return "", fmt.Errorf("create run: %w", err)
	}

	go func() {
		defer s.setIdle()
		s.execute(context.Background(), run, runners)
	}()
	return runID, nil
}

// Execute runs a crawl synchronously and returns the finished run record.
// Used by the one-shot CLI.
func (s *Service) Execute(ctx context.Context, sources []string) (model.CrawlRun, error) {
	runners, err := s.selectRunners(sources)
	if err != nil {
		return model.CrawlRun{}, err
	}
	run := newRun(generateRunID(), runners)
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return model.CrawlRun{}, fmt.Errorf("create run: %w", err)
	}
	return s.execute(ctx, run, runners), nil
}

func (s *Service) execute(ctx context.Context, run model.CrawlRun, runners []SourceRunner) model.CrawlRun {
	s.log.Infof("run %s: crawling %d sources", run.RunID, len(runners))

	results := make([]model.RunStats, len(runners))
	var wg sync.WaitGroup
	for i, runner := range runners {
		wg.Add(1)
		go func(i int, runner SourceRunner) {
			defer wg.Done()
			// One misbehaving parser must not take the whole run down.
			defer func() {
				if r := recover(); r != nil {
					s.log.Errorf("%s: panic: %v", runner.Source.Name(), r)
					results[i] = model.RunStats{
						Source: runner.Source.Name(),
						Failed: 1,
						ErrorSample: []model.ErrorSample{
							{Reason: fmt.Sprintf("panic: %v", r)},
						},
					}
				}
			}()
			results[i] = ScrapeSource(ctx, runner.Source, runner.Fetcher, s.upserter, runner.Options, s.log)
		}(i, runner)
	}
	wg.Wait()

	// Segmented sites run as several runners sharing one name; their
	// counters are folded into a single per-source entry.
	run.BySource = make(map[string]model.RunStats, len(results))
	for _, r := range results {
		agg := run.BySource[r.Source]
		agg.Source = r.Source
		agg.Merge(r)
		run.BySource[r.Source] = agg
		run.Stats.Merge(r)
	}
	run.Status = "completed"
	if run.Stats.Found == 0 && run.Stats.Failed > 0 {
		run.Status = "failed"
	}
	run.FinishedAt = time.Now().UTC()

	if err := s.runs.UpdateRun(ctx, run); err != nil {
		s.log.Errorf("run %s: persist final state: %v", run.RunID, err)
	}
	s.log.Infof("run %s: %s found=%d new=%d updated=%d unchanged=%d failed=%d",
		run.RunID, run.Status, run.Stats.Found, run.Stats.New, run.Stats.Updated,
		run.Stats.Unchanged, run.Stats.Failed)
	return run
}

func (s *Service) selectRunners(sources []string) ([]SourceRunner, error) {
	if len(sources) == 0 {
		if len(s.runners) == 0 {
			return nil, fmt.Errorf("no sources configured")
		}
		return s.runners, nil
	}
	wanted := make(map[string]bool, len(sources))
	for _, name := range sources {
		wanted[name] = true
	}
	var selected []SourceRunner
	matched := make(map[string]bool, len(wanted))
	for _, r := range s.runners {
		if wanted[r.Source.Name()] {
			selected = append(selected, r)
			matched[r.Source.Name()] = true
		}
	}
	for name := range wanted {
		if !matched[name] {
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	return selected, nil
}

func (s *Service) setIdle() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func runnerNames(runners []SourceRunner) []string {
	names := make([]string, 0, len(runners))
	seen := make(map[string]bool, len(runners))
	for _, r := range runners {
		if seen[r.Source.Name()] {
			continue
		}
		seen[r.Source.Name()] = true
		names = append(names, r.Source.Name())
	}
	return names
}

func newRun(runID string, runners []SourceRunner) model.CrawlRun {
	names := runnerNames(runners)
	return model.CrawlRun{
		RunID:     runID,
		Sources:   names,
		Status:    "running",
		StartedAt: time.Now().UTC(),
	}
}

func generateRunID() string {
	return fmt.Sprintf("RUN_%d", time.Now().UnixNano())
}
