package sources

import (
	"testing"

	"github.com/emlakradar/api/pkg/model"
)

func TestBuildCapsBrowserWorkers(t *testing.T) {
	// The browser fetcher serializes on one tab, so its runner must not
	// fan detail fetches out across workers.
	reg, err := Build([]model.SourceConfig{
		{Name: "bina.az", BaseURL: "https://bina.az", Pages: 1, RequiresBrowser: true, Enabled: true},
		{Name: "arenda.az", BaseURL: "https://arenda.az", Pages: 1, Enabled: true},
	}, 5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer reg.Close()

	runners := reg.Runners()
	if len(runners) != 2 {
		t.Fatalf("got %d runners, want 2", len(runners))
	}
	for _, r := range runners {
		switch r.Source.Name() {
		case "bina.az":
			if r.Options.Workers != 1 {
				t.Errorf("browser-backed runner workers = %d, want 1", r.Options.Workers)
			}
		case "arenda.az":
			if r.Options.Workers != 5 {
				t.Errorf("http runner workers = %d, want 5", r.Options.Workers)
			}
		}
	}
}

func TestBuildSkipsDisabledSources(t *testing.T) {
	reg, err := Build([]model.SourceConfig{
		{Name: "arenda.az", BaseURL: "https://arenda.az", Pages: 1, Enabled: true},
		{Name: "unvan.az", BaseURL: "https://unvan.az", Pages: 1, Enabled: false},
	}, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer reg.Close()
	if len(reg.Runners()) != 1 {
		t.Fatalf("got %d runners, want 1", len(reg.Runners()))
	}
}

func TestBuildRejectsUnknownSource(t *testing.T) {
	if _, err := Build([]model.SourceConfig{
		{Name: "nope.az", BaseURL: "https://nope.az", Pages: 1, Enabled: true},
	}, 2); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestBuildSegmentedRunnersShareName(t *testing.T) {
	reg, err := Build([]model.SourceConfig{
		{Name: "yeniemlak.az", BaseURL: "https://yeniemlak.az", Segment: "1", Pages: 1, Enabled: true},
		{Name: "yeniemlak.az", BaseURL: "https://yeniemlak.az", Segment: "2", Pages: 1, Enabled: true},
		{Name: "yeniemlak.az", BaseURL: "https://yeniemlak.az", Segment: "3", Pages: 1, Enabled: true},
	}, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer reg.Close()

	runners := reg.Runners()
	if len(runners) != 3 {
		t.Fatalf("got %d runners, want 3", len(runners))
	}
	urls := make(map[string]bool, 3)
	for _, r := range runners {
		if r.Source.Name() != "yeniemlak.az" {
			t.Errorf("runner name = %q, want yeniemlak.az", r.Source.Name())
		}
		urls[r.Source.PageURL(1)] = true
	}
	if len(urls) != 3 {
		t.Errorf("segment runners share page URLs: %v", urls)
	}
}
