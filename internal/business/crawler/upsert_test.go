package crawler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/emlakradar/api/pkg/model"
	"github.com/emlakradar/api/pkg/util"
)

// memStore is a minimal in-memory ListingStore for pipeline tests.
type memStore struct {
	mu       sync.Mutex
	listings map[model.ListingKey]model.Listing
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{listings: make(map[model.ListingKey]model.Listing)}
}

func (s *memStore) GetByKey(_ context.Context, key model.ListingKey) (model.Listing, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[key]
	return l, ok, nil
}

func (s *memStore) Insert(_ context.Context, l model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	l.ID = s.nextID
	s.listings[l.Key()] = l
	return nil
}

func (s *memStore) Update(_ context.Context, l model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.Key()] = l
	return nil
}

func (s *memStore) Touch(_ context.Context, key model.ListingKey, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listings[key]
	l.UpdatedAt = at
	s.listings[key] = l
	return nil
}

func testListing(price float64, url, district string) model.Listing {
	p := price
	l := model.Listing{
		ListingID:     "100",
		SourceWebsite: "arenda.az",
		SourceURL:     url,
		District:      district,
		Price:         &p,
	}
	l.Checksum = util.ListingChecksum(l.Price, l.SourceURL, l.District)
	return l
}

func TestUpserterLifecycle(t *testing.T) {
	store := newMemStore()
	up := NewUpserter(store)
	ctx := context.Background()

	l := testListing(85000, "https://arenda.az/elan/100", "Yasamal")

	outcome, _, err := up.Apply(ctx, l)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if outcome != OutcomeNew {
		t.Fatalf("first apply = %s, want new", outcome)
	}

	stored, _, _ := store.GetByKey(ctx, l.Key())
	created := stored.CreatedAt
	if created.IsZero() || !stored.CreatedAt.Equal(stored.UpdatedAt) {
		t.Errorf("timestamps after insert: created=%v updated=%v", stored.CreatedAt, stored.UpdatedAt)
	}

	// Same checksum: unchanged, but updated_at moves.
	outcome, changed, err := up.Apply(ctx, l)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if outcome != OutcomeUnchanged || changed != nil {
		t.Fatalf("second apply = %s %v, want unchanged", outcome, changed)
	}

	// Price change: updated, created_at preserved, field diff reported.
	l2 := testListing(90000, "https://arenda.az/elan/100", "Yasamal")
	outcome, changed, err = up.Apply(ctx, l2)
	if err != nil {
		t.Fatalf("third apply: %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Fatalf("third apply = %s, want updated", outcome)
	}
	if len(changed) != 1 || changed[0] != "price" {
		t.Errorf("changed fields = %v, want [price]", changed)
	}

	stored, _, _ = store.GetByKey(ctx, l.Key())
	if !stored.CreatedAt.Equal(created) {
		t.Errorf("created_at lost on update: %v != %v", stored.CreatedAt, created)
	}
	if stored.Price == nil || *stored.Price != 90000 {
		t.Errorf("price after update = %v", deref(stored.Price))
	}
}

func TestUpserterDistrictChange(t *testing.T) {
	store := newMemStore()
	up := NewUpserter(store)
	ctx := context.Background()

	if _, _, err := up.Apply(ctx, testListing(100, "u", "Yasamal")); err != nil {
		t.Fatal(err)
	}
	_, changed, err := up.Apply(ctx, testListing(100, "u", "Nizami"))
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 1 || changed[0] != "district" {
		t.Errorf("changed fields = %v, want [district]", changed)
	}
}

func TestUpserterConcurrentSameKey(t *testing.T) {
	store := newMemStore()
	up := NewUpserter(store)
	ctx := context.Background()

	l := testListing(100, "u", "d")
	var wg sync.WaitGroup
	outcomes := make([]Outcome, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, _, err := up.Apply(ctx, l)
			if err != nil {
				t.Errorf("apply: %v", err)
			}
			outcomes[i] = o
		}(i)
	}
	wg.Wait()

	news := 0
	for _, o := range outcomes {
		if o == OutcomeNew {
			news++
		}
	}
	if news != 1 {
		t.Errorf("concurrent applies produced %d inserts, want exactly 1", news)
	}
	if len(store.listings) != 1 {
		t.Errorf("store holds %d rows, want 1", len(store.listings))
	}
}
