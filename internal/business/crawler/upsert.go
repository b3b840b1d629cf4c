package crawler

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/emlakradar/api/pkg/model"
)

// ListingStore abstracts the persistence layer for listings.
type ListingStore interface {
	GetByKey(ctx context.Context, key model.ListingKey) (model.Listing, bool, error)
	Insert(ctx context.Context, l model.Listing) error
	Update(ctx context.Context, l model.Listing) error
	// Touch refreshes updated_at for an unchanged listing so stale-listing
	// queries keep working.
	Touch(ctx context.Context, key model.ListingKey, at time.Time) error
}

// Outcome classifies the result of one upsert.
type Outcome string

const (
	OutcomeNew       Outcome = "new"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

const upsertStripes = 64

// Upserter applies normalized listings to the store with checksum-based
// change detection. Applies for the same natural key are serialized through
// striped locks so concurrent workers cannot race an insert against an
// update.
type Upserter struct {
	store ListingStore
	locks [upsertStripes]sync.Mutex
	now   func() time.Time
}

func NewUpserter(store ListingStore) *Upserter {
	return &Upserter{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Apply inserts, updates or skips the listing. For updates it reports which
// of the tracked fields (price, source_url, district) changed.
func (u *Upserter) Apply(ctx context.Context, l model.Listing) (Outcome, []string, error) {
	lock := &u.locks[stripeFor(l.Key())]
	lock.Lock()
	defer lock.Unlock()

	prev, found, err := u.store.GetByKey(ctx, l.Key())
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("get %s/%s: %w", l.SourceWebsite, l.ListingID, err)
	}

	now := u.now()
	if !found {
		l.CreatedAt = now
		l.UpdatedAt = now
		if err := u.store.Insert(ctx, l); err != nil {
			return OutcomeFailed, nil, fmt.Errorf("insert %s/%s: %w", l.SourceWebsite, l.ListingID, err)
		}
		return OutcomeNew, nil, nil
	}

	if prev.Checksum == l.Checksum {
		if err := u.store.Touch(ctx, l.Key(), now); err != nil {
			return OutcomeFailed, nil, fmt.Errorf("touch %s/%s: %w", l.SourceWebsite, l.ListingID, err)
		}
		return OutcomeUnchanged, nil, nil
	}

	changed := diffTrackedFields(prev, l)
	l.ID = prev.ID
	l.CreatedAt = prev.CreatedAt
	l.UpdatedAt = now
	if err := u.store.Update(ctx, l); err != nil {
		return OutcomeFailed, changed, fmt.Errorf("update %s/%s: %w", l.SourceWebsite, l.ListingID, err)
	}
	return OutcomeUpdated, changed, nil
}

// diffTrackedFields names the checksum components that differ between two
// versions of a listing.
func diffTrackedFields(prev, next model.Listing) []string {
	var changed []string
	if !equalPrice(prev.Price, next.Price) {
		changed = append(changed, "price")
	}
	if prev.SourceURL != next.SourceURL {
		changed = append(changed, "source_url")
	}
	if prev.District != next.District {
		changed = append(changed, "district")
	}
	return changed
}

func equalPrice(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stripeFor(key model.ListingKey) int {
	h := fnv.New32a()
	h.Write([]byte(key.SourceWebsite))
	h.Write([]byte{'|'})
	h.Write([]byte(key.ListingID))
	return int(h.Sum32() % upsertStripes)
}
