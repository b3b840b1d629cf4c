package model

import "time"

// Listing type values.
const (
	ListingTypeSale    = "sale"
	ListingTypeMonthly = "monthly"
	ListingTypeDaily   = "daily"
)

// Contact type values.
const (
	ContactOwner = "owner"
	ContactAgent = "agent"
)

// Listing is the normalized real-estate record stored in the `listings` table.
// A row is identified by the (ListingID, SourceWebsite) pair; ListingID alone
// is only unique within one source site.
type Listing struct {
	ID            int64      `json:"id,omitempty"`
	ListingID     string     `json:"listing_id"`
	SourceWebsite string     `json:"source_website"`
	Title         string     `json:"title,omitempty"`
	SourceURL     string     `json:"source_url,omitempty"`
	ListingType   string     `json:"listing_type,omitempty"` // sale | monthly | daily
	PropertyType  string     `json:"property_type,omitempty"`
	Price         *float64   `json:"price,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	Rooms         *int       `json:"rooms,omitempty"`
	Area          *float64   `json:"area,omitempty"` // square meters
	Floor         *int       `json:"floor,omitempty"`
	TotalFloors   *int       `json:"total_floors,omitempty"`
	District      string     `json:"district,omitempty"`
	MetroStation  string     `json:"metro_station,omitempty"`
	Address       string     `json:"address,omitempty"`
	Location      string     `json:"location,omitempty"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	ContactType   string     `json:"contact_type,omitempty"` // owner | agent
	ContactPhone  string     `json:"contact_phone,omitempty"`
	ViewsCount    *int       `json:"views_count,omitempty"`
	HasRepair     bool       `json:"has_repair,omitempty"`
	Amenities     []string   `json:"amenities,omitempty"`
	Photos        []string   `json:"photos,omitempty"`
	Description   string     `json:"description,omitempty"`
	ListingDate   *time.Time `json:"listing_date,omitempty"`
	Checksum      string     `json:"checksum,omitempty"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at,omitempty"`
}

// Key returns the natural key of the listing.
func (l Listing) Key() ListingKey {
	return ListingKey{ListingID: l.ListingID, SourceWebsite: l.SourceWebsite}
}

// ListingKey identifies a listing across crawl runs.
type ListingKey struct {
	ListingID     string
	SourceWebsite string
}

// RunStats stores aggregated counters for one source within a crawl run.
type RunStats struct {
	Source       string         `json:"source,omitempty"`
	Found        int            `json:"found,omitempty"`
	New          int            `json:"new,omitempty"`
	Updated      int            `json:"updated,omitempty"`
	Unchanged    int            `json:"unchanged,omitempty"`
	Failed       int            `json:"failed,omitempty"`
	FieldChanges map[string]int `json:"fieldChanges,omitempty"`
	ErrorSample  []ErrorSample  `json:"errorsSample,omitempty"`
}

// Merge adds the counters of other into s.
func (s *RunStats) Merge(other RunStats) {
	s.Found += other.Found
	s.New += other.New
	s.Updated += other.Updated
	s.Unchanged += other.Unchanged
	s.Failed += other.Failed
	for field, n := range other.FieldChanges {
		if s.FieldChanges == nil {
			s.FieldChanges = make(map[string]int)
		}
		s.FieldChanges[field] += n
	}
	s.ErrorSample = append(s.ErrorSample, other.ErrorSample...)
}

// ErrorSample captures a subset of errors for observability without heavy logging.
type ErrorSample struct {
	URL    string `json:"url,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// CrawlRun tracks the lifecycle of a crawler execution across sources.
type CrawlRun struct {
	RunID      string              `json:"runId,omitempty"`
	Sources    []string            `json:"sources,omitempty"`
	Status     string              `json:"status,omitempty"` // running | completed | failed
	Stats      RunStats            `json:"stats,omitempty"`
	BySource   map[string]RunStats `json:"bySource,omitempty"`
	StartedAt  time.Time           `json:"startedAt,omitempty"`
	FinishedAt time.Time           `json:"finishedAt,omitempty"`
}

// SystemStats is a pre-aggregated dashboard snapshot.
type SystemStats struct {
	LastUpdated    time.Time          `json:"lastUpdated,omitempty"`
	TotalListings  int                `json:"totalListings,omitempty"`
	BySource       map[string]int     `json:"bySource,omitempty"`
	ByListingType  map[string]int     `json:"byListingType,omitempty"`
	AvgPriceByType map[string]float64 `json:"avgPriceByType,omitempty"`
}

// SourceConfig describes one site in configs/sources.yaml.
type SourceConfig struct {
	Name            string `yaml:"name"`
	BaseURL         string `yaml:"base_url"`
	Segment         string `yaml:"segment"`
	Pages           int    `yaml:"pages"`
	IntervalMinutes int    `yaml:"interval_minutes"`
	Enabled         bool   `yaml:"enabled"`
	RequiresBrowser bool   `yaml:"requires_browser"`
}
