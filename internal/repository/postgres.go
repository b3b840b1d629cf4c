package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emlakradar/api/pkg/model"
)

const listingColumns = `id, listing_id, source_website, title, source_url, listing_type,
	property_type, price, currency, rooms, area, floor, total_floors, district,
	metro_station, address, location, latitude, longitude, contact_type,
	contact_phone, views_count, has_repair, amenities, photos, description,
	listing_date, checksum, created_at, updated_at`

// PostgresStore implements ListingStore and RunStore on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			id             BIGSERIAL PRIMARY KEY,
			listing_id     TEXT NOT NULL,
			source_website TEXT NOT NULL,
			title          TEXT,
			source_url     TEXT,
			listing_type   TEXT,
			property_type  TEXT,
			price          DOUBLE PRECISION,
			currency       TEXT,
			rooms          INTEGER,
			area           DOUBLE PRECISION,
			floor          INTEGER,
			total_floors   INTEGER,
			district       TEXT,
			metro_station  TEXT,
			address        TEXT,
			location       TEXT,
			latitude       DOUBLE PRECISION,
			longitude      DOUBLE PRECISION,
			contact_type   TEXT,
			contact_phone  TEXT,
			views_count    INTEGER,
			has_repair     BOOLEAN NOT NULL DEFAULT FALSE,
			amenities      TEXT[],
			photos         TEXT[],
			description    TEXT,
			listing_date   TIMESTAMPTZ,
			checksum       TEXT,
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL,
			UNIQUE (listing_id, source_website)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_source ON listings (source_website)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_district ON listings (district)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_type ON listings (listing_type)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_updated ON listings (updated_at)`,
		`CREATE TABLE IF NOT EXISTS crawl_runs (
			run_id      TEXT PRIMARY KEY,
			sources     TEXT[],
			status      TEXT NOT NULL,
			stats       JSONB,
			by_source   JSONB,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) GetByKey(ctx context.Context, key model.ListingKey) (model.Listing, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE listing_id = $1 AND source_website = $2`,
		key.ListingID, key.SourceWebsite)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Listing{}, false, nil
	}
	if err != nil {
		return model.Listing{}, false, fmt.Errorf("get listing: %w", err)
	}
	return l, true, nil
}

func (s *PostgresStore) Insert(ctx context.Context, l model.Listing) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO listings (listing_id, source_website, title, source_url, listing_type,
			property_type, price, currency, rooms, area, floor, total_floors, district,
			metro_station, address, location, latitude, longitude, contact_type,
			contact_phone, views_count, has_repair, amenities, photos, description,
			listing_date, checksum, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
			$20,$21,$22,$23,$24,$25,$26,$27,$28,$29)`,
		l.ListingID, l.SourceWebsite, l.Title, l.SourceURL, l.ListingType,
		l.PropertyType, l.Price, l.Currency, l.Rooms, l.Area, l.Floor, l.TotalFloors,
		l.District, l.MetroStation, l.Address, l.Location, l.Latitude, l.Longitude,
		l.ContactType, l.ContactPhone, l.ViewsCount, l.HasRepair, l.Amenities,
		l.Photos, l.Description, l.ListingDate, l.Checksum, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, l model.Listing) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE listings SET title=$3, source_url=$4, listing_type=$5, property_type=$6,
			price=$7, currency=$8, rooms=$9, area=$10, floor=$11, total_floors=$12,
			district=$13, metro_station=$14, address=$15, location=$16, latitude=$17,
			longitude=$18, contact_type=$19, contact_phone=$20, views_count=$21,
			has_repair=$22, amenities=$23, photos=$24, description=$25,
			listing_date=$26, checksum=$27, updated_at=$28
		WHERE listing_id = $1 AND source_website = $2`,
		l.ListingID, l.SourceWebsite, l.Title, l.SourceURL, l.ListingType,
		l.PropertyType, l.Price, l.Currency, l.Rooms, l.Area, l.Floor, l.TotalFloors,
		l.District, l.MetroStation, l.Address, l.Location, l.Latitude, l.Longitude,
		l.ContactType, l.ContactPhone, l.ViewsCount, l.HasRepair, l.Amenities,
		l.Photos, l.Description, l.ListingDate, l.Checksum, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update listing %s/%s: no such row", l.SourceWebsite, l.ListingID)
	}
	return nil
}

func (s *PostgresStore) Touch(ctx context.Context, key model.ListingKey, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE listings SET updated_at = $3 WHERE listing_id = $1 AND source_website = $2`,
		key.ListingID, key.SourceWebsite, at)
	if err != nil {
		return fmt.Errorf("touch listing: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f ListingFilter) ([]model.Listing, int, error) {
	where, args := buildListingWhere(f)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM listings%s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`,
		listingColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) StreamAll(ctx context.Context, fn func(model.Listing) error) error {
	rows, err := s.pool.Query(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY id`)
	if err != nil {
		return fmt.Errorf("stream listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return fmt.Errorf("scan listing: %w", err)
		}
		if err := fn(l); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context) (model.SystemStats, error) {
	stats := model.SystemStats{
		BySource:       make(map[string]int),
		ByListingType:  make(map[string]int),
		AvgPriceByType: make(map[string]float64),
	}

	var lastUpdated *time.Time
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), MAX(updated_at) FROM listings`).Scan(&stats.TotalListings, &lastUpdated); err != nil {
		return stats, fmt.Errorf("count listings: %w", err)
	}
	if lastUpdated != nil {
		stats.LastUpdated = *lastUpdated
	}

	rows, err := s.pool.Query(ctx, `SELECT source_website, COUNT(*) FROM listings GROUP BY source_website`)
	if err != nil {
		return stats, fmt.Errorf("group by source: %w", err)
	}
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			rows.Close()
			return stats, err
		}
		stats.BySource[source] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT listing_type, COUNT(*), AVG(price) FROM listings
		 WHERE listing_type <> '' GROUP BY listing_type`)
	if err != nil {
		return stats, fmt.Errorf("group by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lt string
		var n int
		var avg *float64
		if err := rows.Scan(&lt, &n, &avg); err != nil {
			return stats, err
		}
		stats.ByListingType[lt] = n
		if avg != nil {
			stats.AvgPriceByType[lt] = *avg
		}
	}
	return stats, rows.Err()
}

func (s *PostgresStore) CreateRun(ctx context.Context, run model.CrawlRun) error {
	statsJSON, bySourceJSON, err := encodeRunJSON(run)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO crawl_runs (run_id, sources, status, stats, by_source, started_at, finished_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		run.RunID, run.Sources, run.Status, statsJSON, bySourceJSON, run.StartedAt, nullTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run model.CrawlRun) error {
	statsJSON, bySourceJSON, err := encodeRunJSON(run)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE crawl_runs SET status=$2, stats=$3, by_source=$4, finished_at=$5 WHERE run_id=$1`,
		run.RunID, run.Status, statsJSON, bySourceJSON, nullTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (model.CrawlRun, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT run_id, sources, status, stats, by_source, started_at, finished_at
		 FROM crawl_runs WHERE run_id = $1`, runID)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CrawlRun{}, false, nil
	}
	if err != nil {
		return model.CrawlRun{}, false, fmt.Errorf("get run: %w", err)
	}
	return run, true, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.CrawlRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, sources, status, stats, by_source, started_at, finished_at
		 FROM crawl_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []model.CrawlRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func buildListingWhere(f ListingFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Source != "" {
		add("source_website = $%d", f.Source)
	}
	if f.ListingType != "" {
		add("listing_type = $%d", f.ListingType)
	}
	if f.District != "" {
		add("LOWER(district) = LOWER($%d)", f.District)
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	if f.MinRooms != nil {
		add("rooms >= $%d", *f.MinRooms)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (model.Listing, error) {
	var l model.Listing
	err := row.Scan(&l.ID, &l.ListingID, &l.SourceWebsite, &l.Title, &l.SourceURL,
		&l.ListingType, &l.PropertyType, &l.Price, &l.Currency, &l.Rooms, &l.Area,
		&l.Floor, &l.TotalFloors, &l.District, &l.MetroStation, &l.Address,
		&l.Location, &l.Latitude, &l.Longitude, &l.ContactType, &l.ContactPhone,
		&l.ViewsCount, &l.HasRepair, &l.Amenities, &l.Photos, &l.Description,
		&l.ListingDate, &l.Checksum, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func scanRun(row rowScanner) (model.CrawlRun, error) {
	var run model.CrawlRun
	var statsJSON, bySourceJSON []byte
	var finished *time.Time
	if err := row.Scan(&run.RunID, &run.Sources, &run.Status, &statsJSON,
		&bySourceJSON, &run.StartedAt, &finished); err != nil {
		return run, err
	}
	if finished != nil {
		run.FinishedAt = *finished
	}
	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &run.Stats); err != nil {
			return run, fmt.Errorf("decode run stats: %w", err)
		}
	}
	if len(bySourceJSON) > 0 {
		if err := json.Unmarshal(bySourceJSON, &run.BySource); err != nil {
			return run, fmt.Errorf("decode run breakdown: %w", err)
		}
	}
	return run, nil
}

func encodeRunJSON(run model.CrawlRun) ([]byte, []byte, error) {
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return nil, nil, fmt.Errorf("encode run stats: %w", err)
	}
	bySourceJSON, err := json.Marshal(run.BySource)
	if err != nil {
		return nil, nil, fmt.Errorf("encode run breakdown: %w", err)
	}
	return statsJSON, bySourceJSON, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
