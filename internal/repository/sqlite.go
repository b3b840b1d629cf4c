package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emlakradar/api/pkg/model"
)

// SQLiteStore implements ListingStore on database/sql. It backs local and
// single-node setups where running Postgres is not worth it.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			listing_id     TEXT NOT NULL,
			source_website TEXT NOT NULL,
			title          TEXT,
			source_url     TEXT,
			listing_type   TEXT,
			property_type  TEXT,
			price          REAL,
			currency       TEXT,
			rooms          INTEGER,
			area           REAL,
			floor          INTEGER,
			total_floors   INTEGER,
			district       TEXT,
			metro_station  TEXT,
			address        TEXT,
			location       TEXT,
			latitude       REAL,
			longitude      REAL,
			contact_type   TEXT,
			contact_phone  TEXT,
			views_count    INTEGER,
			has_repair     INTEGER NOT NULL DEFAULT 0,
			amenities      TEXT,
			photos         TEXT,
			description    TEXT,
			listing_date   TIMESTAMP,
			checksum       TEXT,
			created_at     TIMESTAMP NOT NULL,
			updated_at     TIMESTAMP NOT NULL,
			UNIQUE (listing_id, source_website)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_source ON listings (source_website)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_district ON listings (district)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_type ON listings (listing_type)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) GetByKey(ctx context.Context, key model.ListingKey) (model.Listing, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE listing_id = ? AND source_website = ?`,
		key.ListingID, key.SourceWebsite)
	l, err := scanSQLiteListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Listing{}, false, nil
	}
	if err != nil {
		return model.Listing{}, false, fmt.Errorf("get listing: %w", err)
	}
	return l, true, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, l model.Listing) error {
	amenities, photos, err := encodeStringLists(l)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO listings (listing_id, source_website, title, source_url, listing_type,
			property_type, price, currency, rooms, area, floor, total_floors, district,
			metro_station, address, location, latitude, longitude, contact_type,
			contact_phone, views_count, has_repair, amenities, photos, description,
			listing_date, checksum, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.ListingID, l.SourceWebsite, l.Title, l.SourceURL, l.ListingType,
		l.PropertyType, l.Price, l.Currency, l.Rooms, l.Area, l.Floor, l.TotalFloors,
		l.District, l.MetroStation, l.Address, l.Location, l.Latitude, l.Longitude,
		l.ContactType, l.ContactPhone, l.ViewsCount, l.HasRepair, amenities, photos,
		l.Description, l.ListingDate, l.Checksum, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, l model.Listing) error {
	amenities, photos, err := encodeStringLists(l)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET title=?, source_url=?, listing_type=?, property_type=?,
			price=?, currency=?, rooms=?, area=?, floor=?, total_floors=?, district=?,
			metro_station=?, address=?, location=?, latitude=?, longitude=?,
			contact_type=?, contact_phone=?, views_count=?, has_repair=?, amenities=?,
			photos=?, description=?, listing_date=?, checksum=?, updated_at=?
		WHERE listing_id = ? AND source_website = ?`,
		l.Title, l.SourceURL, l.ListingType, l.PropertyType, l.Price, l.Currency,
		l.Rooms, l.Area, l.Floor, l.TotalFloors, l.District, l.MetroStation,
		l.Address, l.Location, l.Latitude, l.Longitude, l.ContactType,
		l.ContactPhone, l.ViewsCount, l.HasRepair, amenities, photos, l.Description,
		l.ListingDate, l.Checksum, l.UpdatedAt, l.ListingID, l.SourceWebsite)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update listing %s/%s: no such row", l.SourceWebsite, l.ListingID)
	}
	return nil
}

func (s *SQLiteStore) Touch(ctx context.Context, key model.ListingKey, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE listings SET updated_at = ? WHERE listing_id = ? AND source_website = ?`,
		at, key.ListingID, key.SourceWebsite)
	if err != nil {
		return fmt.Errorf("touch listing: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, f ListingFilter) ([]model.Listing, int, error) {
	where, args := buildSQLiteWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings`+where+` ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		l, err := scanSQLiteListing(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (s *SQLiteStore) StreamAll(ctx context.Context, fn func(model.Listing) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY id`)
	if err != nil {
		return fmt.Errorf("stream listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanSQLiteListing(rows)
		if err != nil {
			return fmt.Errorf("scan listing: %w", err)
		}
		if err := fn(l); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (model.SystemStats, error) {
	stats := model.SystemStats{
		BySource:       make(map[string]int),
		ByListingType:  make(map[string]int),
		AvgPriceByType: make(map[string]float64),
	}

	var lastUpdated *time.Time
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(updated_at) FROM listings`).Scan(&stats.TotalListings, &lastUpdated); err != nil {
		return stats, fmt.Errorf("count listings: %w", err)
	}
	if lastUpdated != nil {
		stats.LastUpdated = *lastUpdated
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source_website, COUNT(*) FROM listings GROUP BY source_website`)
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

	rows, err = s.db.QueryContext(ctx,
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

func buildSQLiteWhere(f ListingFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Source != "" {
		conds = append(conds, "source_website = ?")
		args = append(args, f.Source)
	}
	if f.ListingType != "" {
		conds = append(conds, "listing_type = ?")
		args = append(args, f.ListingType)
	}
	if f.District != "" {
		conds = append(conds, "LOWER(district) = LOWER(?)")
		args = append(args, f.District)
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.MinRooms != nil {
		conds = append(conds, "rooms >= ?")
		args = append(args, *f.MinRooms)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanSQLiteListing(row rowScanner) (model.Listing, error) {
	var l model.Listing
	var amenities, photos *string
	err := row.Scan(&l.ID, &l.ListingID, &l.SourceWebsite, &l.Title, &l.SourceURL,
		&l.ListingType, &l.PropertyType, &l.Price, &l.Currency, &l.Rooms, &l.Area,
		&l.Floor, &l.TotalFloors, &l.District, &l.MetroStation, &l.Address,
		&l.Location, &l.Latitude, &l.Longitude, &l.ContactType, &l.ContactPhone,
		&l.ViewsCount, &l.HasRepair, &amenities, &photos, &l.Description,
		&l.ListingDate, &l.Checksum, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return l, err
	}
	if amenities != nil && *amenities != "" {
		if err := json.Unmarshal([]byte(*amenities), &l.Amenities); err != nil {
			return l, fmt.Errorf("decode amenities: %w", err)
		}
	}
	if photos != nil && *photos != "" {
		if err := json.Unmarshal([]byte(*photos), &l.Photos); err != nil {
			return l, fmt.Errorf("decode photos: %w", err)
		}
	}
	return l, nil
}

// encodeStringLists serializes the two list columns; sqlite has no array type.
func encodeStringLists(l model.Listing) (string, string, error) {
	amenities, err := json.Marshal(l.Amenities)
	if err != nil {
		return "", "", fmt.Errorf("encode amenities: %w", err)
	}
	photos, err := json.Marshal(l.Photos)
	if err != nil {
		return "", "", fmt.Errorf("encode photos: %w", err)
	}
	return string(amenities), string(photos), nil
}
