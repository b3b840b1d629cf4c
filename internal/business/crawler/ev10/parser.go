// Package ev10 ingests ev10.az rental listings. The site streams its search
// feed as line-delimited component payloads; each line carries a "key:json"
// pair and the postings hide inside an initialPostingsData array.
package ev10

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/emlakradar/api/internal/business/crawler"
	"github.com/emlakradar/api/pkg/model"
)

const SourceName = "ev10.az"

type Source struct {
	baseURL string
}

func New(baseURL string) *Source {
	if baseURL == "" {
		baseURL = "https://ev10.az"
	}
	return &Source{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) PageURL(page int) string {
	return fmt.Sprintf("%s/ru/kiraye?page_number=%d&sort_by=date_desc", s.baseURL, page)
}

type posting struct {
	ID            json.Number `json:"id"`
	Address       string      `json:"address"`
	District      string      `json:"district"`
	Suburban      string      `json:"suburban"`
	LocationLat   *float64    `json:"location_lat"`
	LocationLng   *float64    `json:"location_lng"`
	SubwayStation *struct {
		Name string `json:"name"`
	} `json:"subway_station"`
	Rooms       *int     `json:"rooms"`
	Area        *float64 `json:"area"`
	Floor       *int     `json:"floor"`
	TotalFloors *int     `json:"total_floors"`
	PropertyType string  `json:"property_type"`
	LeaseType    string  `json:"lease_type"`
	Price        *float64 `json:"price"`
	Currency     string   `json:"currency"`
	PhoneNumber  string   `json:"phone_number"`
	RenewedAt    string   `json:"renewed_at"`
	Renovated    bool     `json:"renovated"`
	Description  string   `json:"description"`
	Images       []string `json:"images"`
}

func (s *Source) ParsePage(body io.Reader) ([]crawler.RawListing, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	postings := extractPostings(data)
	raws := make([]crawler.RawListing, 0, len(postings))
	for _, p := range postings {
		if p.ID.String() == "" {
			continue
		}
		raws = append(raws, s.mapPosting(p))
	}
	return raws, nil
}

// FetchDetail is a no-op: the feed already carries every field, including
// the contact phone.
func (s *Source) FetchDetail(_ context.Context, _ crawler.HTMLFetcher, _ *crawler.RawListing) error {
	return nil
}

func (s *Source) mapPosting(p posting) crawler.RawListing {
	raw := crawler.RawListing{
		ListingID:     p.ID.String(),
		SourceWebsite: SourceName,
		SourceURL:     fmt.Sprintf("%s/elan/%s", s.baseURL, p.ID.String()),
		Title:         p.Address,
		District:      p.District,
		Address:       p.Address,
		Location:      p.Suburban,
		PropertyType:  p.PropertyType,
		Currency:      p.Currency,
		ContactPhone:  p.PhoneNumber,
		Description:   p.Description,
		Date:          p.RenewedAt,
		Photos:        p.Images,
	}
	if raw.Currency == "" {
		raw.Currency = "AZN"
	}
	if p.LeaseType == "MONTHLY" {
		raw.ListingType = model.ListingTypeMonthly
	} else {
		raw.ListingType = model.ListingTypeDaily
	}
	if p.SubwayStation != nil {
		raw.MetroStation = p.SubwayStation.Name
	}
	if p.Price != nil {
		raw.Price = strconv.FormatFloat(*p.Price, 'f', -1, 64)
	}
	if p.Rooms != nil {
		raw.Rooms = strconv.Itoa(*p.Rooms)
	}
	if p.Area != nil {
		raw.Area = strconv.FormatFloat(*p.Area, 'f', -1, 64)
	}
	if p.Floor != nil {
		raw.Floor = strconv.Itoa(*p.Floor)
		if p.TotalFloors != nil {
			raw.Floor = fmt.Sprintf("%d/%d", *p.Floor, *p.TotalFloors)
		}
	}
	if p.LocationLat != nil && p.LocationLng != nil {
		raw.Latitude = strconv.FormatFloat(*p.LocationLat, 'f', -1, 64)
		raw.Longitude = strconv.FormatFloat(*p.LocationLng, 'f', -1, 64)
	}
	if p.Renovated {
		raw.Repair = "təmirli"
	}
	return raw
}

// extractPostings walks the line-delimited payload looking for the postings
// array, falling back to loose posting objects.
func extractPostings(data []byte) []posting {
	var loose []posting
	for _, line := range strings.Split(string(data), "\n") {
		i := strings.Index(line, ":")
		if i < 0 {
			continue
		}
		content := strings.TrimSpace(line[i+1:])
		switch {
		case strings.HasPrefix(content, "["):
			var arr []json.RawMessage
			if err := json.Unmarshal([]byte(content), &arr); err != nil {
				continue
			}
			for _, elem := range arr {
				var wrapper struct {
					InitialPostingsData []posting `json:"initialPostingsData"`
				}
				if err := json.Unmarshal(elem, &wrapper); err == nil && len(wrapper.InitialPostingsData) > 0 {
					return wrapper.InitialPostingsData
				}
			}
		case strings.HasPrefix(content, "{"):
			var p posting
			if err := json.Unmarshal([]byte(content), &p); err == nil && p.ID.String() != "" {
				loose = append(loose, p)
			}
		}
	}
	return loose
}
