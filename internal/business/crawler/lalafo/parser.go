// Package lalafo ingests listings from the lalafo.az search feed API, which
// serves plain JSON. Room and area counts are not structured fields there
// and have to be recovered from the ad text.
package lalafo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/emlakradar/api/internal/business/crawler"
)

const SourceName = "lalafo.az"

// realEstateCategoryID is the site's real-estate feed category.
const realEstateCategoryID = 2029

type Source struct {
	baseURL string
}

func New(baseURL string) *Source {
	if baseURL == "" {
		baseURL = "https://lalafo.az"
	}
	return &Source{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) PageURL(page int) string {
	return fmt.Sprintf("%s/api/search/v3/feed/search?category_id=%d&expand=url&page=%d&per-page=20&with_feed_banner=true",
		s.baseURL, realEstateCategoryID, page)
}

type feedItem struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	City        string      `json:"city"`
	Lat         *float64    `json:"lat"`
	Lng         *float64    `json:"lng"`
	AdLabel     string      `json:"ad_label"`
	Price       *float64    `json:"price"`
	Currency    string      `json:"currency"`
	Mobile      string      `json:"mobile"`
	Views       *int        `json:"views"`
	URL         string      `json:"url"`
	CreatedTime int64       `json:"created_time"`
	Images      []struct {
		OriginalURL string `json:"original_url"`
	} `json:"images"`
	Params []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"params"`
}

type feedResponse struct {
	Items []feedItem `json:"items"`
}

var (
	roomsRe = regexp.MustCompile(`(?i)(\d+)\s*otaq`)
	areaRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:m²|kv\.?\s*m)`)
)

func (s *Source) ParsePage(body io.Reader) ([]crawler.RawListing, error) {
	var feed feedResponse
	if err := json.NewDecoder(body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	raws := make([]crawler.RawListing, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.ID.String() == "" {
			continue
		}
		raws = append(raws, s.mapItem(item))
	}
	return raws, nil
}

// FetchDetail is a no-op: the feed response is the whole record.
func (s *Source) FetchDetail(_ context.Context, _ crawler.HTMLFetcher, _ *crawler.RawListing) error {
	return nil
}

func (s *Source) mapItem(item feedItem) crawler.RawListing {
	raw := crawler.RawListing{
		ListingID:     item.ID.String(),
		SourceWebsite: SourceName,
		SourceURL:     s.baseURL + item.URL,
		Title:         item.Title,
		Description:   item.Description,
		Location:      item.City,
		Currency:      item.Currency,
		ContactPhone:  item.Mobile,
		ListingType:   item.AdLabel,
		PropertyType:  item.Title,
	}
	if raw.Currency == "" {
		raw.Currency = "AZN"
	}
	if item.Price != nil {
		raw.Price = strconv.FormatFloat(*item.Price, 'f', -1, 64)
	}
	if item.Views != nil {
		raw.Views = strconv.Itoa(*item.Views)
	}
	if item.Lat != nil && item.Lng != nil {
		raw.Latitude = strconv.FormatFloat(*item.Lat, 'f', -1, 64)
		raw.Longitude = strconv.FormatFloat(*item.Lng, 'f', -1, 64)
	}
	if item.CreatedTime > 0 {
		raw.Date = strconv.FormatInt(item.CreatedTime, 10)
	}
	for _, img := range item.Images {
		if img.OriginalURL != "" {
			raw.Photos = append(raw.Photos, img.OriginalURL)
		}
	}
	for _, p := range item.Params {
		if p.Name == "İnzibati rayonlar" {
			raw.District = p.Value
		}
	}

	// Rooms and area live in the ad text, not in structured fields.
	text := item.Title + " " + item.Description
	if m := roomsRe.FindStringSubmatch(text); len(m) > 1 {
		raw.Rooms = m[1]
	}
	if m := areaRe.FindStringSubmatch(text); len(m) > 1 {
		raw.Area = m[1]
	}
	return raw
}
