// Package tap scrapes real estate listings from tap.az.
package tap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/emlakradar/api/internal/business/crawler"
)

const SourceName = "tap.az"

var (
	cursorRe = regexp.MustCompile(`cursor=([^"]+)`)
	areaRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*m²`)
	roomsRe  = regexp.MustCompile(`(\d+)-otaqlı`)
	digitsRe = regexp.MustCompile(`\d+`)
)

// Source crawls the tap.az real estate section. Listing pages use cursor
// pagination, so the cursor extracted from each page feeds the next PageURL.
type Source struct {
	baseURL string
	phones  *PhoneClient

	mu     sync.Mutex
	cursor string
}

func New(baseURL string, phones *PhoneClient) *Source {
	if baseURL == "" {
		baseURL = "https://tap.az"
	}
	return &Source{baseURL: strings.TrimSuffix(baseURL, "/"), phones: phones}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) PageURL(page int) string {
	listings := s.baseURL + "/elanlar/dasinmaz-emlak"
	if page <= 1 {
		return listings
	}
	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()
	if cursor == "" {
		return listings
	}
	return listings + "?cursor=" + cursor
}

func (s *Source) ParsePage(r io.Reader) ([]crawler.RawListing, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}

	if m := cursorRe.FindSubmatch(raw); m != nil {
		s.mu.Lock()
		s.cursor = string(m[1])
		s.mu.Unlock()
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	var listings []crawler.RawListing
	doc.Find(".products-i").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a.products-link").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}

		parts := strings.Split(strings.TrimSuffix(href, "/"), "/")
		id := parts[len(parts)-1]
		if id == "" {
			return
		}

		rl := crawler.RawListing{
			ListingID:     id,
			SourceWebsite: SourceName,
			SourceURL:     s.baseURL + href,
			Currency:      "AZN",
		}

		rl.Price = text(card.Find(".price-val"))
		rl.Title = text(card.Find(".products-name"))

		for _, t := range []string{rl.Title, text(card.Find(".products-description"))} {
			if rl.Area == "" {
				if m := areaRe.FindStringSubmatch(t); m != nil {
					rl.Area = m[1]
				}
			}
			if rl.Rooms == "" {
				if m := roomsRe.FindStringSubmatch(t); m != nil {
					rl.Rooms = m[1]
				}
			}
		}

		if created := text(card.Find(".products-created")); created != "" {
			if i := strings.Index(created, ", "); i >= 0 {
				rl.Location = created[:i]
			} else {
				rl.Location = created
			}
		}

		lower := strings.ToLower(rl.SourceURL)
		switch {
		case strings.Contains(lower, "kiraye") && strings.Contains(lower, "gunluk"):
			rl.ListingType = "daily"
		case strings.Contains(lower, "kiraye"):
			rl.ListingType = "monthly"
		default:
			rl.ListingType = "sale"
		}

		listings = append(listings, rl)
	})

	return listings, nil
}

func (s *Source) FetchDetail(ctx context.Context, f crawler.HTMLFetcher, rl *crawler.RawListing) error {
	body, err := f.Fetch(ctx, rl.SourceURL)
	if err != nil {
		return err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return fmt.Errorf("parsing detail page: %w", err)
	}

	if desc := text(doc.Find(".product-description__content")); desc != "" {
		rl.Description = desc
	}

	doc.Find(".product-properties__i").Each(func(_ int, prop *goquery.Selection) {
		label := strings.ToLower(text(prop.Find(".product-properties__i-name")))
		value := text(prop.Find(".product-properties__i-value"))
		if label == "" || value == "" {
			return
		}
		switch {
		case strings.Contains(label, "sahə"):
			if m := areaRe.FindStringSubmatch(value); m != nil {
				rl.Area = m[1]
			} else if n := digitsRe.FindString(value); n != "" {
				rl.Area = n
			}
		case strings.Contains(label, "yerləşmə yeri"):
			rl.Location = value
		case strings.Contains(label, "şəhər"):
			rl.District = value
		case strings.Contains(label, "elanın tipi"):
			rl.ListingType = value
		case strings.Contains(label, "binanın tipi"):
			rl.PropertyType = value
		case strings.Contains(label, "otaq"):
			if n := digitsRe.FindString(value); n != "" {
				rl.Rooms = n
			}
		}
	})

	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		t := a.Text()
		if strings.Contains(strings.ToLower(t), "metro") {
			rl.MetroStation = strings.TrimSpace(strings.NewReplacer("metro", "", "m.", "").Replace(t))
			return false
		}
		return true
	})

	if owner := text(doc.Find(".product-owner__info-name")); owner != "" {
		rl.ContactType = owner
	}

	doc.Find(".product-photos__slider-top img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok && src != "" && !strings.HasSuffix(src, "load.gif") {
			rl.Photos = append(rl.Photos, src)
		}
	})

	doc.Find(".product-info__statistics__i-text").Each(func(_ int, stat *goquery.Selection) {
		t := stat.Text()
		switch {
		case strings.Contains(t, "Bugün"):
			rl.Date = "Bu gün"
		case strings.Contains(t, "Baxışların sayı"):
			rl.Views = digitsRe.FindString(t)
		}
	})

	if s.phones != nil {
		phones, err := s.phones.GetPhones(ctx, rl.ListingID)
		if err == nil && len(phones) > 0 {
			rl.ContactPhone = phones[0]
		}
	}

	return nil
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}
