// Package bina scrapes bina.az. The site sits behind an anti-bot wall, so
// page fetching goes through a browser-backed client; the phone number
// requires a follow-up XHR call guarded by a CSRF token.
package bina

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emlakradar/api/internal/business/crawler"
)

const SourceName = "bina.az"

type Source struct {
	baseURL string
	phones  *PhoneClient
}

// New creates the source. phones may be nil when phone reveal is disabled.
func New(baseURL string, phones *PhoneClient) *Source {
	if baseURL == "" {
		baseURL = "https://bina.az"
	}
	return &Source{baseURL: strings.TrimRight(baseURL, "/"), phones: phones}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) PageURL(page int) string {
	return fmt.Sprintf("%s/items/all?page=%d", s.baseURL, page)
}

func (s *Source) ParsePage(body io.Reader) ([]crawler.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var raws []crawler.RawListing
	doc.Find(".items_list .items-i").Each(func(_ int, card *goquery.Selection) {
		id, _ := card.Attr("data-item-id")
		href, _ := card.Find("a.item_link").First().Attr("href")
		if id == "" || href == "" {
			return
		}

		raw := crawler.RawListing{
			ListingID:     id,
			SourceWebsite: SourceName,
			SourceURL:     s.absURL(href),
			Currency:      "AZN",
			Price:         text(card, ".price-val"),
			Title:         text(card, ".card-title"),
			Location:      text(card, ".location"),
		}
		// Rental cadence shows up as a price suffix, not in the title.
		raw.ListingType = text(card, ".price-per")

		card.Find(".name li").Each(func(_ int, li *goquery.Selection) {
			t := strings.ToLower(strings.TrimSpace(li.Text()))
			switch {
			case strings.Contains(t, "otaq"):
				raw.Rooms = t
			case strings.Contains(t, "m²"):
				raw.Area = t
			case strings.Contains(t, "mərtəbə"):
				raw.Floor = t
			}
		})
		raw.PropertyType = strings.ToLower(strings.TrimSpace(card.Find(".name").Text()))

		if card.Find(".repair").Length() > 0 {
			raw.Repair = "təmirli"
			raw.Amenities = append(raw.Amenities, "təmirli")
		}
		if card.Find(".bill_of_sale").Length() > 0 {
			raw.Amenities = append(raw.Amenities, "kupçalı")
		}
		if card.Find(".mortgage").Length() > 0 {
			raw.Amenities = append(raw.Amenities, "ipoteka var")
		}

		// Location line format: "Yasamal r., Nizami m."
		loc := raw.Location
		if i := strings.Index(loc, "r."); i >= 0 {
			raw.District = strings.TrimSpace(strings.TrimSuffix(loc[:i], ","))
		}
		if i := strings.Index(loc, "m."); i >= 0 {
			// Station name precedes the marker after the last comma.
			head := strings.TrimSpace(loc[:i])
			if j := strings.LastIndex(head, ","); j >= 0 {
				head = strings.TrimSpace(head[j+1:])
			}
			if !strings.HasSuffix(head, "r.") {
				raw.MetroStation = head
			}
		}

		raws = append(raws, raw)
	})
	return raws, nil
}

func (s *Source) FetchDetail(ctx context.Context, fetcher crawler.HTMLFetcher, raw *crawler.RawListing) error {
	body, err := fetcher.Fetch(ctx, raw.SourceURL)
	if err != nil {
		return err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return fmt.Errorf("parse detail html: %w", err)
	}

	if t := text(doc.Selection, "h1.product-title"); t != "" {
		raw.Title = t
	}
	if d := text(doc.Selection, ".product-description__content"); d != "" {
		raw.Description = d
	}

	doc.Find(".product-properties__i").Each(func(_ int, item *goquery.Selection) {
		label := strings.ToLower(text(item, ".product-properties__i-name"))
		value := strings.TrimSpace(item.Find(".product-properties__i-value").Text())
		if strings.Contains(label, "kateqoriya") {
			raw.PropertyType = value
		}
	})

	doc.Find(".product-statistics__i-text").Each(func(_ int, stat *goquery.Selection) {
		t := strings.TrimSpace(stat.Text())
		switch {
		case strings.Contains(t, "Baxışların sayı:"):
			raw.Views = strings.TrimSpace(strings.TrimPrefix(t, "Baxışların sayı:"))
		case strings.Contains(t, "Yeniləndi:"):
			raw.Date = strings.ReplaceAll(strings.TrimSpace(strings.TrimPrefix(t, "Yeniləndi:")), ",", "")
		}
	})

	if ct := text(doc.Selection, ".product-owner__info-region"); ct != "" {
		raw.ContactType = ct
	}

	if mapElem := doc.Find("#item_map"); mapElem.Length() > 0 {
		raw.Latitude, _ = mapElem.Attr("data-lat")
		raw.Longitude, _ = mapElem.Attr("data-lng")
	}
	if addr := text(doc.Selection, ".product-map__left__address"); addr != "" {
		raw.Address = addr
	}

	doc.Find(".product-extras__i a").Each(func(_ int, a *goquery.Selection) {
		t := strings.TrimSpace(a.Text())
		lower := strings.ToLower(t)
		switch {
		case strings.HasSuffix(lower, "m."):
			raw.MetroStation = strings.TrimSpace(strings.TrimSuffix(t, "m."))
		case strings.Contains(lower, "metro"):
			raw.MetroStation = strings.TrimSpace(strings.ReplaceAll(lower, "metro", ""))
		case strings.Contains(lower, "r."):
			district := strings.TrimSpace(strings.ReplaceAll(t, "r.", ""))
			if fields := strings.Fields(district); len(fields) > 0 {
				raw.District = fields[0]
			}
		default:
			raw.Location = t
		}
	})

	doc.Find(".product-photos__slider-top img[src]").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok && !strings.HasSuffix(src, "load.gif") {
			raw.Photos = append(raw.Photos, src)
		}
	})

	if doc.Find(".repair").Length() > 0 {
		raw.Repair = "təmirli"
	}

	if s.phones != nil {
		csrf, _ := doc.Find(`meta[name="csrf-token"]`).Attr("content")
		phones, err := s.phones.GetPhones(ctx, raw.ListingID, csrf)
		if err != nil {
			return fmt.Errorf("phones for %s: %w", raw.ListingID, err)
		}
		if len(phones) > 0 {
			raw.ContactPhone = phones[0]
		}
	}
	return nil
}

func (s *Source) absURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return s.baseURL + "/" + strings.TrimLeft(href, "/")
}

func text(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}
