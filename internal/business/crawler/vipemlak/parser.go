// Package vipemlak scrapes new-construction listings from vipemlak.az.
package vipemlak

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/emlakradar/api/internal/business/crawler"
)

const SourceName = "vipemlak.az"

var (
	idRe       = regexp.MustCompile(`-(\d+)\.html$`)
	roomsRe    = regexp.MustCompile(`(\d+)\s*otaq`)
	areaRe     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*m[²2]`)
	districtRe = regexp.MustCompile(`([\p{L}]+)\s*rayonu`)
	metroRe    = regexp.MustCompile(`([\p{L}]+)\s*metrosu`)
	dateRe     = regexp.MustCompile(`Tarix:\s*(\d{2}\.\d{2}\.\d{4})`)
)

type Source struct {
	baseURL string
	phones  *PhoneClient
}

func New(baseURL string, phones *PhoneClient) *Source {
	if baseURL == "" {
		baseURL = "https://vipemlak.az"
	}
	return &Source{baseURL: strings.TrimSuffix(baseURL, "/"), phones: phones}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) PageURL(page int) string {
	return fmt.Sprintf("%s/yeni-tikili-satilir/?start=%d", s.baseURL, page*5)
}

func (s *Source) ParsePage(r io.Reader) ([]crawler.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	var listings []crawler.RawListing
	doc.Find(".pranto.prodbig").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		url := s.baseURL + href
		m := idRe.FindStringSubmatch(url)
		if m == nil {
			return
		}

		rl := crawler.RawListing{
			ListingID:     m[1],
			SourceWebsite: SourceName,
			SourceURL:     url,
			Title:         strings.TrimSpace(link.Find("h3").First().Text()),
			Currency:      "AZN",
			ListingType:   "sale",
			PropertyType:  "yeni tikili",
		}

		if rm := roomsRe.FindStringSubmatch(rl.Title); rm != nil {
			rl.Rooms = rm[1]
		}
		if dm := districtRe.FindStringSubmatch(rl.Title); dm != nil {
			rl.District = dm[1]
		}

		rl.Price = strings.TrimSpace(card.Find(".sprice").First().Text())
		rl.Description = strings.TrimSpace(card.Find(".prodful").First().Text())

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

	if desc := strings.TrimSpace(doc.Find(".halfdiv.openproduct .infotd100").First().Text()); desc != "" {
		rl.Description = desc
	}

	// Property details are label/value row pairs: .infotd holds the bold
	// label, the following .infotd2 holds the value.
	doc.Find(".infotd").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(row.Find("b").First().Text()))
		if label == "" {
			return
		}
		value := strings.TrimSpace(row.NextFiltered(".infotd2").Text())
		if value == "" {
			return
		}
		rl.Amenities = append(rl.Amenities, fmt.Sprintf("%s: %s", strings.TrimSpace(row.Find("b").First().Text()), value))
		switch {
		case strings.Contains(label, "əmlakın növü"):
			rl.PropertyType = value
		case strings.Contains(label, "sahə"):
			if m := areaRe.FindStringSubmatch(value); m != nil {
				rl.Area = m[1]
			}
		case strings.Contains(label, "otaq sayı"):
			rl.Rooms = value
		case strings.Contains(label, "qiymət"):
			rl.Price = value
		}
	})

	// The address line sits in an .infotd100 block headed by "Ünvan".
	doc.Find(".infotd100").Each(func(_ int, block *goquery.Selection) {
		t := block.Text()
		if !strings.Contains(t, "Ünvan") {
			return
		}
		rl.Address = strings.TrimSpace(t)
		if m := metroRe.FindStringSubmatch(t); m != nil {
			rl.MetroStation = m[1]
		}
		if rl.District == "" {
			if m := districtRe.FindStringSubmatch(t); m != nil {
				rl.District = m[1]
			}
		}
	})

	if contact := doc.Find(".infocontact").First(); contact.Length() > 0 {
		if user := contact.Find(".glyphicon-user").First(); user.Length() > 0 {
			if strings.Contains(strings.ToLower(user.Parent().Text()), "vasitəçi") {
				rl.ContactType = "agent"
			} else {
				rl.ContactType = "owner"
			}
		}
	}

	doc.Find("#picsopen img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if src == "" || strings.HasSuffix(src, "load.gif") {
			return
		}
		if !strings.HasPrefix(src, "http") {
			src = s.baseURL + src
		}
		rl.Photos = append(rl.Photos, src)
	})

	if views := doc.Find(".viewsbb").First(); views.Length() > 0 {
		if m := dateRe.FindStringSubmatch(views.Text()); m != nil {
			rl.Date = m[1]
		}
	}

	if s.phones != nil {
		if params, ok := telshowParams(doc); ok {
			phone, err := s.phones.GetPhone(ctx, params, rl.SourceURL)
			if err == nil && phone != "" {
				rl.ContactPhone = phone
			}
		}
	}

	return nil
}

// telshowParams pulls the AJAX parameters embedded on the #telshow button.
func telshowParams(doc *goquery.Document) (TelshowParams, bool) {
	el := doc.Find("#telshow").First()
	if el.Length() == 0 {
		return TelshowParams{}, false
	}
	p := TelshowParams{
		ID:   el.AttrOr("data-id", ""),
		Type: el.AttrOr("data-t", ""),
		Hash: el.AttrOr("data-h", ""),
		Ref:  el.AttrOr("data-rf", ""),
	}
	if p.ID == "" || p.Type == "" || p.Hash == "" || p.Ref == "" {
		return TelshowParams{}, false
	}
	return p, true
}
