// Package emlak scrapes emlak.az. Coordinates on this site come from a map
// widget that defaults to junk for unlocated listings, so they are only
// trusted inside the Azerbaijan bounding box.
package emlak

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emlakradar/api/internal/business/crawler"
)

const SourceName = "emlak.az"

type Source struct {
	baseURL string
}

func New(baseURL string) *Source {
	if baseURL == "" {
		baseURL = "https://emlak.az"
	}
	return &Source{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) PageURL(page int) string {
	return fmt.Sprintf("%s/elanlar/?ann_type=3&sort_type=0&page=%d", s.baseURL, page)
}

var (
	idRe     = regexp.MustCompile(`/(\d+)-`)
	areaRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*m[²2]`)
	roomsRe  = regexp.MustCompile(`(\d+)\s*otaql[ıi]`)
	coordsRe = regexp.MustCompile(`\(?([\d.]+)\s*,\s*([\d.]+)\)?`)
	metroRe  = regexp.MustCompile(`([\p{L}]+)\s+(?:m\.|metro|metrosu|m/st)`)
)

func (s *Source) ParsePage(body io.Reader) ([]crawler.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var raws []crawler.RawListing
	doc.Find("div.ticket.clearfix").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("h6.title a").First()
		href, _ := link.Attr("href")
		m := idRe.FindStringSubmatch(href)
		if len(m) < 2 {
			return
		}

		title := strings.TrimSpace(link.Text())
		raw := crawler.RawListing{
			ListingID:     m[1],
			SourceWebsite: SourceName,
			SourceURL:     s.absURL(href),
			Title:         title,
			ListingType:   title,
			PropertyType:  title,
			Currency:      "AZN",
			Price:         text(card, "p.price"),
			Location:      text(card, ".info"),
			Description:   text(card, ".description p"),
		}

		if am := areaRe.FindString(title); am != "" {
			raw.Area = am
		}
		if rm := roomsRe.FindString(title); rm != "" {
			raw.Rooms = rm
		}
		raw.District = crawler.DistrictFromText(raw.Location + " " + title)
		if mm := metroRe.FindStringSubmatch(raw.Location + " " + title); len(mm) > 1 {
			raw.MetroStation = mm[1]
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

	if t := text(doc.Selection, "h1.title"); t != "" {
		raw.Title = t
		raw.ListingType = t
		raw.PropertyType = t
	}
	// Prefer the AZN price when the page shows both currencies.
	if p := text(doc.Selection, "div.price span.m"); p != "" {
		raw.Price = p
	} else if p := text(doc.Selection, "p.price"); p != "" {
		raw.Price = p
	}
	if v := text(doc.Selection, ".views-count strong"); v != "" {
		raw.Views = v
	}
	if d := text(doc.Selection, ".date strong"); d != "" {
		raw.Date = d
	}
	if d := text(doc.Selection, ".desc p"); d != "" {
		raw.Description = d
	}

	// Rental cadence is a price suffix ("120 AZN /gün").
	if lt := strings.ToLower(doc.Find(".price").Text()); strings.Contains(lt, "/gün") || strings.Contains(lt, "/gun") {
		raw.ListingType = "daily"
	} else if strings.Contains(lt, "/ay") {
		raw.ListingType = "monthly"
	}

	doc.Find("dl.technical-characteristics dd").Each(func(_ int, dd *goquery.Selection) {
		labelElem := dd.Find(".label").First()
		if labelElem.Length() == 0 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(labelElem.Text()))
		value := strings.TrimSpace(strings.Replace(strings.TrimSpace(dd.Text()), strings.TrimSpace(labelElem.Text()), "", 1))
		raw.Amenities = append(raw.Amenities, fmt.Sprintf("%s: %s", strings.TrimSpace(labelElem.Text()), value))
		switch {
		case strings.Contains(label, "sahə"):
			raw.Area = value
		case strings.Contains(label, "otaqların sayı"):
			raw.Rooms = value
		case strings.Contains(label, "yerləşdiyi mərtəbə"):
			raw.Floor = value
		case strings.Contains(label, "əmlakın növü"):
			raw.PropertyType = value
		}
	})

	// Hidden input: value="(40.3666, 49.8187)"
	if coords, ok := doc.Find("#google_map").Attr("value"); ok {
		if m := coordsRe.FindStringSubmatch(coords); len(m) > 2 {
			raw.Latitude, raw.Longitude = m[1], m[2]
		}
	}
	if addr := text(doc.Selection, ".map-address h4"); addr != "" {
		raw.Address = strings.TrimSpace(strings.TrimPrefix(addr, "Ünvan:"))
	}

	if seller := doc.Find(".seller-data"); seller.Length() > 0 {
		contact := strings.TrimSpace(seller.Find(".name-seller").Text())
		// "Ramin (vasitəçi)" keeps the role in parentheses.
		if open := strings.Index(contact, "("); open >= 0 {
			if end := strings.Index(contact[open:], ")"); end > 0 {
				raw.ContactType = contact[open+1 : open+end]
			}
		}
		raw.ContactPhone = strings.TrimSpace(seller.Find(".phone").Text())
	}

	doc.Find(".item-slider img[src], .fotorama img[src]").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok && src != "" {
			raw.Photos = append(raw.Photos, src)
		}
	})
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
