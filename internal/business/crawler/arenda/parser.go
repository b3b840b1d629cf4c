// Package arenda scrapes arenda.az, a server-rendered rental and sales site.
package arenda

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emlakradar/api/internal/business/crawler"
)

const SourceName = "arenda.az"

type Source struct {
	baseURL string
}

func New(baseURL string) *Source {
	if baseURL == "" {
		baseURL = "https://arenda.az"
	}
	return &Source{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) PageURL(page int) string {
	return fmt.Sprintf("%s/filtirli-axtaris/?home_search=1&lang=1&site=1&home_s=1&page=%d", s.baseURL, page)
}

var metroRe = regexp.MustCompile(`([\p{L}]+)\s*(?:m\.|metro|m/st)`)

// ParsePage extracts listing cards from a search results page.
func (s *Source) ParsePage(body io.Reader) ([]crawler.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var raws []crawler.RawListing
	doc.Find("li.new_elan_box").Each(func(_ int, card *goquery.Selection) {
		id, _ := card.Attr("id")
		id = strings.TrimPrefix(id, "elan_")
		href, _ := card.Find("a").First().Attr("href")
		if id == "" || href == "" {
			return
		}

		raw := crawler.RawListing{
			ListingID:     id,
			SourceWebsite: SourceName,
			SourceURL:     s.absURL(href),
			Price:         text(card, ".elan_price"),
			Currency:      "AZN",
			Title:         text(card, ".elan_property_title1"),
			Date:          text(card, ".elan_box_date"),
		}
		raw.ListingType = raw.Title
		raw.PropertyType = raw.Title

		if loc := text(card, ".elan_unvan"); loc != "" {
			raw.Location = loc
			raw.District = crawler.DistrictFromText(loc)
			if m := metroRe.FindStringSubmatch(loc); len(m) > 1 {
				raw.MetroStation = m[1]
			}
		}

		// Rooms, area and floor share one params table.
		card.Find(".n_elan_box_botom_params td").Each(func(_ int, td *goquery.Selection) {
			t := strings.ToLower(strings.TrimSpace(td.Text()))
			switch {
			case strings.Contains(t, "otaqlı"):
				raw.Rooms = t
			case strings.Contains(t, "m²"):
				raw.Area = t
			case strings.Contains(t, "mərtəbə"):
				raw.Floor = t
			}
		})

		if src, ok := card.Find(".elan_img_box img").First().Attr("src"); ok && !strings.Contains(src, "load.gif") {
			raw.Photos = append(raw.Photos, src)
		}
		raws = append(raws, raw)
	})
	return raws, nil
}

// FetchDetail fills fields only present on the listing's own page.
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

	if t := text(doc.Selection, "h2.elan_main_title"); t != "" {
		raw.Title = t
		raw.ListingType = t
		raw.PropertyType = t
	}
	if d := text(doc.Selection, ".elan_info_txt"); d != "" {
		raw.Description = d
	}
	if p := text(doc.Selection, ".elan_new_price_box"); p != "" {
		raw.Price = p
	}
	if lat, ok := doc.Find("#lat").Attr("value"); ok {
		raw.Latitude = lat
	}
	if lon, ok := doc.Find("#lon").Attr("value"); ok {
		raw.Longitude = lon
	}
	if addr := text(doc.Selection, ".elan_unvan_txt"); addr != "" {
		raw.Address = addr
	}

	doc.Find(".elan_adr_list li a").Each(func(_ int, a *goquery.Selection) {
		t := strings.TrimSpace(a.Text())
		switch {
		case strings.HasSuffix(t, "r."):
			raw.District = strings.TrimSpace(strings.TrimSuffix(t, "r."))
		case strings.HasSuffix(t, "m."):
			raw.MetroStation = strings.TrimSpace(strings.TrimSuffix(t, "m."))
		default:
			if raw.Location == "" {
				raw.Location = t
			}
		}
	})

	doc.Find(".elan_property_list li a").Each(func(_ int, a *goquery.Selection) {
		if t := strings.TrimSpace(a.Text()); t != "" {
			raw.Amenities = append(raw.Amenities, t)
			if crawler.RepairFromText(t) {
				raw.Repair = t
			}
		}
	})

	if user := doc.Find(".new_elan_user_info"); user.Length() > 0 {
		raw.ContactType = text(user, "p")
		raw.ContactPhone = text(user, ".elan_in_tel")
	}

	doc.Find(".elan_date_box p").Each(func(_ int, p *goquery.Selection) {
		t := strings.TrimSpace(p.Text())
		switch {
		case strings.Contains(t, "tarixi"):
			raw.Date = afterColon(t)
		case strings.Contains(t, "Baxış"):
			raw.Views = afterColon(t)
		}
	})

	doc.Find(".elan_img_box img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("data-src")
		if !ok {
			src, _ = img.Attr("src")
		}
		if src != "" && !strings.Contains(src, "load.gif") {
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

func afterColon(t string) string {
	if i := strings.Index(t, ":"); i >= 0 && i+1 < len(t) {
		return strings.TrimSpace(t[i+1:])
	}
	return strings.TrimSpace(t)
}
