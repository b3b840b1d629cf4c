// Package unvan scrapes real estate listings from unvan.az.
package unvan

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/emlakradar/api/internal/business/crawler"
)

const SourceName = "unvan.az"

var (
	idRe       = regexp.MustCompile(`-(\d+)\.html$`)
	roomsRe    = regexp.MustCompile(`(\d+)\s*otaq`)
	districtRe = regexp.MustCompile(`,\s*([^,]+)\s*rayonu`)
	areaRe     = regexp.MustCompile(`(\d+)\s*m²`)
	dateRe     = regexp.MustCompile(`Tarix:\s*(\d{2}\.\d{2}\.\d{4})`)
)

type Source struct {
	baseURL string
}

func New(baseURL string) *Source {
	if baseURL == "" {
		baseURL = "https://unvan.az"
	}
	return &Source{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) PageURL(page int) string {
	return fmt.Sprintf("%s/menzil?satilir&start=%d", s.baseURL, (page-1)*10)
}

func (s *Source) ParsePage(r io.Reader) ([]crawler.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	var listings []crawler.RawListing
	doc.Find(".index.prodbig").Each(func(_ int, card *goquery.Selection) {
		link := card.Find(".prodname a").First()
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
			Title:         strings.TrimSpace(link.Text()),
			Currency:      "AZN",
			ListingType:   "sale",
		}

		if rm := roomsRe.FindStringSubmatch(rl.Title); rm != nil {
			rl.Rooms = rm[1]
		}
		if dm := districtRe.FindStringSubmatch(rl.Title); dm != nil {
			rl.District = strings.TrimSpace(dm[1])
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

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		t := p.Text()
		switch {
		case strings.Contains(t, "Sahə"):
			if m := areaRe.FindStringSubmatch(t); m != nil {
				rl.Area = m[1]
			}
		case strings.Contains(t, "Əmlakın növü"):
			rl.PropertyType = t
		}
	})

	// The address block lists district, metro and street as separate links.
	if loc := doc.Find(".infop100.linkteshow").First(); loc.Length() > 0 {
		var addresses []string
		loc.Find("a").Each(func(_ int, a *goquery.Selection) {
			addr := strings.TrimSpace(a.Text())
			if addr == "" {
				return
			}
			addresses = append(addresses, addr)
			lower := strings.ToLower(addr)
			switch {
			case strings.Contains(lower, "rayonu"):
				rl.District = strings.TrimSpace(strings.TrimSuffix(addr, "rayonu"))
			case strings.Contains(lower, "metro"):
				rl.MetroStation = addr
			}
		})
		if len(addresses) > 0 {
			rl.Location = strings.Join(addresses, " ")
		}
	}

	if contact := doc.Find(".infocontact").First(); contact.Length() > 0 {
		if phone := strings.TrimSpace(contact.Find("#telshow").First().Text()); phone != "" {
			rl.ContactPhone = phone
		}
		if user := contact.Find(".glyphicon-user").First(); user.Length() > 0 {
			if strings.Contains(user.Parent().Text(), "Vastəçi") {
				rl.ContactType = "agent"
			} else {
				rl.ContactType = "owner"
			}
		}
	}

	if title := strings.TrimSpace(doc.Find("h1.leftfloat").First().Text()); title != "" {
		rl.Title = title
		lower := strings.ToLower(title)
		switch {
		case strings.Contains(lower, "kirayə") || strings.Contains(lower, "icarə"):
			if strings.Contains(lower, "günlük") {
				rl.ListingType = "daily"
			} else {
				rl.ListingType = "monthly"
			}
		default:
			rl.ListingType = "sale"
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

	return nil
}
