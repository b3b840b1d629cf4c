// Package yeniemlak scrapes real estate listings from yeniemlak.az.
//
// The search endpoint is segmented by deal type (sale, monthly and daily
// rent), selected through the elan_nov query parameter. One Source instance
// covers one deal type; the registry wires an instance per type.
package yeniemlak

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/emlakradar/api/internal/business/crawler"
)

const SourceName = "yeniemlak.az"

// Deal type codes used by the site's search endpoint.
const (
	DealSale    = "1"
	DealMonthly = "2"
	DealDaily   = "3"
)

var dealTypes = map[string]string{
	DealSale:    "sale",
	DealMonthly: "monthly",
	DealDaily:   "daily",
}

var (
	idRe       = regexp.MustCompile(`-(\d+)$`)
	latRe      = regexp.MustCompile(`id="lat"[^>]*value="([^"]+)"`)
	lonRe      = regexp.MustCompile(`id="lon"[^>]*value="([^"]+)"`)
	mapCoordRe = regexp.MustCompile(`q=(-?\d+\.\d+),(-?\d+\.\d+)`)
	phoneRe    = regexp.MustCompile(`/tel-show/(\d+)`)
)

type Source struct {
	baseURL string
	dealNov string
}

func New(baseURL, dealNov string) *Source {
	if baseURL == "" {
		baseURL = "https://yeniemlak.az"
	}
	if _, ok := dealTypes[dealNov]; !ok {
		dealNov = DealSale
	}
	return &Source{baseURL: strings.TrimSuffix(baseURL, "/"), dealNov: dealNov}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) PageURL(page int) string {
	return fmt.Sprintf("%s/elan/axtar?elan_nov=%s&emlak=0&page=%d", s.baseURL, s.dealNov, page)
}

func (s *Source) ParsePage(r io.Reader) ([]crawler.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	var listings []crawler.RawListing
	doc.Find("table.list").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a.detail").First()
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
			Currency:      "AZN",
			ListingType:   dealTypes[s.dealNov],
			LenientRooms:  true,
		}

		rl.Price = strings.TrimSpace(card.Find("price").First().Text())
		rl.Title = strings.TrimSpace(card.Find(".text emlak").First().Text())

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

	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("reading detail page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return fmt.Errorf("parsing detail page: %w", err)
	}

	if title := strings.TrimSpace(doc.Find("div.title tip").First().Text()); title != "" {
		rl.Title = title
	}
	if desc := strings.TrimSpace(doc.Find("div.text").First().Text()); desc != "" {
		rl.Description = desc
	}
	if price := strings.TrimSpace(doc.Find("price").First().Text()); price != "" {
		rl.Price = price
	}

	doc.Find("div.title titem").Each(func(_ int, item *goquery.Selection) {
		t := item.Text()
		b := strings.TrimSpace(item.Find("b").First().Text())
		if b == "" {
			return
		}
		switch {
		case strings.Contains(t, "Tarix:"):
			rl.Date = b
		case strings.Contains(t, "Baxış"):
			rl.Views = b
		}
	})

	if emlak := doc.Find("emlak").First(); emlak.Length() > 0 {
		rl.PropertyType = strings.TrimSpace(emlak.Parent().Text())
	}

	doc.Find("div.params").Each(func(_ int, param *goquery.Selection) {
		t := strings.ToLower(param.Text())
		b := strings.TrimSpace(param.Find("b").First().Text())
		switch {
		case strings.Contains(t, "otaq"):
			rl.Rooms = b
		case strings.Contains(t, "m2") || strings.Contains(t, "m²"):
			rl.Area = b
		case strings.Contains(t, "mərtəbə"):
			// First bold value is the building height, second the floor.
			bs := param.Find("b")
			if bs.Length() >= 2 {
				rl.Floor = strings.TrimSpace(bs.Eq(1).Text()) + "/" + strings.TrimSpace(bs.Eq(0).Text())
			}
		case strings.Contains(t, "rayonu"):
			rl.District = b
		case strings.Contains(t, "metro"):
			rl.MetroStation = b
		case strings.Contains(t, "qəs."):
			rl.Location = b
		}
	})

	if addr := strings.TrimSpace(doc.Find("div.params + div.text").First().Text()); addr != "" {
		rl.Address = addr
	}

	if name := strings.TrimSpace(doc.Find("div.ad").First().Text()); name != "" {
		rl.ContactType = name
	}
	if vrn := strings.ToLower(strings.TrimSpace(doc.Find("div.elvrn").First().Text())); vrn != "" {
		if strings.Contains(vrn, "vasitəçi") || strings.Contains(vrn, "rieltor") {
			rl.ContactType = "agent"
		} else {
			rl.ContactType = "owner"
		}
	}

	// Phone numbers are rendered as an image whose path carries the digits.
	if img := doc.Find("div.tel img").First(); img.Length() > 0 {
		if m := phoneRe.FindStringSubmatch(img.AttrOr("src", "")); m != nil {
			rl.ContactPhone = m[1]
		}
	}

	doc.Find("div.check").Each(func(_ int, check *goquery.Selection) {
		if t := strings.TrimSpace(check.Text()); t != "" {
			rl.Amenities = append(rl.Amenities, t)
			if t == "Təmirli" {
				rl.Repair = t
			}
		}
	})

	doc.Find("a.fancybox-thumb[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if href == "" || strings.HasSuffix(href, "load.gif") || strings.HasSuffix(href, "placeholder.png") {
			return
		}
		switch {
		case strings.HasPrefix(href, "http"):
		case strings.HasPrefix(href, "//"):
			href = "https:" + href
		default:
			href = s.baseURL + href
		}
		rl.Photos = append(rl.Photos, href)
	})

	// Coordinates live in hidden inputs, or failing that in the embedded map.
	if lat, lon := latRe.FindSubmatch(raw), lonRe.FindSubmatch(raw); lat != nil && lon != nil {
		rl.Latitude = string(lat[1])
		rl.Longitude = string(lon[1])
	} else if iframe := doc.Find(`iframe[src*="google.com/maps"]`).First(); iframe.Length() > 0 {
		if m := mapCoordRe.FindStringSubmatch(iframe.AttrOr("src", "")); m != nil {
			rl.Latitude = m[1]
			rl.Longitude = m[2]
		}
	}

	return nil
}
