// Package ipoteka scrapes ipoteka.az search results and ad pages.
package ipoteka

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emlakradar/api/internal/business/crawler"
)

const SourceName = "ipoteka.az"

type Source struct {
	baseURL string
}

func New(baseURL string) *Source {
	if baseURL == "" {
		baseURL = "https://ipoteka.az"
	}
	return &Source{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) PageURL(page int) string {
	return fmt.Sprintf("%s/search?ad_type=0&search_type=0&page=%d", s.baseURL, page)
}

var (
	idRe    = regexp.MustCompile(`/(\d+)-`)
	areaRe  = regexp.MustCompile(`Sahəsi:\s*([\d.]+[^,]*)`)
	roomsRe = regexp.MustCompile(`Otaq sayı:\s*(\d+)`)
	metroRe = regexp.MustCompile(`([\p{L}]+)\s*m\.`)
	dateRe  = regexp.MustCompile(`(\d+\s+[\p{L}]+\s+\d{4})`)
)

func (s *Source) ParsePage(body io.Reader) ([]crawler.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var raws []crawler.RawListing
	doc.Find(".col-xs-6.col-md-3").Each(func(_ int, card *goquery.Selection) {
		anchor := card.Find("a.item").First()
		href, _ := anchor.Attr("href")
		m := idRe.FindStringSubmatch(href)
		if len(m) < 2 {
			return
		}

		raw := crawler.RawListing{
			ListingID:     m[1],
			SourceWebsite: SourceName,
			SourceURL:     s.absURL(href),
			Currency:      "AZN",
			Price:         strings.TrimSpace(anchor.Find("span.img span.price").Text()),
		}

		if anchor.Find(`span.reg[data-title="Sənəd var"]`).Length() > 0 {
			raw.Amenities = append(raw.Amenities, "sənəd var")
		}

		cardText := anchor.Text()
		if am := areaRe.FindStringSubmatch(cardText); len(am) > 1 {
			raw.Area = am[1]
		}
		if rm := roomsRe.FindStringSubmatch(cardText); len(rm) > 1 {
			raw.Rooms = rm[1]
		}
		if d := strings.TrimSpace(anchor.Find(`span[style*="float: right"]`).First().Text()); d != "" {
			raw.Date = d
		}

		title := strings.TrimSpace(anchor.Find("span.title").Text())
		raw.Title = title
		raw.ListingType = title
		raw.PropertyType = title
		raw.District = crawler.DistrictFromText(title)
		if mm := metroRe.FindStringSubmatch(title); len(mm) > 1 {
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

	if t := text(doc.Selection, "h1.AdViewContent__title, h1.AdPage__title, h1.LFHeading"); t != "" {
		raw.Title = t
		raw.ListingType = t
		raw.PropertyType = t
	}
	if d := text(doc.Selection, ".AdViewContent__description, .description__wrap, .AdPageBody__description"); d != "" {
		raw.Description = d
	}
	if p := text(doc.Selection, ".AdViewContent__price, .price-wrap, .AdPage__price"); p != "" {
		raw.Price = p
	}

	var floor, totalFloors string
	doc.Find(".details-page__params li").Each(func(_ int, li *goquery.Selection) {
		label := strings.ToLower(text(li, "p.LFParagraph"))
		value := strings.TrimSpace(li.Find("a.LFLink").First().Text())
		if value == "" {
			value = strings.TrimSpace(li.Find("p.LFParagraph").Eq(1).Text())
		}
		if value == "" {
			return
		}
		switch {
		case strings.Contains(label, "otaq"):
			raw.Rooms = value
		case strings.Contains(label, "sahə"):
			raw.Area = value
		case strings.Contains(label, "mərtəbələrin sayı"):
			totalFloors = value
		case strings.Contains(label, "mərtəbə"):
			floor = value
		case strings.Contains(label, "rayon"):
			raw.District = value
		case strings.Contains(label, "metro"):
			raw.MetroStation = value
		case strings.Contains(label, "təmir"):
			raw.Repair = value
		default:
			raw.Amenities = append(raw.Amenities, fmt.Sprintf("%s: %s", label, value))
		}
	})
	switch {
	case floor != "" && totalFloors != "":
		raw.Floor = floor + "/" + totalFloors
	case floor != "":
		raw.Floor = floor
	case totalFloors != "":
		raw.Floor = "/" + totalFloors
	}

	if v := text(doc.Selection, ".impressions span.LFCaption"); v != "" {
		if i := strings.Index(v, ":"); i >= 0 {
			raw.Views = strings.TrimSpace(v[i+1:])
		}
	}

	doc.Find(".about-ad-info__date").EachWithBreak(func(_ int, d *goquery.Selection) bool {
		if m := dateRe.FindStringSubmatch(d.Text()); len(m) > 1 {
			raw.Date = m[1]
			return false
		}
		return true
	})

	if p := text(doc.Selection, ".PhoneView__number, .phone-wrap"); p != "" {
		raw.ContactPhone = p
	}
	if doc.Find(".AdViewUser__pro, .pro-label").Length() > 0 {
		raw.ContactType = "agent"
	} else if doc.Find(".AdViewUser__name, .userName-text").Length() > 0 {
		raw.ContactType = "mülkiyyətçi"
	}

	doc.Find(".AdViewGallery__img-wrap img[src], .slick-dots.slick-thumb li a img[src]").Each(func(_ int, img *goquery.Selection) {
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
