package ipoteka

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/emlakradar/api/internal/business/crawler"
)

type fileFetcher struct{ path string }

func (f fileFetcher) Fetch(_ context.Context, _ string) (io.ReadCloser, error) {
	return os.Open(f.path)
}

func TestParsePage(t *testing.T) {
	f, err := os.Open("testdata/search_page.html")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	src := New("https://ipoteka.az")
	raws, err := src.ParsePage(f)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("got %d listings, want 2", len(raws))
	}

	first := raws[0]
	if first.ListingID != "551203" {
		t.Errorf("id = %q", first.ListingID)
	}
	if first.SourceURL != "https://ipoteka.az/elan/551203-yasamal-menzil" {
		t.Errorf("url = %q", first.SourceURL)
	}
	if first.Price != "142 000 AZN" {
		t.Errorf("price = %q", first.Price)
	}
	if first.Area != "90 m²" {
		t.Errorf("area = %q", first.Area)
	}
	if first.Rooms != "3" {
		t.Errorf("rooms = %q", first.Rooms)
	}
	if first.District != "Yasamal" {
		t.Errorf("district = %q", first.District)
	}
	if first.MetroStation != "İnşaatçılar" {
		t.Errorf("metro = %q", first.MetroStation)
	}
	if first.Date != "14.08.2025" {
		t.Errorf("date = %q", first.Date)
	}
	if len(first.Amenities) != 1 || first.Amenities[0] != "sənəd var" {
		t.Errorf("amenities = %v", first.Amenities)
	}

	second := raws[1]
	if second.ListingID != "551204" {
		t.Errorf("id = %q", second.ListingID)
	}
	if second.Area != "4 sot" {
		t.Errorf("area = %q", second.Area)
	}
	if second.District != "" || second.MetroStation != "" {
		t.Errorf("no district/metro expected: %q %q", second.District, second.MetroStation)
	}
}

func TestFetchDetail(t *testing.T) {
	src := New("https://ipoteka.az")
	raw := crawler.RawListing{
		ListingID:     "551203",
		SourceWebsite: SourceName,
		SourceURL:     "https://ipoteka.az/elan/551203-yasamal-menzil",
	}

	err := src.FetchDetail(context.Background(), fileFetcher{"testdata/detail_page.html"}, &raw)
	if err != nil {
		t.Fatalf("FetchDetail: %v", err)
	}

	if raw.Title != "Yasamal r.-da 3 otaqlı mənzil satılır" {
		t.Errorf("title = %q", raw.Title)
	}
	if raw.Price != "142 000 AZN" {
		t.Errorf("price = %q", raw.Price)
	}
	if raw.Rooms != "3" {
		t.Errorf("rooms = %q", raw.Rooms)
	}
	if raw.Area != "90 m²" {
		t.Errorf("area = %q", raw.Area)
	}
	if raw.Floor != "7/17" {
		t.Errorf("floor joined from two params = %q", raw.Floor)
	}
	if raw.District != "Yasamal" {
		t.Errorf("district = %q", raw.District)
	}
	if raw.MetroStation != "İnşaatçılar" {
		t.Errorf("metro = %q", raw.MetroStation)
	}
	if raw.Repair != "Əla təmirli" {
		t.Errorf("repair = %q", raw.Repair)
	}
	if len(raw.Amenities) != 1 || raw.Amenities[0] != "sənəd: Kupça" {
		t.Errorf("amenities = %v", raw.Amenities)
	}
	if raw.Views != "387" {
		t.Errorf("views = %q", raw.Views)
	}
	if raw.Date != "14 avqust 2025" {
		t.Errorf("date = %q", raw.Date)
	}
	if raw.ContactPhone != "(055) 777-88-99" {
		t.Errorf("phone = %q", raw.ContactPhone)
	}
	if raw.ContactType != "mülkiyyətçi" {
		t.Errorf("contact type = %q", raw.ContactType)
	}
	if len(raw.Photos) != 2 {
		t.Errorf("photos = %v", raw.Photos)
	}
}

func TestPageURL(t *testing.T) {
	src := New("https://ipoteka.az")
	if got := src.PageURL(5); got != "https://ipoteka.az/search?ad_type=0&search_type=0&page=5" {
		t.Errorf("PageURL(5) = %q", got)
	}
}
