package yeniemlak

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/emlakradar/api/internal/business/crawler"
)

type fileFetcher struct{ path string }

func (f fileFetcher) Fetch(_ context.Context, _ string) (io.ReadCloser, error) {
	return os.Open(f.path)
}

type stringFetcher struct{ body string }

func (f stringFetcher) Fetch(_ context.Context, _ string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func TestParsePage(t *testing.T) {
	f, err := os.Open("testdata/search_page.html")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	src := New("https://yeniemlak.az", DealSale)
	raws, err := src.ParsePage(f)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("got %d listings, want 2", len(raws))
	}

	first := raws[0]
	if first.ListingID != "301456" {
		t.Errorf("id = %q", first.ListingID)
	}
	if first.SourceURL != "https://yeniemlak.az/elan/satis-menzil-yasamal-301456" {
		t.Errorf("url = %q", first.SourceURL)
	}
	if first.Price != "132 000" {
		t.Errorf("price = %q", first.Price)
	}
	if first.Title != "Mənzil köhnə tikili" {
		t.Errorf("title = %q", first.Title)
	}
	if first.ListingType != "sale" {
		t.Errorf("listing type = %q", first.ListingType)
	}
	if !first.LenientRooms {
		t.Error("LenientRooms should be set")
	}
}

func TestParsePageRentSegments(t *testing.T) {
	f, err := os.Open("testdata/search_page.html")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	src := New("https://yeniemlak.az", DealMonthly)
	raws, err := src.ParsePage(f)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if raws[0].ListingType != "monthly" {
		t.Errorf("listing type = %q", raws[0].ListingType)
	}
}

func TestFetchDetail(t *testing.T) {
	src := New("https://yeniemlak.az", DealSale)
	rl := crawler.RawListing{
		ListingID:     "301456",
		SourceWebsite: SourceName,
		SourceURL:     "https://yeniemlak.az/elan/satis-menzil-yasamal-301456",
	}

	err := src.FetchDetail(context.Background(), fileFetcher{"testdata/detail_page.html"}, &rl)
	if err != nil {
		t.Fatalf("FetchDetail: %v", err)
	}

	if rl.Title != "Mənzil satılır, köhnə tikili, 3 otaqlı" {
		t.Errorf("title = %q", rl.Title)
	}
	if rl.Price != "132 000" {
		t.Errorf("price = %q", rl.Price)
	}
	if rl.Date != "14.08.2025" {
		t.Errorf("date = %q", rl.Date)
	}
	if rl.Views != "203" {
		t.Errorf("views = %q", rl.Views)
	}
	if rl.PropertyType != "Mənzil köhnə tikili" {
		t.Errorf("property type = %q", rl.PropertyType)
	}
	if rl.Rooms != "3" {
		t.Errorf("rooms = %q", rl.Rooms)
	}
	if rl.Area != "88" {
		t.Errorf("area = %q", rl.Area)
	}
	if rl.Floor != "7/17" {
		t.Errorf("floor = %q", rl.Floor)
	}
	if rl.District != "Yasamal" {
		t.Errorf("district = %q", rl.District)
	}
	if rl.MetroStation != "Elmlər Akademiyası" {
		t.Errorf("metro = %q", rl.MetroStation)
	}
	if rl.Location != "Badamdar" {
		t.Errorf("location = %q", rl.Location)
	}
	if rl.Address != "Şərifzadə küç. 28" {
		t.Errorf("address = %q", rl.Address)
	}
	if rl.ContactType != "agent" {
		t.Errorf("contact type = %q", rl.ContactType)
	}
	if rl.ContactPhone != "0505551234" {
		t.Errorf("phone = %q", rl.ContactPhone)
	}
	if len(rl.Amenities) != 2 || rl.Repair != "Təmirli" {
		t.Errorf("amenities = %v repair = %q", rl.Amenities, rl.Repair)
	}
	if len(rl.Photos) != 2 {
		t.Fatalf("photos = %v", rl.Photos)
	}
	if rl.Photos[0] != "https://img.yeniemlak.az/301456/1.jpg" {
		t.Errorf("protocol-relative photo = %q", rl.Photos[0])
	}
	if rl.Photos[1] != "https://yeniemlak.az/up/301456/2.jpg" {
		t.Errorf("relative photo = %q", rl.Photos[1])
	}
	if rl.Latitude != "40.3668" || rl.Longitude != "49.8152" {
		t.Errorf("coords = %q, %q", rl.Latitude, rl.Longitude)
	}
}

func TestFetchDetailMapFallbackCoords(t *testing.T) {
	page := `<html><body>
<div class="title"><tip>Bağ evi satılır</tip></div>
<iframe src="https://www.google.com/maps?q=40.5912,50.0461&z=15"></iframe>
</body></html>`

	src := New("https://yeniemlak.az", DealSale)
	rl := crawler.RawListing{ListingID: "301460", SourceURL: "https://yeniemlak.az/elan/bag-evi-301460"}

	err := src.FetchDetail(context.Background(), stringFetcher{page}, &rl)
	if err != nil {
		t.Fatalf("FetchDetail: %v", err)
	}
	if rl.Latitude != "40.5912" || rl.Longitude != "50.0461" {
		t.Errorf("coords = %q, %q", rl.Latitude, rl.Longitude)
	}
}

func TestPageURL(t *testing.T) {
	src := New("https://yeniemlak.az", DealDaily)
	if got := src.PageURL(2); got != "https://yeniemlak.az/elan/axtar?elan_nov=3&emlak=0&page=2" {
		t.Errorf("PageURL(2) = %q", got)
	}

	// Unknown codes fall back to the sale segment.
	fallback := New("https://yeniemlak.az", "9")
	if got := fallback.PageURL(1); got != "https://yeniemlak.az/elan/axtar?elan_nov=1&emlak=0&page=1" {
		t.Errorf("fallback PageURL(1) = %q", got)
	}
}
