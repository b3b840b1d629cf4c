package lalafo

import (
	"os"
	"strings"
	"testing"
)

func TestParsePage(t *testing.T) {
	f, err := os.Open("testdata/feed.json")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	src := New("https://lalafo.az")
	raws, err := src.ParsePage(f)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("got %d listings, want 2", len(raws))
	}

	first := raws[0]
	if first.ListingID != "701234" {
		t.Errorf("id = %q", first.ListingID)
	}
	if first.SourceURL != "https://lalafo.az/baki/ads/kiraye-verilir-2-otaqli-701234" {
		t.Errorf("url = %q", first.SourceURL)
	}
	if first.Price != "750" {
		t.Errorf("price = %q", first.Price)
	}
	if first.ListingType != "Kirayə aylıq" {
		t.Errorf("listing type = %q", first.ListingType)
	}
	if first.District != "Nəsimi" {
		t.Errorf("district = %q", first.District)
	}
	if first.Views != "134" {
		t.Errorf("views = %q", first.Views)
	}
	if first.Date != "1755165600" {
		t.Errorf("date = %q", first.Date)
	}
	if first.Latitude != "40.4093" || first.Longitude != "49.8671" {
		t.Errorf("coords = %q, %q", first.Latitude, first.Longitude)
	}
	if first.ContactPhone != "+994551112233" {
		t.Errorf("phone = %q", first.ContactPhone)
	}
	if first.Rooms != "2" {
		t.Errorf("rooms from ad text = %q", first.Rooms)
	}
	if first.Area != "60" {
		t.Errorf("area from ad text = %q", first.Area)
	}
	if len(first.Photos) != 2 {
		t.Errorf("photos = %v, empty urls should be dropped", first.Photos)
	}

	second := raws[1]
	if second.ListingID != "701235" {
		t.Errorf("id = %q", second.ListingID)
	}
	if second.Currency != "AZN" {
		t.Errorf("currency default = %q", second.Currency)
	}
	if second.Date != "" {
		t.Errorf("zero created_time should leave date empty, got %q", second.Date)
	}
	if second.Rooms != "" || second.Area != "" {
		t.Errorf("no rooms/area in ad text: %q %q", second.Rooms, second.Area)
	}
}

func TestParsePageBadJSON(t *testing.T) {
	src := New("")
	if _, err := src.ParsePage(strings.NewReader("<html>not json</html>")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestPageURL(t *testing.T) {
	src := New("https://lalafo.az")
	got := src.PageURL(2)
	if !strings.Contains(got, "category_id=2029") || !strings.Contains(got, "page=2") {
		t.Errorf("PageURL(2) = %q", got)
	}
}
