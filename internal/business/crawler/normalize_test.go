package crawler

import (
	"errors"
	"strings"
	"testing"

	"github.com/emlakradar/api/pkg/util"
)

func TestNormalizeFullRecord(t *testing.T) {
	raw := RawListing{
		ListingID:     "12345",
		SourceWebsite: "arenda.az",
		SourceURL:     "https://arenda.az/elan/12345",
		Title:         "3 otaqlı mənzil, Yasamal r.",
		Price:         "1 200 AZN",
		Rooms:         "3 otaqlı",
		Area:          "85 m²",
		Floor:         "4/9",
		District:      "Yasamal",
		MetroStation:  "Nerimanov m.",
		Latitude:      "40.4093",
		Longitude:     "49.8671",
		ListingType:   "Aylıq",
		PropertyType:  "Yeni tikili",
		ContactType:   "vasitəçi",
		ContactPhone:  "(+994) 55 555-39-08",
		Views:         "321 baxış",
		Repair:        "Təmirli",
		Date:          "14.08.2025",
	}

	l, err := Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if l.ListingType != "monthly" {
		t.Errorf("listing type = %q", l.ListingType)
	}
	if l.PropertyType != "new" {
		t.Errorf("property type = %q", l.PropertyType)
	}
	if l.Price == nil || *l.Price != 1200 {
		t.Errorf("price = %v", deref(l.Price))
	}
	if l.Currency != "AZN" {
		t.Errorf("currency = %q", l.Currency)
	}
	if l.Rooms == nil || *l.Rooms != 3 {
		t.Errorf("rooms = %v", deref2(l.Rooms))
	}
	if l.Area == nil || *l.Area != 85 {
		t.Errorf("area = %v", deref(l.Area))
	}
	if l.Floor == nil || *l.Floor != 4 || l.TotalFloors == nil || *l.TotalFloors != 9 {
		t.Errorf("floor = %v/%v", deref2(l.Floor), deref2(l.TotalFloors))
	}
	if l.MetroStation != "Nərimanov" {
		t.Errorf("metro = %q", l.MetroStation)
	}
	if l.Latitude == nil || *l.Latitude != 40.4093 {
		t.Errorf("latitude = %v", deref(l.Latitude))
	}
	if l.ContactType != "agent" {
		t.Errorf("contact type = %q", l.ContactType)
	}
	if l.ContactPhone != "+994555553908" {
		t.Errorf("phone = %q", l.ContactPhone)
	}
	if l.ViewsCount == nil || *l.ViewsCount != 321 {
		t.Errorf("views = %v", deref2(l.ViewsCount))
	}
	if !l.HasRepair {
		t.Error("has repair = false")
	}
	if l.ListingDate == nil || l.ListingDate.Day() != 14 {
		t.Errorf("listing date = %v", l.ListingDate)
	}
	wantSum := util.ListingChecksum(l.Price, l.SourceURL, l.District)
	if l.Checksum != wantSum {
		t.Errorf("checksum = %q, want %q", l.Checksum, wantSum)
	}
}

func TestNormalizeMissingKey(t *testing.T) {
	_, err := Normalize(RawListing{SourceWebsite: "arenda.az"}, testNow)
	if !errors.Is(err, ErrMissingKey) {
		t.Errorf("missing id: err = %v", err)
	}
	_, err = Normalize(RawListing{ListingID: "1"}, testNow)
	if !errors.Is(err, ErrMissingKey) {
		t.Errorf("missing source: err = %v", err)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	l, err := Normalize(RawListing{ListingID: "1", SourceWebsite: "tap.az"}, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.ListingType != "sale" {
		t.Errorf("default listing type = %q, want sale", l.ListingType)
	}
	if l.Currency != "AZN" {
		t.Errorf("default currency = %q", l.Currency)
	}
	if l.Price != nil || l.Rooms != nil || l.Area != nil {
		t.Error("absent numeric fields should stay nil")
	}
	// Empty lists must persist as [], never NULL.
	if l.Amenities == nil || len(l.Amenities) != 0 {
		t.Errorf("amenities = %#v, want empty non-nil slice", l.Amenities)
	}
	if l.Photos == nil || len(l.Photos) != 0 {
		t.Errorf("photos = %#v, want empty non-nil slice", l.Photos)
	}
}

func TestNormalizeListingTypeFromTitle(t *testing.T) {
	l, err := Normalize(RawListing{
		ListingID:     "1",
		SourceWebsite: "unvan.az",
		Title:         "Mənzil günlük kirayə verilir",
	}, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.ListingType != "daily" {
		t.Errorf("listing type from title = %q, want daily", l.ListingType)
	}
}

func TestNormalizeBoundingBox(t *testing.T) {
	// emlak.az coordinates outside the country are dropped.
	l, err := Normalize(RawListing{
		ListingID:     "1",
		SourceWebsite: "emlak.az",
		Latitude:      "55.75",
		Longitude:     "37.61",
	}, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.Latitude != nil || l.Longitude != nil {
		t.Errorf("out-of-country coords kept: %v, %v", deref(l.Latitude), deref(l.Longitude))
	}

	// The same coordinates from a source without the known map-widget bug
	// are stored as-is.
	l, err = Normalize(RawListing{
		ListingID:     "1",
		SourceWebsite: "arenda.az",
		Latitude:      "55.75",
		Longitude:     "37.61",
	}, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.Latitude == nil {
		t.Error("arenda coords dropped")
	}
}

func TestNormalizeLenientRooms(t *testing.T) {
	l, err := Normalize(RawListing{
		ListingID:     "1",
		SourceWebsite: "yeniemlak.az",
		Rooms:         "40",
		LenientRooms:  true,
	}, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.Rooms == nil || *l.Rooms != 0 {
		t.Errorf("lenient rooms = %v, want 0 sentinel", deref2(l.Rooms))
	}
}

func TestNormalizeTruncation(t *testing.T) {
	l, err := Normalize(RawListing{
		ListingID:     "1",
		SourceWebsite: "arenda.az",
		Title:         strings.Repeat("a", 300),
		District:      strings.Repeat("b", 150),
	}, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(l.Title) != MaxTitleLen {
		t.Errorf("title length = %d", len(l.Title))
	}
	if len(l.District) != MaxDistrictLen {
		t.Errorf("district length = %d", len(l.District))
	}
}

func TestNormalizeRepairFromAmenities(t *testing.T) {
	l, err := Normalize(RawListing{
		ListingID:     "1",
		SourceWebsite: "bina.az",
		Amenities:     []string{"Kombi", "Təmirli"},
	}, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !l.HasRepair {
		t.Error("repair amenity not detected")
	}
}
