package crawler

import (
	"errors"
	"strings"
	"time"

	"github.com/emlakradar/api/pkg/model"
	"github.com/emlakradar/api/pkg/util"
)

// ErrMissingKey is returned when a raw listing lacks its natural key.
var ErrMissingKey = errors.New("listing id and source website are required")

// Sources whose coordinates are only trusted inside the Azerbaijan bounding
// box; they are known to emit map-widget defaults for unlocated listings.
var bboxCheckedSources = map[string]bool{
	"emlak.az":   true,
	"ipoteka.az": true,
}

// Normalize converts a scraped RawListing into a validated model.Listing.
// Extraction is best-effort: invalid optional fields become nil, never a
// zero placeholder. Only a missing natural key fails the record.
func Normalize(raw RawListing, now time.Time) (model.Listing, error) {
	listingID := strings.TrimSpace(raw.ListingID)
	source := Truncate(raw.SourceWebsite, MaxSourceLen)
	if listingID == "" || source == "" {
		return model.Listing{}, ErrMissingKey
	}

	l := model.Listing{
		ListingID:     listingID,
		SourceWebsite: source,
		Title:         Truncate(raw.Title, MaxTitleLen),
		SourceURL:     strings.TrimSpace(raw.SourceURL),
		District:      Truncate(raw.District, MaxDistrictLen),
		Address:       strings.TrimSpace(raw.Address),
		Location:      strings.TrimSpace(raw.Location),
		Description:   strings.TrimSpace(raw.Description),
		ContactPhone:  CleanPhone(raw.ContactPhone),
		Amenities:     cleanStrings(raw.Amenities),
		Photos:        cleanStrings(raw.Photos),
	}

	l.ListingType = ListingTypeFromText(raw.ListingType)
	if l.ListingType == "" {
		// Fall back to wording in the title before defaulting to sale.
		l.ListingType = ListingTypeFromText(raw.Title)
	}
	if l.ListingType == "" {
		l.ListingType = model.ListingTypeSale
	}

	l.PropertyType = Truncate(PropertyTypeFromText(raw.PropertyType), MaxTypeLen)
	l.ContactType = Truncate(ContactTypeFromText(raw.ContactType), MaxTypeLen)

	l.Price = ParsePrice(raw.Price)
	l.Currency = Truncate(strings.ToUpper(strings.TrimSpace(raw.Currency)), MaxCurrencyLen)
	if l.Currency == "" {
		l.Currency = "AZN"
	}

	if raw.LenientRooms {
		l.Rooms = ParseRoomsLenient(raw.Rooms)
	} else {
		l.Rooms = ParseRooms(raw.Rooms)
	}
	l.Area = ParseArea(raw.Area)
	l.Floor, l.TotalFloors = ParseFloorPair(raw.Floor)
	l.ViewsCount = ParseViews(raw.Views)

	l.MetroStation = Truncate(MatchMetroStation(raw.MetroStation), MaxMetroLen)

	lat, lon := ParseCoordinates(raw.Latitude, raw.Longitude)
	if lat != nil && bboxCheckedSources[source] && !WithinAzerbaijan(*lat, *lon) {
		lat, lon = nil, nil
	}
	l.Latitude, l.Longitude = lat, lon

	l.HasRepair = RepairFromText(raw.Repair) || containsRepair(l.Amenities)
	l.ListingDate = ParseListingDate(raw.Date, now)

	l.Checksum = util.ListingChecksum(l.Price, l.SourceURL, l.District)
	return l, nil
}

func containsRepair(amenities []string) bool {
	for _, a := range amenities {
		if RepairFromText(a) {
			return true
		}
	}
	return false
}

// cleanStrings never returns nil; the stores persist empty lists, not NULL.
func cleanStrings(in []string) []string {
	out := []string{}
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
