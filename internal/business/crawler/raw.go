package crawler

// RawListing carries field values as scraped, before extraction and
// validation. HTML parsers fill it with selector text; JSON parsers format
// their typed values into it so every source goes through the same
// normalization path.
type RawListing struct {
	ListingID     string
	SourceWebsite string
	SourceURL     string

	Title        string
	Price        string
	Currency     string
	Rooms        string
	Area         string
	Floor        string // "3/9" or a bare floor number
	District     string
	MetroStation string
	Address      string
	Location     string
	Latitude     string
	Longitude    string
	ListingType  string // raw label: "Günlük", "satılır", or already canonical
	PropertyType string
	ContactType  string
	ContactPhone string
	Views        string
	Repair       string // raw repair label ("Təmirli")
	Description  string
	Date         string

	Amenities []string
	Photos    []string

	// LenientRooms switches room parsing to the zero-sentinel variant used
	// by sites that reuse the rooms cell for lot dimensions.
	LenientRooms bool
}
