package crawler

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Physical bounds for extracted numeric fields. Values outside these ranges
// are scraping artifacts (concatenated digits, phone numbers in the wrong
// cell) and are dropped rather than stored.
const (
	maxPrice      = 1e9
	minArea       = 5
	maxArea       = 10000
	maxRooms      = 50
	maxFloor      = 200
	sotToSQM      = 100 // 1 sotka = 100 m²
	coordBoundLat = 90
	coordBoundLon = 180
)

// Text length limits matching the listings schema.
const (
	MaxTitleLen    = 200
	MaxDistrictLen = 100
	MaxMetroLen    = 100
	MaxSourceLen   = 100
	MaxTypeLen     = 50
	MaxPhoneLen    = 50
	MaxCurrencyLen = 10
)

var numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParsePrice extracts a price from free-form text ("85 000 AZN", "1.200 ₼/ay").
// Returns nil when no sane price is present.
func ParsePrice(raw string) *float64 {
	clean := make([]rune, 0, len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			clean = append(clean, r)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	v, err := strconv.ParseFloat(string(clean), 64)
	if err != nil || v <= 0 || v >= maxPrice {
		return nil
	}
	v = round2(v)
	return &v
}

// ParseArea extracts an area in square meters. Lot sizes quoted in sotka
// ("6 sot") are converted to m². Out-of-range values are dropped.
func ParseArea(raw string) *float64 {
	m := numberRe.FindString(raw)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return nil
	}
	if strings.Contains(strings.ToLower(raw), "sot") {
		v *= sotToSQM
	}
	if v < minArea || v > maxArea {
		return nil
	}
	v = round2(v)
	return &v
}

// ParseRooms extracts a room count in 1..50.
func ParseRooms(raw string) *int {
	d := leadingDigits(raw)
	if d == "" {
		return nil
	}
	n, err := strconv.Atoi(d)
	if err != nil || n < 1 || n > maxRooms {
		return nil
	}
	return &n
}

// ParseRoomsLenient behaves like ParseRooms but collapses counts above 20 to
// a zero sentinel instead of dropping the listing field. Sites that reuse the
// rooms cell for lot dimensions produce such values.
func ParseRoomsLenient(raw string) *int {
	d := leadingDigits(raw)
	if d == "" {
		return nil
	}
	n, err := strconv.Atoi(d)
	if err != nil || n < 1 {
		return nil
	}
	if n > 20 {
		n = 0
	}
	return &n
}

// ParseFloorPair parses "3/9" style floor markers. Both sides must parse,
// each in 0..200 with floor <= total, or the pair is dropped as a whole.
func ParseFloorPair(raw string) (floor, total *int) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return nil, nil
	}
	floor = parseFloorValue(parts[0])
	total = parseFloorValue(parts[1])
	if floor == nil || total == nil || *floor > *total {
		return nil, nil
	}
	return floor, total
}

func parseFloorValue(raw string) *int {
	d := leadingDigits(raw)
	if d == "" {
		return nil
	}
	n, err := strconv.Atoi(d)
	if err != nil || n < 0 || n > maxFloor {
		return nil
	}
	return &n
}

// ParseViews extracts a non-negative view counter.
func ParseViews(raw string) *int {
	d := leadingDigits(raw)
	if d == "" {
		return nil
	}
	n, err := strconv.Atoi(d)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// ParseCoordinates validates a latitude/longitude pair. Both must parse and
// be in range or the pair is dropped as a whole; a lone coordinate is
// useless for mapping. Values are kept to 8 decimal places.
func ParseCoordinates(latRaw, lonRaw string) (*float64, *float64) {
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	if lat < -coordBoundLat || lat > coordBoundLat || lon < -coordBoundLon || lon > coordBoundLon {
		return nil, nil
	}
	if lat == 0 && lon == 0 {
		return nil, nil
	}
	lat = round8(lat)
	lon = round8(lon)
	return &lat, &lon
}

// WithinAzerbaijan reports whether the coordinate falls inside the country
// bounding box. Sources known to emit junk coordinates are checked against it.
func WithinAzerbaijan(lat, lon float64) bool {
	return lat >= 38.0 && lat <= 42.0 && lon >= 44.5 && lon <= 51.0
}

// Truncate shortens s to at most max runes.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// CleanPhone strips formatting noise from a phone number, keeping digits,
// plus signs and separators meaningful to a dialer.
func CleanPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return Truncate(b.String(), MaxPhoneLen)
}

// leadingDigits returns the first run of digits in raw.
func leadingDigits(raw string) string {
	start := -1
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return raw[start:i]
		}
	}
	if start < 0 {
		return ""
	}
	return raw[start:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
