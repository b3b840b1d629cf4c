package crawler

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"85 000 AZN", f(85000)},
		{"1.200 ₼", f(1.2)},
		{"1200", f(1200)},
		{"  ", nil},
		{"heç nə", nil},
		{"0", nil},
		{"12345678901", nil}, // over the sanity cap
	}
	for _, tt := range tests {
		got := ParsePrice(tt.in)
		if !eqf(got, tt.want) {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, deref(got), deref(tt.want))
		}
	}
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"85 m²", f(85)},
		{"85.5 m2", f(85.5)},
		{"120,5 m²", f(120.5)},
		{"6 sot", f(600)},
		{"4 m²", nil},     // below the floor
		{"20000 m²", nil}, // above the cap
		{"", nil},
	}
	for _, tt := range tests {
		got := ParseArea(tt.in)
		if !eqf(got, tt.want) {
			t.Errorf("ParseArea(%q) = %v, want %v", tt.in, deref(got), deref(tt.want))
		}
	}
}

func TestParseRooms(t *testing.T) {
	if got := ParseRooms("3 otaqlı"); got == nil || *got != 3 {
		t.Errorf("ParseRooms(3 otaqlı) = %v", got)
	}
	if got := ParseRooms("0"); got != nil {
		t.Errorf("ParseRooms(0) = %v, want nil", *got)
	}
	if got := ParseRooms("60 otaq"); got != nil {
		t.Errorf("ParseRooms(60) = %v, want nil", *got)
	}
	if got := ParseRooms(""); got != nil {
		t.Errorf("ParseRooms(empty) = %v, want nil", *got)
	}
}

func TestParseRoomsLenient(t *testing.T) {
	if got := ParseRoomsLenient("4 otaq"); got == nil || *got != 4 {
		t.Errorf("lenient rooms(4) = %v", got)
	}
	// Lot dimensions leaking into the rooms cell collapse to the sentinel.
	if got := ParseRoomsLenient("40"); got == nil || *got != 0 {
		t.Errorf("lenient rooms(40) = %v, want 0 sentinel", got)
	}
	if got := ParseRoomsLenient(""); got != nil {
		t.Errorf("lenient rooms(empty) = %v, want nil", *got)
	}
}

func TestParseFloorPair(t *testing.T) {
	floor, total := ParseFloorPair("3/9")
	if floor == nil || *floor != 3 || total == nil || *total != 9 {
		t.Errorf("ParseFloorPair(3/9) = %v, %v", deref2(floor), deref2(total))
	}

	// A half pair or an inverted pair is useless; both sides are dropped.
	for _, raw := range []string{"5", "/16", "9/3", "999/9", "3/999"} {
		if floor, total = ParseFloorPair(raw); floor != nil || total != nil {
			t.Errorf("ParseFloorPair(%q) = %v, %v, want nil, nil", raw, deref2(floor), deref2(total))
		}
	}
}

func TestParseCoordinates(t *testing.T) {
	lat, lon := ParseCoordinates("40.4093", "49.8671")
	if lat == nil || lon == nil || *lat != 40.4093 || *lon != 49.8671 {
		t.Fatalf("ParseCoordinates(baku) = %v, %v", deref(lat), deref(lon))
	}

	// A lone coordinate is useless; the pair is dropped as a whole.
	if lat, lon := ParseCoordinates("40.4", ""); lat != nil || lon != nil {
		t.Errorf("half pair kept: %v, %v", deref(lat), deref(lon))
	}
	if lat, lon := ParseCoordinates("0", "0"); lat != nil || lon != nil {
		t.Errorf("null island kept: %v, %v", deref(lat), deref(lon))
	}
	if lat, lon := ParseCoordinates("95", "49"); lat != nil || lon != nil {
		t.Errorf("out of range kept: %v, %v", deref(lat), deref(lon))
	}
}

func TestWithinAzerbaijan(t *testing.T) {
	if !WithinAzerbaijan(40.4093, 49.8671) {
		t.Error("Baku should be inside the bounding box")
	}
	if WithinAzerbaijan(55.75, 37.61) {
		t.Error("Moscow should be outside the bounding box")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("  salam  ", 10); got != "salam" {
		t.Errorf("Truncate trim = %q", got)
	}
	// Rune-safe on multibyte text.
	if got := Truncate("mənzil satılır", 6); got != "mənzil" {
		t.Errorf("Truncate(mənzil satılır, 6) = %q", got)
	}
}

func TestCleanPhone(t *testing.T) {
	if got := CleanPhone("(+994) 55 555-39-08"); got != "+994555553908" {
		t.Errorf("CleanPhone = %q", got)
	}
}

func f(v float64) *float64 { return &v }

func eqf(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func deref2(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
