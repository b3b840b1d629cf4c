package crawler

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 8, 15, 10, 30, 0, 0, time.UTC)

func TestParseListingDateLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"14.08.2025", time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)},
		{"14.08.2025 14:32", time.Date(2025, 8, 14, 14, 32, 0, 0, time.UTC)},
		{"2025-08-14", time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)},
		{"2025-08-14 09:15:00", time.Date(2025, 8, 14, 9, 15, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := ParseListingDate(tt.in, testNow)
		if got == nil || !got.Equal(tt.want) {
			t.Errorf("ParseListingDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseListingDateRelative(t *testing.T) {
	got := ParseListingDate("Bu gün 14:32", testNow)
	want := time.Date(2025, 8, 15, 14, 32, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("bu gün = %v, want %v", got, want)
	}

	got = ParseListingDate("Dünən", testNow)
	want = time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("dünən = %v, want %v", got, want)
	}
}

func TestParseListingDateSpelledMonth(t *testing.T) {
	got := ParseListingDate("14 avqust 2025", testNow)
	want := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("spelled month = %v, want %v", got, want)
	}

	// Unique prefix abbreviation resolves, ambiguous one does not.
	got = ParseListingDate("3 sen 2025", testNow)
	want = time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("abbreviated month = %v, want %v", got, want)
	}
	if got := ParseListingDate("3 iyu 2025", testNow); got != nil {
		t.Errorf("ambiguous iyu resolved to %v, want nil", got)
	}
}

func TestParseListingDateEpoch(t *testing.T) {
	got := ParseListingDate("1755165600", testNow)
	if got == nil || got.Year() != 2025 {
		t.Errorf("epoch = %v", got)
	}
	// Plain small numbers are not epochs.
	if got := ParseListingDate("42", testNow); got != nil {
		t.Errorf("small number parsed as date: %v", got)
	}
}

func TestParseListingDateGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "sabah", "99.99.9999"} {
		if got := ParseListingDate(in, testNow); got != nil {
			t.Errorf("ParseListingDate(%q) = %v, want nil", in, got)
		}
	}
}
