package util

import "testing"

func fptr(v float64) *float64 { return &v }

func TestListingChecksumDeterministic(t *testing.T) {
	a := ListingChecksum(fptr(85000), "https://bina.az/items/4421877", "Yasamal r.")
	b := ListingChecksum(fptr(85000), "https://bina.az/items/4421877", "Yasamal r.")
	if a != b {
		t.Fatalf("same inputs produced different checksums: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(a))
	}
}

func TestListingChecksumTrackedFields(t *testing.T) {
	base := ListingChecksum(fptr(85000), "https://bina.az/items/4421877", "Yasamal")

	if got := ListingChecksum(fptr(86000), "https://bina.az/items/4421877", "Yasamal"); got == base {
		t.Error("price change did not alter checksum")
	}
	if got := ListingChecksum(fptr(85000), "https://bina.az/items/9999999", "Yasamal"); got == base {
		t.Error("url change did not alter checksum")
	}
	if got := ListingChecksum(fptr(85000), "https://bina.az/items/4421877", "Nizami"); got == base {
		t.Error("district change did not alter checksum")
	}
	if got := ListingChecksum(nil, "https://bina.az/items/4421877", "Yasamal"); got == base {
		t.Error("missing price did not alter checksum")
	}
}

func TestListingChecksumDistrictFolding(t *testing.T) {
	cases := []string{"Yasamal", "yasamal", "Yasamal r.", " YASAMAL R. "}
	want := ListingChecksum(fptr(100), "u", cases[0])
	for _, d := range cases[1:] {
		if got := ListingChecksum(fptr(100), "u", d); got != want {
			t.Errorf("district %q not folded with %q", d, cases[0])
		}
	}

	// "r." is dropped anywhere in the string, not only at the end.
	mid := ListingChecksum(fptr(100), "u", "Nizami r. Bakı")
	if mid != ListingChecksum(fptr(100), "u", "nizami  bakı") {
		t.Error("mid-string r. marker not folded")
	}
}

func TestListingChecksumPriceRounding(t *testing.T) {
	// 100.004 and 100.0 render the same with two decimals.
	if ListingChecksum(fptr(100.004), "u", "d") != ListingChecksum(fptr(100.0), "u", "d") {
		t.Error("sub-cent price difference should not alter checksum")
	}
	if ListingChecksum(fptr(100.01), "u", "d") == ListingChecksum(fptr(100.0), "u", "d") {
		t.Error("cent-level price difference should alter checksum")
	}
}

func TestListingChecksumEmptyDistrictSentinel(t *testing.T) {
	// Empty and "r." only districts collapse to the same sentinel.
	if ListingChecksum(nil, "u", "") != ListingChecksum(nil, "u", " r. ") {
		t.Error("empty-equivalent districts should share a checksum")
	}
}
