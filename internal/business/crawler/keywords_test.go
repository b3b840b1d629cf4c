package crawler

import "testing"

func TestListingTypeFromText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"monthly", "monthly"},
		{"Günlük kirayə", "daily"},
		{"Aylıq kirayə", "monthly"},
		{"kirayə verilir", "monthly"},
		{"icarəyə verilir", "monthly"},
		{"Mənzil satılır", "sale"},
		{"1200 AZN/ay", "monthly"},
		{"200 AZN/gün", "daily"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ListingTypeFromText(tt.in); got != tt.want {
			t.Errorf("ListingTypeFromText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPropertyTypeFromText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Yeni tikili", "new"},
		{"Köhnə tikili", "old"},
		{"Həyət evi / Bağ evi", "house"},
		{"Villa", "villa"},
		{"Ofis", "office"},
		{"Obyekt", "commercial"},
		{"Torpaq sahəsi", "land"},
		{"Qaraj", "garage"},
		{"Bina evi", "apartment"},
		{"3 otaqlı mənzil", "apartment"},
		{"naməlum", ""},
	}
	for _, tt := range tests {
		if got := PropertyTypeFromText(tt.in); got != tt.want {
			t.Errorf("PropertyTypeFromText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContactTypeFromText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mülkiyyətçi", "owner"},
		{"Əmlakın sahibi", "owner"},
		{"vasitəçi (agent)", "agent"},
		{"rieltor", "agent"},
		{"makler", "agent"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ContactTypeFromText(tt.in); got != tt.want {
			t.Errorf("ContactTypeFromText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRepairFromText(t *testing.T) {
	if !RepairFromText("Təmirli mənzil") {
		t.Error("təmirli should read as renovated")
	}
	if RepairFromText("Təmirsiz") {
		t.Error("təmirsiz must not read as renovated")
	}
	if RepairFromText("") {
		t.Error("empty must not read as renovated")
	}
}

func TestDistrictFromText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Yasamal r., İnşaatçılar m.", "Yasamal"},
		{"Xəzər r.", "Xəzər"},
		{"küçə adı, heç bir rayon yoxdur", ""},
	}
	for _, tt := range tests {
		if got := DistrictFromText(tt.in); got != tt.want {
			t.Errorf("DistrictFromText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
