package crawler

import "testing"

func TestMatchMetroStation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nərimanov", "Nərimanov"},
		{"Nerimanov m.", "Nərimanov"},
		{"nəsimi metrosu", "Nəsimi"},
		{"İnşaatçılar metro", "İnşaatçılar"},
		{"Elmler Akademiyasi", "Elmlər Akademiyası"},
		{"28 May", "28 May"},
		{"Yanvar m.", "20 Yanvar"},   // short form of "20 Yanvar"
		{"Noyabr metro", "8 Noyabr"}, // short form of "8 Noyabr"
		{"Yasamal rayonu", ""}, // a district, not a station
		{"", ""},
	}
	for _, tt := range tests {
		if got := MatchMetroStation(tt.in); got != tt.want {
			t.Errorf("MatchMetroStation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchMetroStationTypo(t *testing.T) {
	// One dropped letter still clears the similarity threshold.
	if got := MatchMetroStation("Koroglu"); got != "Koroğlu" {
		t.Errorf("MatchMetroStation(Koroglu) = %q", got)
	}
	if got := MatchMetroStation("Qara Qaraev"); got != "Qara Qarayev" {
		t.Errorf("MatchMetroStation(Qara Qaraev) = %q", got)
	}
}
