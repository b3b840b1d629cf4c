package crawler

import "strings"

// Baku metro stations. Scraped metro text is matched against this list so
// the database never accumulates spelling variants of the same station.
var metroStations = []string{
	"20 Yanvar", "28 May", "8 Noyabr", "Azadlıq prospekti", "Avtovağzal",
	"Bakmil", "Cəfər Cabbarlı", "Dərnəgül", "Elmlər Akademiyası", "Əhmədli",
	"Gənclik", "Həzi Aslanov", "Xalqlar dostluğu", "İçərişəhər", "İnşaatçılar",
	"Koroğlu", "Qara Qarayev", "Memar Əcəmi", "Nəsimi", "Nərimanov",
	"Neftçilər", "Nizami", "Sahil", "Xətai", "Xocəsən", "Ulduz",
}

// metroMatchThreshold is the minimum similarity ratio for a fuzzy station
// match. Below it the scraped text is considered noise.
const metroMatchThreshold = 0.7

var azFold = strings.NewReplacer(
	"ə", "e", "Ə", "e",
	"ı", "i", "İ", "i", "I", "i",
	"ö", "o", "Ö", "o",
	"ü", "u", "Ü", "u",
	"ç", "c", "Ç", "c",
	"ş", "s", "Ş", "s",
	"ğ", "g", "Ğ", "g",
)

// MatchMetroStation resolves scraped metro text ("Nerimanov m.", "nəsimi
// metrosu") to a canonical station name, or "" when nothing clears the
// similarity threshold.
func MatchMetroStation(raw string) string {
	needle := foldMetro(raw)
	if needle == "" {
		return ""
	}
	best := ""
	bestScore := 0.0
	for _, station := range metroStations {
		folded := foldMetro(station)
		if folded == needle || strings.Contains(needle, folded) {
			return station
		}
		// Short forms like "Yanvar" for "20 Yanvar". The length guard
		// keeps two-letter fragments from claiming a station.
		if len([]rune(needle)) >= 4 && strings.Contains(folded, needle) {
			return station
		}
		if score := similarity(needle, folded); score > bestScore {
			best, bestScore = station, score
		}
	}
	if bestScore >= metroMatchThreshold {
		return best
	}
	return ""
}

// foldMetro lowercases, strips diacritics and drops the "m."/"metro"
// decorations the sites append to station names.
func foldMetro(raw string) string {
	s := strings.ToLower(azFold.Replace(strings.TrimSpace(raw)))
	for _, suffix := range []string{"metrosu", "metro st.", "metro", "m/st", "m."} {
		s = strings.TrimSuffix(strings.TrimSpace(s), suffix)
	}
	return strings.TrimSpace(s)
}

// similarity is a normalized Levenshtein ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	dist := levenshtein(ra, rb)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	return 1 - float64(dist)/float64(longer)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
