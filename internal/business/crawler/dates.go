package crawler

import (
	"strconv"
	"strings"
	"time"
)

var azMonths = map[string]time.Month{
	"yanvar": time.January, "fevral": time.February, "mart": time.March,
	"aprel": time.April, "may": time.May, "iyun": time.June,
	"iyul": time.July, "avqust": time.August, "sentyabr": time.September,
	"oktyabr": time.October, "noyabr": time.November, "dekabr": time.December,
}

var dateLayouts = []string{
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseListingDate handles the date formats seen across the sites: dotted
// dates with optional time, ISO timestamps, Unix epochs, relative markers
// ("Bu gün", "Dünən") and spelled-out Azerbaijani months. Returns nil when
// nothing parses.
func ParseListingDate(raw string, now time.Time) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	lower := strings.ToLower(s)
	if strings.Contains(lower, "bu gün") || strings.Contains(lower, "bugün") || strings.Contains(lower, "bu gun") {
		t := dayOf(now)
		return withClock(t, lower)
	}
	if strings.Contains(lower, "dünən") || strings.Contains(lower, "dunen") {
		t := dayOf(now).AddDate(0, 0, -1)
		return withClock(t, lower)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	// "14 avqust 2025"
	if t := parseSpelledDate(lower); t != nil {
		return t
	}

	// Unix epoch seconds (lalafo feed).
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 1e9 && n < 1e11 {
		t := time.Unix(n, 0).UTC()
		return &t
	}
	return nil
}

func parseSpelledDate(lower string) *time.Time {
	fields := strings.Fields(lower)
	if len(fields) < 3 {
		return nil
	}
	day, err := strconv.Atoi(strings.TrimSuffix(fields[0], ","))
	if err != nil || day < 1 || day > 31 {
		return nil
	}
	month, ok := azMonths[fields[1]]
	if !ok {
		// Some sites abbreviate month names ("avq", "sen"). Ambiguous
		// prefixes ("iyu") stay unresolved.
		matches := 0
		for name, m := range azMonths {
			if len(fields[1]) >= 3 && strings.HasPrefix(name, fields[1]) {
				month = m
				matches++
			}
		}
		ok = matches == 1
	}
	if !ok {
		return nil
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil || year < 2000 || year > 2100 {
		return nil
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// withClock keeps the HH:MM suffix of relative dates ("Bu gün 14:32").
func withClock(day time.Time, lower string) *time.Time {
	for _, f := range strings.Fields(lower) {
		if t, err := time.Parse("15:04", f); err == nil {
			day = day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
			break
		}
	}
	return &day
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
