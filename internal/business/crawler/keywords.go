package crawler

import (
	"regexp"
	"strings"

	"github.com/emlakradar/api/pkg/model"
)

// ListingTypeFromText maps Azerbaijani rent/sale wording onto the canonical
// listing types. Daily wins over monthly when both appear ("günlük kirayə").
func ListingTypeFromText(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case s == model.ListingTypeSale || s == model.ListingTypeMonthly || s == model.ListingTypeDaily:
		return s
	case strings.Contains(s, "günlük"), strings.Contains(s, "gunluk"), strings.Contains(s, "/gün"), strings.Contains(s, "/gun"):
		return model.ListingTypeDaily
	case strings.Contains(s, "aylıq"), strings.Contains(s, "ayliq"), strings.Contains(s, "/ay"),
		strings.Contains(s, "kirayə"), strings.Contains(s, "kiraye"),
		strings.Contains(s, "icarə"), strings.Contains(s, "icare"):
		return model.ListingTypeMonthly
	case strings.Contains(s, "satılır"), strings.Contains(s, "satilir"), strings.Contains(s, "satış"), strings.Contains(s, "satis"):
		return model.ListingTypeSale
	default:
		return ""
	}
}

// PropertyTypeFromText maps Azerbaijani property wording onto canonical
// property types. Unrecognized input yields an empty string.
func PropertyTypeFromText(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case s == "new" || s == "old" || s == "house" || s == "villa" || s == "office" ||
		s == "commercial" || s == "land" || s == "garage" || s == "apartment":
		return s
	case strings.Contains(s, "yeni tikili"):
		return "new"
	case strings.Contains(s, "köhnə tikili"), strings.Contains(s, "kohne tikili"):
		return "old"
	case strings.Contains(s, "villa"):
		return "villa"
	case strings.Contains(s, "həyət evi"), strings.Contains(s, "heyet evi"), strings.Contains(s, "bağ evi"), strings.Contains(s, "bag evi"):
		return "house"
	case strings.Contains(s, "ofis"):
		return "office"
	case strings.Contains(s, "obyekt"):
		return "commercial"
	case strings.Contains(s, "torpaq"):
		return "land"
	case strings.Contains(s, "qaraj"):
		return "garage"
	case strings.Contains(s, "bina evi"), strings.Contains(s, "mənzil"), strings.Contains(s, "menzil"):
		return "apartment"
	default:
		return ""
	}
}

// ContactTypeFromText distinguishes owners from intermediaries.
func ContactTypeFromText(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case s == model.ContactOwner || s == model.ContactAgent:
		return s
	case strings.Contains(s, "mülkiyyətçi"), strings.Contains(s, "mulkiyyetci"), strings.Contains(s, "sahibi"):
		return model.ContactOwner
	case strings.Contains(s, "vasitəçi"), strings.Contains(s, "vasiteci"),
		strings.Contains(s, "makler"), strings.Contains(s, "rieltor"), strings.Contains(s, "agent"):
		return model.ContactAgent
	default:
		return ""
	}
}

// RepairFromText reports whether the text declares the property renovated.
// "Təmirsiz" (without repair) must not match.
func RepairFromText(raw string) bool {
	s := strings.ToLower(raw)
	if strings.Contains(s, "təmirsiz") || strings.Contains(s, "temirsiz") {
		return false
	}
	return strings.Contains(s, "təmirli") || strings.Contains(s, "temirli")
}

var districtRe = regexp.MustCompile(`([\p{L}]+(?:\s[\p{L}]+)?)\s+r\.`)

// DistrictFromText pulls a district name out of free-form location text,
// matching the "Yasamal r." convention used across the sites.
func DistrictFromText(raw string) string {
	m := districtRe.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
