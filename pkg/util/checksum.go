package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ListingChecksum creates a SHA-256 hash over the fields that matter for
// change detection: price, source URL and district. Listings that differ
// only in other fields (views, photos, description) share a checksum, so
// repeated crawls of an unchanged listing stay cheap.
func ListingChecksum(price *float64, sourceURL, district string) string {
	builder := strings.Builder{}
	if price != nil {
		builder.WriteString(fmt.Sprintf("%.2f", *price))
	} else {
		builder.WriteString("none")
	}
	builder.WriteString("|")
	builder.WriteString(sourceURL)
	builder.WriteString("|")
	builder.WriteString(normalizeDistrict(district))
	return hashString(builder.String())
}

// normalizeDistrict folds cosmetic district variations ("Yasamal r.",
// "yasamal") into one token so they do not produce spurious updates.
func normalizeDistrict(district string) string {
	d := strings.ToLower(strings.TrimSpace(district))
	d = strings.ReplaceAll(d, "r.", "")
	d = strings.TrimSpace(d)
	if d == "" {
		return "none"
	}
	return d
}

func hashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
