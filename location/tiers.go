// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// countryQualifier is appended to broadened queries so the provider is not
// left guessing which national market a bare district name belongs to.
const countryQualifier = "Vietnam"

// QueryTier is one step of the fallback cascade: a pure transformation from
// the stored free-text address to a provider query. Tiers are attempted in
// order; each only runs when the previous one found nothing.
type QueryTier struct {
	Name  string
	Build func(rawAddress string) string
}

// QueryTiers returns the cascade in attempt order. Tier 4 (the fixed default
// coordinate) is not a query and lives in the resolver.
func QueryTiers() []QueryTier {
	return []QueryTier{
		{Name: "full_address", Build: fullAddressQuery},
		{Name: "broadened_address", Build: broadenedAddressQuery},
		{Name: "city_only", Build: cityOnlyQuery},
	}
}

func fullAddressQuery(rawAddress string) string {
	return strings.TrimSpace(rawAddress)
}

// broadenedAddressQuery keeps only the last two comma-separated segments of
// the address (or everything, when there are fewer) and appends the country
// qualifier. Street numbers and building names are the usual reason a full
// address misses, and they live at the front.
func broadenedAddressQuery(rawAddress string) string {
	segments := addressSegments(rawAddress)
	if len(segments) == 0 {
		return ""
	}

	if len(segments) > 2 {
		segments = segments[len(segments)-2:]
	}

	return strings.Join(segments, ", ") + ", " + countryQualifier
}

// cityOnlyQuery scans the segments, last first, for a known province or city
// name. Matching is diacritic-insensitive so "Đà Nẵng", "Da Nang" and
// "da nang" all hit the same entry. Without a known name, the last segment
// plus country is the best remaining guess.
func cityOnlyQuery(rawAddress string) string {
	segments := addressSegments(rawAddress)
	if len(segments) == 0 {
		return ""
	}

	for i := len(segments) - 1; i >= 0; i-- {
		folded := foldDiacritics(segments[i])
		for _, key := range provinceKeys {
			if strings.Contains(folded, key) {
				return provinceNames[key] + ", " + countryQualifier
			}
		}
	}

	return segments[len(segments)-1] + ", " + countryQualifier
}

func addressSegments(rawAddress string) []string {
	parts := strings.Split(rawAddress, ",")

	segments := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segments = append(segments, p)
		}
	}

	return segments
}

// provinceNames maps diacritic-folded, lowercased city/province names to the
// canonical query form. Keys cover the major job markets plus common aliases.
var provinceNames = map[string]string{
	"ha noi":        "Hanoi",
	"hanoi":         "Hanoi",
	"ho chi minh":   "Ho Chi Minh City",
	"hcmc":          "Ho Chi Minh City",
	"sai gon":       "Ho Chi Minh City",
	"saigon":        "Ho Chi Minh City",
	"thu duc":       "Thu Duc",
	"da nang":       "Da Nang",
	"hai phong":     "Hai Phong",
	"can tho":       "Can Tho",
	"hue":           "Hue",
	"nha trang":     "Nha Trang",
	"da lat":        "Da Lat",
	"vung tau":      "Vung Tau",
	"bien hoa":      "Bien Hoa",
	"quy nhon":      "Quy Nhon",
	"buon ma thuot": "Buon Ma Thuot",
	"thai nguyen":   "Thai Nguyen",
	"nam dinh":      "Nam Dinh",
	"thanh hoa":     "Thanh Hoa",
	"ha long":       "Ha Long",
	"phan thiet":    "Phan Thiet",
	"bac ninh":      "Bac Ninh",
	"hai duong":     "Hai Duong",
	"hung yen":      "Hung Yen",
	"my tho":        "My Tho",
	"rach gia":      "Rach Gia",
	"ca mau":        "Ca Mau",
	"pleiku":        "Pleiku",
	"vinh":          "Vinh",
	"ha tinh":       "Ha Tinh",
	"hoi an":        "Hoi An",
	"tay ninh":      "Tay Ninh",
	"thu dau mot":   "Thu Dau Mot",
	"long xuyen":    "Long Xuyen",
	"cam ranh":      "Cam Ranh",
	"bao loc":       "Bao Loc",
}

// provinceKeys orders the table longest-first so that "thu dau mot" wins over
// "dau" style partial overlaps, with alphabetical order as the tiebreak.
var provinceKeys = func() []string {
	keys := make([]string, 0, len(provinceNames))
	for k := range provinceNames {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}

		return keys[i] < keys[j]
	})

	return keys
}()

var diacriticFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// dReplacer handles the Vietnamese đ, which is a distinct letter rather than
// a combining mark and survives NFD stripping.
var dReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

// foldDiacritics lowercases s and strips Vietnamese diacritics.
func foldDiacritics(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		folded = s
	}

	return strings.ToLower(dReplacer.Replace(folded))
}
