// File: internal/taxonomy/regions.go
package taxonomy

// Region codes are stable identifiers; listing documents may store either
// the code or the formatted display name, so every comparison goes through
// RegionCode first.

const (
	RegionAnywhere = "Kdekoliv"
	RegionWholeCZ  = "CelaCeskaRepublika"
	RegionWholeSK  = "CelaSlovenskaRepublika"
)

var regionNames = map[string]string{
	RegionAnywhere: "Kdekoliv",
	RegionWholeCZ:  "Celá Česká republika",
	RegionWholeSK:  "Celá Slovenská republika",

	"Praha":           "Hlavní město Praha",
	"Stredocesky":     "Středočeský kraj",
	"Jihocesky":       "Jihočeský kraj",
	"Plzensky":        "Plzeňský kraj",
	"Karlovarsky":     "Karlovarský kraj",
	"Ustecky":         "Ústecký kraj",
	"Liberecky":       "Liberecký kraj",
	"Kralovehradecky": "Královéhradecký kraj",
	"Pardubicky":      "Pardubický kraj",
	"Vysocina":        "Kraj Vysočina",
	"Jihomoravsky":    "Jihomoravský kraj",
	"Olomoucky":       "Olomoucký kraj",
	"Zlinsky":         "Zlínský kraj",
	"Moravskoslezsky": "Moravskoslezský kraj",

	"Bratislavsky":    "Bratislavský kraj",
	"Trnavsky":        "Trnavský kraj",
	"Trenciansky":     "Trenčianský kraj",
	"Nitriansky":      "Nitriansky kraj",
	"Zilinsky":        "Žilinský kraj",
	"Banskobystricky": "Banskobystrický kraj",
	"Presovsky":       "Prešovský kraj",
	"Kosicky":         "Košický kraj",
}

// regionOrder keeps the wildcard entries first, then the Czech regions,
// then the Slovak ones, the way region pickers show them.
var regionOrder = []string{
	RegionAnywhere, RegionWholeCZ, RegionWholeSK,
	"Praha", "Stredocesky", "Jihocesky", "Plzensky", "Karlovarsky",
	"Ustecky", "Liberecky", "Kralovehradecky", "Pardubicky", "Vysocina",
	"Jihomoravsky", "Olomoucky", "Zlinsky", "Moravskoslezsky",
	"Bratislavsky", "Trnavsky", "Trenciansky", "Nitriansky", "Zilinsky",
	"Banskobystricky", "Presovsky", "Kosicky",
}

// Region pairs a canonical code with its display name.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Regions returns every selectable region in display order.
func Regions() []Region {
	out := make([]Region, 0, len(regionOrder))
	for _, code := range regionOrder {
		out = append(out, Region{Code: code, Name: regionNames[code]})
	}
	return out
}

// normalizedToCode maps the folded form of every code and display name to
// the canonical code. Built once at init.
var normalizedToCode = func() map[string]string {
	m := make(map[string]string, len(regionNames)*2)
	for code, name := range regionNames {
		m[Normalize(code)] = code
		m[Normalize(name)] = code
	}
	// The formatted Praha name carries the "hlavni mesto" prefix; plain
	// "praha" must resolve too.
	m["praha"] = "Praha"
	return m
}()

// RegionName returns the formatted display name for a region code or an
// already-formatted name. Unknown values pass through unchanged so old
// free-form locations still render.
func RegionName(input string) string {
	code := RegionCode(input)
	if code == "" {
		return input
	}
	return regionNames[code]
}

// RegionCode canonicalizes a region value (code or display name, with or
// without diacritics) to its code. Returns "" for unknown values.
func RegionCode(input string) string {
	if input == "" {
		return ""
	}
	if _, ok := regionNames[input]; ok {
		return input
	}
	return normalizedToCode[Normalize(input)]
}

// IsWildcardRegion reports whether code is one of the whole-country /
// anywhere values. A wildcard filter matches only listings that carry the
// same wildcard; it does not widen the search to every region.
func IsWildcardRegion(code string) bool {
	return code == RegionAnywhere || code == RegionWholeCZ || code == RegionWholeSK
}

// RegionsMatch reports whether a stored listing region satisfies a region
// filter. Both sides canonicalize to codes first; values that do not
// resolve to a known code fall back to a normalized string comparison.
func RegionsMatch(filter, stored string) bool {
	if filter == "" {
		return true
	}
	filterCode := RegionCode(filter)
	storedCode := RegionCode(stored)
	if filterCode != "" && storedCode != "" {
		return filterCode == storedCode
	}
	return Normalize(filter) == Normalize(stored)
}
