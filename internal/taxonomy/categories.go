// File: internal/taxonomy/categories.go
package taxonomy

import "github.com/gosimple/slug"

// Category is a static catalog category. The set is fixed in code, there
// is no admin surface for editing it.
type Category struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

var categoryNames = map[string]string{
	"home_craftsmen":       "Domácnost & Řemeslníci",
	"auto_moto":            "Auto & Moto",
	"garden_exterior":      "Zahrada & Exteriér",
	"education_tutoring":   "Vzdělávání & Doučování",
	"it_technology":        "IT & technologie",
	"health_personal_care": "Zdraví a Osobní péče",
	"gastronomy_catering":  "Gastronomie & Catering",
	"events_entertainment": "Události & Zábava",
	"personal_small_jobs":  "Osobní služby & drobné práce",
	"auto_moto_transport":  "Auto - moto doprava",
	"hobby_creative":       "Hobby & kreativní služby",
	"law_finance_admin":    "Právo & finance & administrativa",
	"pets":                 "Domácí zvířata",
	"specialized_custom":   "Specializované služby / na přání",
}

// categoryOrder fixes the presentation order of the categories.
var categoryOrder = []string{
	"home_craftsmen",
	"auto_moto",
	"garden_exterior",
	"education_tutoring",
	"it_technology",
	"health_personal_care",
	"gastronomy_catering",
	"events_entertainment",
	"personal_small_jobs",
	"auto_moto_transport",
	"hobby_creative",
	"law_finance_admin",
	"pets",
	"specialized_custom",
}

// Categories returns all catalog categories in presentation order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryOrder))
	for _, code := range categoryOrder {
		out = append(out, Category{
			Code: code,
			Name: categoryNames[code],
			Slug: slug.Make(categoryNames[code]),
		})
	}
	return out
}

// CategoryName returns the display name for a category code, or the code
// itself when it is unknown (old documents may carry free-form values).
func CategoryName(code string) string {
	if name, ok := categoryNames[code]; ok {
		return name
	}
	return code
}

// IsValidCategory reports whether code is one of the catalog categories.
func IsValidCategory(code string) bool {
	_, ok := categoryNames[code]
	return ok
}
