package model

import "strings"

// CategoryCode classifies the kind of maritime system a company builds.
type CategoryCode string

const (
	CategoryVTS  CategoryCode = "VTS"
	CategoryHW   CategoryCode = "HW"
	CategoryPMIS CategoryCode = "PMIS"
	CategoryPCS  CategoryCode = "PCS"
	CategoryCS   CategoryCode = "CS"
	CategoryPDMS CategoryCode = "PDMS"
	CategoryAIS  CategoryCode = "AIS"
	CategoryTOS  CategoryCode = "TOS"
	CategoryMD   CategoryCode = "MD"
)

// CategoryCodes lists every valid category code.
var CategoryCodes = []CategoryCode{
	CategoryVTS, CategoryHW, CategoryPMIS, CategoryPCS, CategoryCS,
	CategoryPDMS, CategoryAIS, CategoryTOS, CategoryMD,
}

var categoryLabels = map[CategoryCode]string{
	CategoryVTS:  "Vessel Traffic Services",
	CategoryHW:   "Hardware",
	CategoryPMIS: "Port Management Information Systems",
	CategoryPCS:  "Port Community Systems",
	CategoryCS:   "Coastal Surveillance",
	CategoryPDMS: "Pilot Dispatch Management Systems",
	CategoryAIS:  "AIS Network Management",
	CategoryTOS:  "Terminal Operating Systems",
	CategoryMD:   "Marine Data",
}

// CategoryLabel returns the display label for a category code, or the
// code itself when unknown.
func CategoryLabel(code CategoryCode) string {
	if label, ok := categoryLabels[code]; ok {
		return label
	}
	return string(code)
}

// ValidCategory reports whether code is a member of the category
// enumeration.
func ValidCategory(code CategoryCode) bool {
	_, ok := categoryLabels[code]
	return ok
}

// NormalizeCategories uppercases and filters values against the category
// enumeration. Returns nil when nothing valid remains.
func NormalizeCategories(values []string) []CategoryCode {
	var out []CategoryCode
	for _, v := range values {
		code := CategoryCode(strings.ToUpper(strings.TrimSpace(v)))
		if ValidCategory(code) {
			out = append(out, code)
		}
	}
	return out
}
