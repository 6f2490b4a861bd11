package model

import "strings"

// RegionCode classifies a company's geographic presence.
type RegionCode string

const (
	RegionEU RegionCode = "EU"
	RegionNA RegionCode = "NA"
	RegionAP RegionCode = "AP"
	RegionLA RegionCode = "LA"
)

// RegionCodes lists every valid region code.
var RegionCodes = []RegionCode{RegionEU, RegionNA, RegionAP, RegionLA}

var regionLabels = map[RegionCode]string{
	RegionEU: "Europe",
	RegionNA: "North America",
	RegionAP: "Asia Pacific",
	RegionLA: "Latin America",
}

// RegionLabel returns the display label for a region code, or the code
// itself when unknown.
func RegionLabel(code RegionCode) string {
	if label, ok := regionLabels[code]; ok {
		return label
	}
	return string(code)
}

// ValidRegion reports whether code is a member of the region enumeration.
func ValidRegion(code RegionCode) bool {
	_, ok := regionLabels[code]
	return ok
}

// NormalizeRegions uppercases and filters values against the region
// enumeration. Returns nil when nothing valid remains: "no input" and
// "input with nothing valid" both mean "no opinion".
func NormalizeRegions(values []string) []RegionCode {
	var out []RegionCode
	for _, v := range values {
		code := RegionCode(strings.ToUpper(strings.TrimSpace(v)))
		if ValidRegion(code) {
			out = append(out, code)
		}
	}
	return out
}
