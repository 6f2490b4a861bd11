package model

import (
	"math"
	"strconv"
	"strings"
)

// EmployeeRange is one of eight fixed company-size buckets.
type EmployeeRange string

// employeeRangeOption defines one bucket with its numeric bounds. A zero
// Max means unbounded.
type employeeRangeOption struct {
	Value EmployeeRange
	Label string
	Min   int
	Max   int
}

var employeeRangeOptions = []employeeRangeOption{
	{Value: "1-10", Label: "1-10", Min: 1, Max: 10},
	{Value: "11-50", Label: "11-50", Min: 11, Max: 50},
	{Value: "51-200", Label: "51-200", Min: 51, Max: 200},
	{Value: "201-500", Label: "201-500", Min: 201, Max: 500},
	{Value: "501-1000", Label: "501-1,000", Min: 501, Max: 1000},
	{Value: "1001-5000", Label: "1,001-5,000", Min: 1001, Max: 5000},
	{Value: "5001-10000", Label: "5,001-10,000", Min: 5001, Max: 10000},
	{Value: "10001+", Label: "10,001+", Min: 10001},
}

// EmployeeRanges lists every valid bucket value in ascending order.
func EmployeeRanges() []EmployeeRange {
	out := make([]EmployeeRange, len(employeeRangeOptions))
	for i, opt := range employeeRangeOptions {
		out[i] = opt.Value
	}
	return out
}

// EmployeeRangeLabel returns the display label for a bucket, or "" when
// the value is not a bucket.
func EmployeeRangeLabel(value EmployeeRange) string {
	for _, opt := range employeeRangeOptions {
		if opt.Value == value {
			return opt.Label
		}
	}
	return ""
}

// NormalizeEmployeeRange maps free text ("50-200", "1000+", "5,000", a
// bucket value or label) onto a bucket. A range contributes its rounded
// midpoint, an open-ended "N+" contributes N+1, a bare number itself;
// the sample lands in the first bucket whose bounds contain it.
// Unparseable input returns ok=false, which callers must treat as "no
// opinion", never an error.
func NormalizeEmployeeRange(input string) (EmployeeRange, bool) {
	sanitized := strings.TrimSpace(input)
	if sanitized == "" {
		return "", false
	}
	sanitized = strings.NewReplacer(" ", "", "\t", "", ",", "", "–", "-").Replace(sanitized)

	for _, opt := range employeeRangeOptions {
		value := strings.ReplaceAll(string(opt.Value), ",", "")
		label := strings.NewReplacer(" ", "", ",", "", "–", "-").Replace(opt.Label)
		if sanitized == value || sanitized == label {
			return opt.Value, true
		}
	}

	sample, ok := employeeSample(sanitized)
	if !ok {
		return "", false
	}

	for _, opt := range employeeRangeOptions {
		max := opt.Max
		if max == 0 {
			max = math.MaxInt
		}
		if sample >= opt.Min && sample <= max {
			return opt.Value, true
		}
	}
	return "", false
}

// employeeSample reduces a sanitized size string to a representative
// head count.
func employeeSample(s string) (int, bool) {
	if dash := strings.Index(s, "-"); dash > -1 {
		start, err1 := strconv.Atoi(s[:dash])
		end, err2 := strconv.Atoi(s[dash+1:])
		if err1 != nil || err2 != nil || end < start {
			return 0, false
		}
		return int(math.Round(float64(start+end) / 2)), true
	}
	if plus := strings.Index(s, "+"); plus > -1 {
		start, err := strconv.Atoi(s[:plus])
		if err != nil {
			return 0, false
		}
		return start + 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
