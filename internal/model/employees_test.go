package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmployeeRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  EmployeeRange
		ok    bool
	}{
		{"exact bucket", "51-200", "51-200", true},
		{"bucket with spaces", " 51 - 200 ", "51-200", true},
		{"label with commas", "1,001-5,000", "1001-5000", true},
		{"label with en dash", "501–1,000", "501-1000", true},
		{"open ended bucket", "10001+", "10001+", true},
		{"range midpoint", "50-200", "51-200", true},
		{"range midpoint low", "1-9", "1-10", true},
		{"open ended sample", "1000+", "1001-5000", true},
		{"bare number", "5,000", "1001-5000", true},
		{"bare small number", "7", "1-10", true},
		{"huge number", "250000", "10001+", true},
		{"inverted range", "200-50", "", false},
		{"zero", "0", "", false},
		{"empty", "", "", false},
		{"whitespace", "   ", "", false},
		{"garbage", "lots of people", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := NormalizeEmployeeRange(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEmployeeRangeTotality(t *testing.T) {
	t.Parallel()

	valid := map[EmployeeRange]bool{}
	for _, r := range EmployeeRanges() {
		valid[r] = true
	}

	inputs := []string{"1", "9-13", "55", "400+", "999999", "10-10", "abc", "", "3,3"}
	for _, in := range inputs {
		got, ok := NormalizeEmployeeRange(in)
		if ok {
			assert.True(t, valid[got], "input %q mapped outside the enumeration: %q", in, got)
		} else {
			assert.Empty(t, got)
		}
	}
}

func TestNormalizeEmployeeRangeLabelRoundTrip(t *testing.T) {
	t.Parallel()

	for _, r := range EmployeeRanges() {
		label := EmployeeRangeLabel(r)
		require.NotEmpty(t, label)

		got, ok := NormalizeEmployeeRange(label)
		require.True(t, ok, "label %q did not normalize", label)
		assert.Equal(t, r, got)

		got, ok = NormalizeEmployeeRange(string(r))
		require.True(t, ok)
		assert.Equal(t, r, got)
	}
}
