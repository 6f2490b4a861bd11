package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRegions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   []RegionCode
	}{
		{"valid codes", []string{"EU", "NA"}, []RegionCode{RegionEU, RegionNA}},
		{"lowercase and padding", []string{" eu ", "ap"}, []RegionCode{RegionEU, RegionAP}},
		{"mixed validity", []string{"EU", "MARS", "LA"}, []RegionCode{RegionEU, RegionLA}},
		{"only invalid", []string{"MARS", "ATLANTIS"}, nil},
		{"nil input", nil, nil},
		{"empty strings", []string{"", "  "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeRegions(tt.values)
			assert.Equal(t, tt.want, got)
			for _, code := range got {
				assert.True(t, ValidRegion(code))
			}
		})
	}
}

func TestNormalizeCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   []CategoryCode
	}{
		{"valid codes", []string{"VTS", "tos"}, []CategoryCode{CategoryVTS, CategoryTOS}},
		{"mixed validity", []string{"AIS", "BLOCKCHAIN", "MD"}, []CategoryCode{CategoryAIS, CategoryMD}},
		{"only invalid", []string{"SAAS"}, nil},
		{"nil input", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeCategories(tt.values)
			assert.Equal(t, tt.want, got)
			for _, code := range got {
				assert.True(t, ValidCategory(code))
			}
		})
	}
}

func TestLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Europe", RegionLabel(RegionEU))
	assert.Equal(t, "XX", RegionLabel(RegionCode("XX")))
	assert.Equal(t, "Vessel Traffic Services", CategoryLabel(CategoryVTS))
	assert.Equal(t, "Terminal Operating Systems", CategoryLabel(CategoryTOS))
	assert.Equal(t, "ZZ", CategoryLabel(CategoryCode("ZZ")))
}
