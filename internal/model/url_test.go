package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLinkedInURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare host", "https://linkedin.com/company/acme", "https://linkedin.com/company/acme", true},
		{"www host", "https://www.linkedin.com/company/acme-marine/", "https://www.linkedin.com/company/acme-marine/", true},
		{"uppercase path", "https://linkedin.com/Company/acme", "https://linkedin.com/Company/acme", true},
		{"profile page", "https://linkedin.com/in/acme", "", false},
		{"lookalike host", "https://fake-linkedin.com/company/acme", "", false},
		{"subdomain host", "https://de.linkedin.com/company/acme", "", false},
		{"not a url", "://nope", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ValidLinkedInURL(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureHTTPURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already https", "https://acme-marine.test", "https://acme-marine.test"},
		{"already http", "http://acme-marine.test/about", "http://acme-marine.test/about"},
		{"bare domain", "acme-marine.test", "https://acme-marine.test"},
		{"padded", "  acme.test  ", "https://acme.test"},
		{"empty", "", ""},
		{"hostless", "https://", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, EnsureHTTPURL(tt.input))
		})
	}
}

func TestValidCountryCode(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidCountryCode("USA"))
	assert.True(t, ValidCountryCode("NLD"))
	assert.False(t, ValidCountryCode("usa"))
	assert.False(t, ValidCountryCode("US"))
	assert.False(t, ValidCountryCode("USAX"))
	assert.False(t, ValidCountryCode(""))
}
