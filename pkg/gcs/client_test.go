package gcs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientDisabledWithoutCredentials(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewClient("", "cx"))
	assert.Nil(t, NewClient("key", ""))
	assert.Nil(t, NewClient("", ""))
	assert.NotNil(t, NewClient("key", "cx"))
}

func TestSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.URL.Query().Get("key"))
		assert.Equal(t, "cx-456", r.URL.Query().Get("cx"))
		assert.Equal(t, "acme marine linkedin", r.URL.Query().Get("q"))

		json.NewEncoder(w).Encode(SearchResponse{
			Items: []Item{
				{Title: "Acme Marine", Link: "https://acme-marine.test"},
				{Title: "Acme Marine | LinkedIn", Link: "https://www.linkedin.com/company/acme-marine"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("key-123", "cx-456", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), "acme marine linkedin")
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "https://www.linkedin.com/company/acme-marine", resp.Items[1].Link)
}

func TestSearchNon200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("k", "c", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "anything")
	assert.Error(t, err)
}

func TestSearchBadJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient("k", "c", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "anything")
	assert.Error(t, err)
}
