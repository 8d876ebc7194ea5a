package serper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerperSearch(t *testing.T) {
	var received Input
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-API-KEY") != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"searchParameters": {"q": "capital of France"},
			"organic": [
				{"title": "Paris - Wikipedia", "link": "https://en.wikipedia.org/wiki/Paris", "snippet": "Paris is the capital of France.", "date": "Mar 3, 2024", "position": 1},
				{"title": "", "link": "https://example.com/untitled", "position": 2},
				{"title": "France", "link": "https://en.wikipedia.org/wiki/France", "snippet": "France is a country.", "position": 3}
			]
		}`))
	}))
	defer srv.Close()

	tool := New(WithAPIKey("secret"), WithBaseURL(srv.URL), WithLanguage("en"))
	results, err := tool.Search(context.Background(), "capital of France", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Paris - Wikipedia", results[0].Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Paris", results[0].URL)
	assert.Equal(t, "Mar 3, 2024", results[0].Date)
	assert.Equal(t, "France is a country.", results[1].Snippet)

	assert.Equal(t, "capital of France", received.Query)
	assert.Equal(t, 5, received.Num)
	assert.Equal(t, "en", received.Language)
}

func TestSerperMissingAPIKey(t *testing.T) {
	tool := New()
	_, err := tool.Search(context.Background(), "anything", 3)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestSerperUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()
	tool := New(WithAPIKey("wrong"), WithBaseURL(srv.URL))
	_, err := tool.Search(context.Background(), "anything", 3)
	assert.Error(t, err)
}
