package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rumbo/pkg/utils"
)

func TestTavilySearchSendsKeyInBody(t *testing.T) {
	var got tavilyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]string{
				{"url": "https://example.com/lisboa", "title": "Lisboa", "content": "Alfama y Belém"},
			},
		})
	}))
	defer server.Close()

	client := NewTavilyClient("secret-key")
	client.baseURL = server.URL

	results, err := client.Search(context.Background(), "qué ver en Lisboa", "travel", 3)

	require.NoError(t, err)
	assert.Equal(t, "secret-key", got.APIKey)
	assert.Equal(t, "qué ver en Lisboa", got.Query)
	assert.Equal(t, 3, got.MaxResults)
	require.Len(t, results, 1)
	assert.Equal(t, "Lisboa", results[0].Title)
}

func TestTavilySearchServerErrorsAreTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewTavilyClient("secret-key")
	client.baseURL = server.URL

	_, err := client.Search(context.Background(), "anything", "", 1)

	require.ErrorIs(t, err, utils.ErrTransient)
}

func TestTavilySearchClientErrorsAreNot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewTavilyClient("bad-key")
	client.baseURL = server.URL

	_, err := client.Search(context.Background(), "anything", "", 1)

	require.Error(t, err)
	assert.NotErrorIs(t, err, utils.ErrTransient)
}
