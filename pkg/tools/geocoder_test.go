package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rumbo/pkg/utils"
)

const nominatimTown = `[{"lat":"41.1496","lon":"-8.611","display_name":"Oporto, Portugal",
	"address":{"town":"Oporto","state":"Norte","country":"Portugal","country_code":"pt"}}]`

func TestGeocodeParsesTownFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "Oporto", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(nominatimTown))
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL)
	result, err := client.Geocode(context.Background(), "Oporto", "", "")

	require.NoError(t, err)
	assert.InDelta(t, 41.1496, result.Lat, 0.0001)
	assert.InDelta(t, -8.611, result.Lon, 0.0001)
	assert.Equal(t, "Oporto", result.City)
	assert.Equal(t, "Portugal", result.Country)
	assert.Equal(t, "pt", result.CountryCode)
}

func TestGeocodeNoMatchIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL)
	_, err := client.Geocode(context.Background(), "Nowhereville", "", "")

	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestGeocodeBatchReturnsOneEntryPerQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Nowhereville" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(nominatimTown))
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL)
	entries, err := client.GeocodeBatch(context.Background(), []string{"Oporto", "Nowhereville"}, "")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries["Oporto"].Result)
	assert.Empty(t, entries["Oporto"].Error)
	assert.Nil(t, entries["Nowhereville"].Result)
	assert.NotEmpty(t, entries["Nowhereville"].Error)
}
