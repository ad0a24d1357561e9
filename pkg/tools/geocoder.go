package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"rumbo/pkg/utils"
)

// userAgent identifies us to upstream services; Nominatim-style providers
// reject anonymous clients.
const userAgent = "rumbo-travel-planner/1.0 (+https://rumbo.app)"

type GeocodeResult struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	FullAddress string  `json:"full_address"`
	City        string  `json:"city"`
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
}

type BatchGeocodeEntry struct {
	Result *GeocodeResult `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type Geocoder interface {
	Geocode(ctx context.Context, query, country, language string) (*GeocodeResult, error)
	GeocodeBatch(ctx context.Context, queries []string, country string) (map[string]BatchGeocodeEntry, error)
}

type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNominatimClient(baseURL string) *NominatimClient {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

func (c *NominatimClient) Geocode(ctx context.Context, query, country, language string) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	if country != "" {
		params.Set("countrycodes", country)
	}
	if language != "" {
		params.Set("accept-language", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: geocoder: %v", utils.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: geocoder returned %d", utils.ErrTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("%w: geocoder decode: %v", utils.ErrTransient, err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: no match for %q", utils.ErrNotFound, query)
	}

	p := places[0]
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocoder latitude %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocoder longitude %q: %w", p.Lon, err)
	}

	city := p.Address.City
	if city == "" {
		city = p.Address.Town
	}
	if city == "" {
		city = p.Address.Village
	}

	return &GeocodeResult{
		Lat:         lat,
		Lon:         lon,
		FullAddress: p.DisplayName,
		City:        city,
		Region:      p.Address.State,
		Country:     p.Address.Country,
		CountryCode: p.Address.CountryCode,
	}, nil
}

// GeocodeBatch resolves queries with bounded parallelism and returns one
// entry per query, errors included.
func (c *NominatimClient) GeocodeBatch(ctx context.Context, queries []string, country string) (map[string]BatchGeocodeEntry, error) {
	const maxParallel = 4

	var mu sync.Mutex
	results := make(map[string]BatchGeocodeEntry, len(queries))
	sem := make(chan struct{}, maxParallel)

	var wg sync.WaitGroup
	for _, q := range queries {
		wg.Add(1)
		go func(query string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := c.Geocode(ctx, query, country, "")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[query] = BatchGeocodeEntry{Error: err.Error()}
				return
			}
			results[query] = BatchGeocodeEntry{Result: res}
		}(q)
	}
	wg.Wait()

	return results, nil
}
