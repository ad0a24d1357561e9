package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rumbo/pkg/utils"
)

const minImageDimension = 200

type ImageResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Description string `json:"description,omitempty"`
}

type ImageSearcher interface {
	Images(ctx context.Context, query, language string, max int) ([]ImageResult, error)
}

// OpenverseClient queries the Openverse image API.
type OpenverseClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenverseClient(baseURL string) *OpenverseClient {
	if baseURL == "" {
		baseURL = "https://api.openverse.org"
	}
	return &OpenverseClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type openverseResponse struct {
	Results []struct {
		URL    string `json:"url"`
		Title  string `json:"title"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Tags   []struct {
			Name string `json:"name"`
		} `json:"tags"`
	} `json:"results"`
}

func (c *OpenverseClient) Images(ctx context.Context, query, language string, max int) ([]ImageResult, error) {
	if max <= 0 {
		max = 6
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page_size", strconv.Itoa(max*3)) // overfetch, filtering drops candidates

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/images/?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if language != "" {
		req.Header.Set("Accept-Language", language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: image search: %v", utils.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: image search returned %d", utils.ErrTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search returned %d", resp.StatusCode)
	}

	var parsed openverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: image search decode: %v", utils.ErrTransient, err)
	}

	results := make([]ImageResult, 0, max)
	for _, r := range parsed.Results {
		if !usableImage(r.URL, r.Title, r.Width, r.Height) {
			continue
		}
		results = append(results, ImageResult{
			URL:    r.URL,
			Title:  r.Title,
			Width:  r.Width,
			Height: r.Height,
		})
		if len(results) == max {
			break
		}
	}
	return results, nil
}

// usableImage drops icons, logos and undersized candidates.
func usableImage(rawURL, title string, width, height int) bool {
	if width < minImageDimension || height < minImageDimension {
		return false
	}
	lowered := strings.ToLower(rawURL + " " + title)
	for _, marker := range []string{"icon", "logo", "sprite", "favicon", "thumbnail"} {
		if strings.Contains(lowered, marker) {
			return false
		}
	}
	return true
}
