package leafwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goodcast/goodapi/pkg/domain"
)

// DefaultIPAPIURL is the ip-api pro endpoint; the address is appended.
const DefaultIPAPIURL = "https://pro.ip-api.com/json/"

// IPAPI locates addresses with the ip-api JSON service.
type IPAPI struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// NewIPAPI creates a locator. An empty baseURL selects DefaultIPAPIURL.
func NewIPAPI(baseURL, key string) *IPAPI {
	if baseURL == "" {
		baseURL = DefaultIPAPIURL
	}
	return &IPAPI{
		baseURL:    baseURL,
		key:        key,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type ipAPIResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	City       string `json:"city"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
}

// Locate implements ports.GeoLocator. Addresses ip-api cannot place, such
// as private ranges, yield a nil location.
func (a *IPAPI) Locate(ctx context.Context, ip string) (*domain.Location, error) {
	endpoint, err := url.JoinPath(a.baseURL, url.PathEscape(ip))
	if err != nil {
		return nil, fmt.Errorf("invalid ip-api url: %w", err)
	}
	if a.key != "" {
		endpoint += "?" + url.Values{"key": {a.key}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ip-api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip-api returned %d", resp.StatusCode)
	}

	var out ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode ip-api response: %w", err)
	}
	if out.Status == "fail" {
		return nil, nil
	}
	return &domain.Location{City: out.City, Country: out.Country, Region: out.RegionName}, nil
}
