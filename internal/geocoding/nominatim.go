package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/iris/internal/models"
)

const (
	nominatimURL = "https://nominatim.openstreetmap.org/search"
	// Nominatim usage policy requires an identifying User-Agent.
	nominatimUserAgent = "Iris-Sweep/1.0 (https://github.com/UnknownOlympus/iris)"
)

// NominatimProvider resolves place names through OpenStreetMap's Nominatim API.
// The public instance allows one request per second, which is plenty for
// resolving a handful of sweep centers at startup.
type NominatimProvider struct {
	client  HTTPClient
	baseURL string
	region  string
	log     *slog.Logger
}

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// NewNominatimProvider creates a provider for the public Nominatim endpoint.
// region restricts results to a country code list such as "us".
func NewNominatimProvider(region string, log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout * time.Second}, nominatimURL, region, log)
}

// NewNominatimProviderWithClient creates a provider with a custom HTTP client
// and endpoint. An empty baseURL selects the public endpoint.
func NewNominatimProviderWithClient(client HTTPClient, baseURL, region string, log *slog.Logger) *NominatimProvider {
	if baseURL == "" {
		baseURL = nominatimURL
	}

	return &NominatimProvider{client: client, baseURL: baseURL, region: region, log: log}
}

// Geocode looks place up, dropping leading components one at a time while
// the lookup comes back empty: "18788 Marsh Ln, Dallas, TX" falls back to
// "Dallas, TX". The last remaining component is never tried alone.
func (np *NominatimProvider) Geocode(ctx context.Context, place string) (*models.Coordinates, error) {
	np.log.DebugContext(ctx, "Geocoding using Nominatim", "place", place)

	candidates := placeFallbacks(place)
	for idx, candidate := range candidates {
		coords, err := np.search(ctx, candidate)
		if err == nil {
			if idx > 0 {
				np.log.InfoContext(ctx, "Geocoded using broader place", "original", place, "fallback", candidate)
			}
			return coords, nil
		}

		if !errors.Is(err, ErrNominatimEmptyResponse) {
			return nil, err
		}
	}

	np.log.WarnContext(ctx, "No Nominatim match for place", "place", place, "variations_tried", len(candidates))
	return nil, ErrNominatimEmptyResponse
}

func placeFallbacks(place string) []string {
	parts := strings.Split(place, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	const minParts = 2
	variations := []string{strings.Join(parts, ", ")}
	for len(parts) > minParts {
		parts = parts[1:]
		variations = append(variations, strings.Join(parts, ", "))
	}

	return variations
}

func (np *NominatimProvider) search(ctx context.Context, place string) (*models.Coordinates, error) {
	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", place)
	query.Set("format", "json")
	query.Set("limit", "1")
	if np.region != "" {
		query.Set("countrycodes", np.region)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", nominatimUserAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResult
	if err = json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
