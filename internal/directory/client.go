// Package directory talks to the remote target directory over an
// authenticated session.
package directory

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
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public directory endpoint.
const DefaultBaseURL = "https://mapthe.vote/"

// SessionCookie carries the authenticated session to the directory.
const SessionCookie = "JSESSIONID"

const (
	targetsPath   = "rest/targets/list"
	addressesPath = "rest/addresses/list"
)

// Common errors for the directory client.
var (
	ErrMissingSession = errors.New("directory session id is required")
	ErrUnauthorized   = errors.New("directory rejected the session (log in again and refresh the session id)")
	ErrInvalidLimit   = errors.New("target limit must be positive")
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries targets and address details from the directory.
type Client struct {
	client    HTTPClient    // HTTP client for making requests
	baseURL   *url.URL      // Base URL of the directory service
	sessionID string        // Session cookie value
	log       *slog.Logger  // Logger for logging operations
	limiter   *rate.Limiter // Rate limiter shared by all endpoints
}

// NewClient creates a directory client with its own HTTP client and a
// limiter allowing rateLimit requests per second.
func NewClient(baseURL, sessionID string, rateLimit int, log *slog.Logger) (*Client, error) {
	const timeout = 30

	if rateLimit <= 0 {
		rateLimit = 5
		log.Warn("Rate limit for directory API not set, set a default value", "value", rateLimit)
	}

	return NewClientWithHTTP(
		&http.Client{Timeout: timeout * time.Second},
		baseURL,
		sessionID,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewClientWithHTTP allows injecting a custom HTTP client and limiter.
func NewClientWithHTTP(
	client HTTPClient,
	baseURL string,
	sessionID string,
	limiter *rate.Limiter,
	log *slog.Logger,
) (*Client, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrMissingSession
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	return &Client{
		client:    client,
		baseURL:   parsed,
		sessionID: sessionID,
		log:       log,
		limiter:   limiter,
	}, nil
}

// ListTargets returns every target inside bounds, up to limit records, in
// the order the directory returns them.
func (c *Client) ListTargets(ctx context.Context, bounds models.Bounds, limit int) ([]models.Target, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	north, south, east, west := bounds.Edges()
	query := url.Values{}
	query.Set("n", north)
	query.Set("s", south)
	query.Set("e", east)
	query.Set("w", west)
	query.Set("limit", strconv.Itoa(limit))

	c.log.DebugContext(ctx, "Requesting address targets", "bounds", bounds.String(), "limit", limit)

	var targets []models.Target
	if err := c.get(ctx, targetsPath, query, &targets); err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	return targets, nil
}

// AddressDetails returns the addresses registered at a target. Multi-unit
// buildings yield more than one record.
func (c *Client) AddressDetails(ctx context.Context, targetID int) ([]models.Address, error) {
	query := url.Values{}
	query.Set("targetId", strconv.Itoa(targetID))

	var addresses []models.Address
	if err := c.get(ctx, addressesPath, query, &addresses); err != nil {
		return nil, fmt.Errorf("failed to list addresses for target %d: %w", targetID, err)
	}

	for i := range addresses {
		addresses[i] = addresses[i].WithDefaultNames()
	}

	return addresses, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL := c.baseURL.JoinPath(path)
	reqURL.RawQuery = query.Encode()

	c.log.DebugContext(ctx, "Directory request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: c.sessionID})

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute directory request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		c.log.ErrorContext(ctx, "Directory API error", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("directory API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode directory response: %w", err)
	}

	return nil
}
