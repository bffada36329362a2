// Package submission delivers harvested addresses to the downstream
// registration-request service.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Submission failure classes.
var (
	ErrRejected       = errors.New("submission rejected")
	ErrUnavailable    = errors.New("submission service unavailable")
	ErrInvalidAddress = errors.New("address is missing required fields")
	ErrMissingURL     = errors.New("submission URL is required unless running in debug mode")
)

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures the WebhookSubmitter.
type Config struct {
	URL           string        // URL receives one POST per address.
	DryRun        bool          // DryRun builds and logs requests without sending them.
	MaxRetries    uint64        // MaxRetries bounds the retries of transient failures.
	RetryInterval time.Duration // RetryInterval is the first retry delay.
	RateLimit     int           // RateLimit is the number of submissions allowed per second.
}

// request is the JSON document posted for each address.
type request struct {
	SourceID  int     `json:"source_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Address   string  `json:"address"`
	Address2  string  `json:"address2,omitempty"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zip"`
	County    string  `json:"county,omitempty"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// WebhookSubmitter posts each address as a registration request.
type WebhookSubmitter struct {
	client  HTTPClient
	cfg     Config
	log     *slog.Logger
	limiter *rate.Limiter
}

// NewWebhookSubmitter creates a submitter with its own HTTP client.
func NewWebhookSubmitter(cfg Config, log *slog.Logger) (*WebhookSubmitter, error) {
	const timeout = 20

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}

	return NewWebhookSubmitterWithClient(
		&http.Client{Timeout: timeout * time.Second},
		cfg,
		rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
		log,
	)
}

// NewWebhookSubmitterWithClient allows injecting a custom HTTP client and limiter.
func NewWebhookSubmitterWithClient(
	client HTTPClient,
	cfg Config,
	limiter *rate.Limiter,
	log *slog.Logger,
) (*WebhookSubmitter, error) {
	if cfg.URL == "" && !cfg.DryRun {
		return nil, ErrMissingURL
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}

	return &WebhookSubmitter{client: client, cfg: cfg, log: log, limiter: limiter}, nil
}

// Submit sends the registration request for address. Server errors and
// transport failures are retried; a 4xx answer is final.
func (ws *WebhookSubmitter) Submit(ctx context.Context, address models.Address) error {
	address = address.WithDefaultNames()
	if strings.TrimSpace(address.Line1) == "" || strings.TrimSpace(address.City) == "" || address.Zip5 == "" {
		return fmt.Errorf("%w: target address %d", ErrInvalidAddress, address.ID)
	}

	payload, err := json.Marshal(request{
		SourceID:  address.ID,
		FirstName: address.FirstName,
		LastName:  address.LastName,
		Address:   address.Line1,
		Address2:  address.Line2,
		City:      address.City,
		State:     address.State,
		Zip:       string(address.Zip5),
		County:    address.County,
		Latitude:  address.Latitude,
		Longitude: address.Longitude,
	})
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	if ws.cfg.DryRun {
		ws.log.InfoContext(ctx, "Debug mode, skipping final submission",
			"phase", models.PhaseSubmission, "address", address.FormattedAddress(), "payload", string(payload))
		return nil
	}

	if err = ws.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = ws.cfg.RetryInterval

	attempt := 0
	operation := func() error {
		attempt++
		return ws.post(ctx, payload)
	}
	notify := func(err error, wait time.Duration) {
		ws.log.WarnContext(ctx, "Retrying submission",
			"phase", models.PhaseSubmission, "attempt", attempt, "wait", wait, "error", err)
	}

	return backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(policy, ws.cfg.MaxRetries), ctx), notify)
}

func (ws *WebhookSubmitter) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := ws.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	default:
		return backoff.Permanent(fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, string(body)))
	}
}
