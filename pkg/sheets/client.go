// Package sheets submits finalized bookings to the spreadsheet-backed
// record-keeping webhook and classifies the outcome.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/torqlabs/voice-concierge/agent/contract"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	URL     string        `split_words:"true" required:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// Option customizes the Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client is a single-attempt, at-most-once submitter. It does not retry and
// does not deduplicate: submitting the same record twice produces two rows
// at the remote store. Retrying is the dialogue loop's decision.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

var _ contractx.Recorder = (*Client)(nil)

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, errors.New("sheets webhook url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid sheets webhook url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 || timeout > defaultTimeout {
		timeout = defaultTimeout
	}

	client := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			// The webhook answers 302 on success; classify it directly
			// instead of chasing the redirect.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func MustNew(cfg Config, opts ...Option) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

// Record submits one booking. The returned error is non-nil only for
// RecordFailed; a degraded acceptance is a value, not an error, so the
// caller can still speak to the guest.
func (c *Client) Record(ctx context.Context, rec contractx.BookingRecord) (contractx.RecordOutcome, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return contractx.RecordFailed, fmt.Errorf("marshal booking record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return contractx.RecordFailed, fmt.Errorf("build booking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contractx.RecordFailed, fmt.Errorf("submit booking record: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusBadRequest {
		return contractx.RecordConfirmed, nil
	}
	return contractx.RecordDegraded, nil
}
