package reporter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goodtune/classwatch/internal/config"
	"github.com/goodtune/classwatch/internal/engagement"
)

// DefaultTimeout bounds a single status POST.
const DefaultTimeout = 2 * time.Second

// updatePath is the aggregator endpoint that receives status reports.
const updatePath = "/update_status"

// StatusError captures a non-2xx response from the aggregator.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reporter: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

type updateRequest struct {
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
}

// Reporter posts engagement states to the status aggregator.
type Reporter struct {
	serverURL string
	client    *resty.Client
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.client.SetTimeout(d)
		}
	}
}

// WithUserAgent sets the User-Agent sent with each report.
func WithUserAgent(ua string) Option {
	return func(r *Reporter) {
		r.client.SetHeader("User-Agent", ua)
	}
}

// New creates a Reporter for the aggregator at serverURL (scheme and host,
// e.g. "http://127.0.0.1:5000").
func New(serverURL string, opts ...Option) (*Reporter, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return nil, errors.New("reporter: server url must not be empty")
	}
	if err := config.ValidateServerURL(serverURL); err != nil {
		return nil, fmt.Errorf("reporter: invalid server url: %w", err)
	}

	client := resty.New().
		SetBaseURL(serverURL).
		SetTimeout(DefaultTimeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")

	r := &Reporter{
		serverURL: serverURL,
		client:    client,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// URL returns the full update endpoint.
func (r *Reporter) URL() string {
	return r.serverURL + updatePath
}

// Report sends one status update. It fails on transport errors, timeouts
// and any non-2xx response.
func (r *Reporter) Report(ctx context.Context, studentID string, state engagement.State) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(updateRequest{StudentID: studentID, Status: string(state)}).
		Post(updatePath)
	if err != nil {
		return fmt.Errorf("reporter: post %s: %w", r.URL(), err)
	}
	if !resp.IsSuccess() {
		return &StatusError{
			StatusCode: resp.StatusCode(),
			URL:        r.URL(),
			Body:       strings.TrimSpace(resp.String()),
		}
	}
	return nil
}
