package seeding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/internal/domain/types"
)

// Outcome classifies the server's answer to an attempt submission.
type Outcome int

// Attempt submission outcomes.
const (
	OutcomeAccepted Outcome = iota
	OutcomeDuplicate
	OutcomeRejected // 4xx other than backpressure
	OutcomeFailed   // transport errors, 5xx, backpressure after retries
)

const (
	backpressureRetries = 5
	backpressureDelay   = 50 * time.Millisecond
)

// Client talks to the talentlens HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// StatusError is returned for unexpected HTTP statuses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// do sends a request and decodes a 2xx JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &StatusError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

// RegisterCandidate posts a candidate record.
func (c *Client) RegisterCandidate(ctx context.Context, cand model.Candidate) error {
	_, err := c.do(ctx, http.MethodPost, "/candidates", cand, nil)
	return err
}

// SubmitAttempt posts an attempt event, retrying briefly on backpressure.
func (c *Client) SubmitAttempt(ctx context.Context, r AttemptRequest) (Outcome, error) { //nolint:gocritic // hugeParam: request is marshalled by value
	for try := 0; ; try++ {
		status, err := c.do(ctx, http.MethodPost, "/attempts", r, nil)
		switch {
		case status == http.StatusAccepted:
			return OutcomeAccepted, nil
		case status == http.StatusOK:
			return OutcomeDuplicate, nil
		case status == http.StatusTooManyRequests && try < backpressureRetries:
			select {
			case <-ctx.Done():
				return OutcomeFailed, ctx.Err()
			case <-time.After(backpressureDelay << try):
			}
		case status >= 400 && status < 500 && status != http.StatusTooManyRequests:
			return OutcomeRejected, err
		default:
			return OutcomeFailed, err
		}
	}
}

// Rank fetches GET /rank/{id}.
func (c *Client) Rank(ctx context.Context, id string) (types.Entry, error) {
	var e types.Entry
	_, err := c.do(ctx, http.MethodGet, "/rank/"+url.PathEscape(id), nil, &e)
	return e, err
}

// Leaderboard fetches GET /leaderboard?limit=n.
func (c *Client) Leaderboard(ctx context.Context, n int) ([]types.Entry, error) {
	var entries []types.Entry
	_, err := c.do(ctx, http.MethodGet, "/leaderboard?limit="+strconv.Itoa(n), nil, &entries)
	return entries, err
}

// Profile fetches GET /candidates/{id}/profile.
func (c *Client) Profile(ctx context.Context, id string) (model.CandidateProfile, error) {
	var p model.CandidateProfile
	_, err := c.do(ctx, http.MethodGet, "/candidates/"+url.PathEscape(id)+"/profile", nil, &p)
	return p, err
}

// Stats fetches GET /stats.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	var stats map[string]any
	_, err := c.do(ctx, http.MethodGet, "/stats", nil, &stats)
	return stats, err
}
