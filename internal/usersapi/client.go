// Package usersapi talks to the remote record service that owns user
// documents (GET and PUT /usuario/{id}).
package usersapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kalambet/newsetl/internal/format"
	"github.com/kalambet/newsetl/internal/record"
)

const (
	defaultTimeout = 20 * time.Second
	bodyPreviewLen = 200
	maxBodySize    = 1 << 20
)

// Client fetches and updates user records. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the service at baseURL. Each request is
// bounded by timeout (20s if <= 0).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
}

func (c *Client) userURL(id int) string {
	return fmt.Sprintf("%s/usuario/%d", c.baseURL, id)
}

// GetUser looks up one user.
//
// A 404 is not an error: it is logged as a warning and GetUser returns
// (nil, nil). Any other non-200 status is logged and returned as a
// *RemoteStatusError; callers treat it like a missing user. Network
// failures come back as *TransportError.
func (c *Client) GetUser(ctx context.Context, id int) (*record.Record, error) {
	url := c.userURL(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		c.logger.Warn("user not found, skipping", "user_id", id, "status", resp.StatusCode)
		return nil, nil
	default:
		statusErr := c.statusError(http.MethodGet, url, resp)
		c.logger.Error("unexpected status fetching user",
			"user_id", id, "status", statusErr.StatusCode, "body", statusErr.Body)
		return nil, statusErr
	}

	var u record.Record
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&u); err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: url, Err: fmt.Errorf("decoding user: %w", err)}
	}
	return &u, nil
}

// UpdateUser replaces the remote document for u.ID with u. It reports true
// only on a 200 response; other statuses are logged and reported as false.
// A non-nil error is always a *TransportError.
func (c *Client) UpdateUser(ctx context.Context, u *record.Record) (bool, error) {
	url := c.userURL(u.ID)

	body, err := json.Marshal(u)
	if err != nil {
		return false, fmt.Errorf("marshaling user %d: %w", u.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &TransportError{Method: http.MethodPut, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return true, nil
	}

	statusErr := c.statusError(http.MethodPut, url, resp)
	c.logger.Error("unexpected status updating user",
		"user_id", u.ID, "status", statusErr.StatusCode, "body", statusErr.Body)
	return false, nil
}

func (c *Client) statusError(method, url string, resp *http.Response) *RemoteStatusError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4*bodyPreviewLen))
	return &RemoteStatusError{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       format.Truncate(string(data), bodyPreviewLen),
	}
}
