// Package activityapi is the client for the external activities API.
package activityapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"activityboard/internal/domain/activity"
	"activityboard/internal/observability"
)

// ErrUnreachable marks calls that produced no usable response:
// transport failures and bodies that could not be decoded.
var ErrUnreachable = errors.New("activities API unreachable")

// RejectedError is returned when the API answers with a non-2xx status.
type RejectedError struct {
	Status int
	Detail string // server-supplied detail, empty when absent or not a string
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("activities API rejected request: status %d", e.Status)
	}
	return fmt.Sprintf("activities API rejected request: status %d: %s", e.Status, e.Detail)
}

// Operation names used for metrics and logs.
const (
	OpFetchCatalog = "fetch_catalog"
	OpSignUp       = "signup"
	OpUnregister   = "unregister"
)

// Client talks to the activities API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL.
// A nil httpClient gets a 10 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchCatalog loads every activity.
// POST: returns the catalog in server order, or an error; a non-2xx status is a *RejectedError
func (c *Client) FetchCatalog(ctx context.Context) (activity.Catalog, error) {
	start := time.Now()
	outcome := observability.OutcomeUnreachable
	defer func() { observability.RecordUpstreamCall(OpFetchCatalog, outcome, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/activities", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = observability.OutcomeRejected
		return nil, &RejectedError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	catalog, err := activity.DecodeCatalog(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	outcome = observability.OutcomeOK
	return catalog, nil
}

// SignUp registers email for the named activity and returns the server's confirmation.
func (c *Client) SignUp(ctx context.Context, name, email string) (string, error) {
	return c.mutate(ctx, OpSignUp, http.MethodPost, name, "signup", email)
}

// Unregister removes email from the named activity and returns the server's confirmation.
func (c *Client) Unregister(ctx context.Context, name, email string) (string, error) {
	return c.mutate(ctx, OpUnregister, http.MethodDelete, name, "unregister", email)
}

func (c *Client) mutate(ctx context.Context, op, method, name, action, email string) (string, error) {
	start := time.Now()
	outcome := observability.OutcomeUnreachable
	defer func() { observability.RecordUpstreamCall(op, outcome, time.Since(start)) }()

	target := ActionURL(c.baseURL, name, action, email)
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode %s response: %v", ErrUnreachable, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = observability.OutcomeRejected
		return "", &RejectedError{Status: resp.StatusCode, Detail: detailText(payload.Detail)}
	}
	outcome = observability.OutcomeOK
	return payload.Message, nil
}

// ActionURL builds /activities/{name}/{action}?email={email} with both values component-encoded.
func ActionURL(baseURL, name, action, email string) string {
	return strings.TrimRight(baseURL, "/") + "/activities/" + EscapeComponent(name) + "/" + action + "?email=" + EscapeComponent(email)
}

// EscapeComponent percent-encodes s for use as a path segment or query value.
// Spaces become %20 rather than '+'.
func EscapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// detailText returns detail when it is a JSON string; structured details yield "".
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func readDetail(r io.Reader) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	return detailText(payload.Detail)
}
