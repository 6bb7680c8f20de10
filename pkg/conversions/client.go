// Package conversions forwards server-side conversion events to the ads
// conversion API so attribution survives ad blockers and browser privacy modes.
package conversions

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

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	defaultEndpoint       = "https://graph.facebook.com/v19.0"
	actionSourceWebsite   = "website"
	responseBodyReadLimit = 4096
	maxEventsPerRequest   = 1000
	maxEventIDLength      = 100
	defaultRequestTimeout = 5 * time.Second
)

var (
	errPixelRequired = errors.New("tracking pixel id is required")
	errTokenRequired = errors.New("tracking access token is required")
)

// Client sends batches of events to {endpoint}/{pixel}/events.
type Client struct {
	httpClient    *http.Client
	endpoint      string
	pixelID       string
	accessToken   string
	testEventCode string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a conversions client from the tracking configuration.
func NewClient(cfg config.TrackingConfig, opts ...Option) (*Client, error) {
	pixel := strings.TrimSpace(cfg.PixelID)
	if pixel == "" {
		return nil, errPixelRequired
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errTokenRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		endpoint:      endpoint,
		pixelID:       pixel,
		accessToken:   token,
		testEventCode: strings.TrimSpace(cfg.TestEventCode),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// PixelID returns the configured pixel identifier.
func (c *Client) PixelID() string {
	if c == nil {
		return ""
	}
	return c.pixelID
}

type sendRequest struct {
	Data          []Event `json:"data"`
	AccessToken   string  `json:"access_token"`
	TestEventCode string  `json:"test_event_code,omitempty"`
}

type apiErrorBody struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// Send validates and posts events in one request.
func (c *Client) Send(ctx context.Context, events ...Event) (*Response, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "conversions client not configured")
	}
	if len(events) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one event is required")
	}
	if len(events) > maxEventsPerRequest {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d events per request", maxEventsPerRequest))
	}

	var invalid error
	for i := range events {
		events[i].normalize()
		if err := events[i].Validate(); err != nil {
			invalid = multierr.Append(invalid, fmt.Errorf("event %d: %w", i, err))
		}
	}
	if invalid != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, invalid, invalid.Error())
	}

	payload, err := json.Marshal(sendRequest{Data: events, AccessToken: c.accessToken, TestEventCode: c.testEventCode})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal conversion events")
	}

	endpoint := fmt.Sprintf("%s/%s/events", c.endpoint, url.PathEscape(c.pixelID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build conversion request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeBadGateway, transportCause(err), "execute conversion request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeBadGateway, err, "read conversion response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeBadGateway, decodeAPIError(resp.StatusCode, body), "conversion request rejected")
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeBadGateway, err, "decode conversion response")
	}
	return &out, nil
}

// transportCause drops the request URL from net/http errors so log lines
// carry only the underlying failure.
func transportCause(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s conversions endpoint: %w", strings.ToLower(urlErr.Op), urlErr.Err)
	}
	return err
}

func decodeAPIError(status int, body []byte) error {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return &APIError{
			Status:    status,
			Code:      parsed.Error.Code,
			Message:   parsed.Error.Message,
			FBTraceID: parsed.Error.FBTraceID,
		}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}

// APIError carries the upstream rejection.
type APIError struct {
	Status    int
	Code      int
	Message   string
	FBTraceID string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("status %d code %d: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}
