// Package etrade provides a Go client for the E*TRADE REST API.
//
// The client covers accounts, market data, alerts, authorization, and
// order management. Every request is signed with OAuth 1.0a header
// signatures; responses are decoded into a generic map shape regardless
// of whether the caller asked for JSON or XML.
package etrade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/clbanning/mxj/v2"
	"github.com/dghubble/oauth1"
	"github.com/rs/zerolog"
)

const (
	// ProductionBaseURL is the host for live trading.
	ProductionBaseURL = "https://api.etrade.com"

	// SandboxBaseURL is the host for the E*TRADE sandbox environment.
	SandboxBaseURL = "https://apisb.etrade.com"

	// defaultTimeout applies to every HTTP call; there are no retries.
	defaultTimeout = 30 * time.Second
)

// Credentials holds the OAuth 1.0a credential set: the consumer pair
// issued by E*TRADE and the access pair obtained through OAuthFlow.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Client issues signed requests against the E*TRADE API. It is
// read-only after construction and safe for concurrent use, but it
// does not serialize order operations against the same account.
type Client struct {
	BaseURL      string
	OAuthBaseURL string
	HTTPClient   *http.Client

	log zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithSandbox points the client at the sandbox environment.
func WithSandbox() Option {
	return func(c *Client) { c.BaseURL = SandboxBaseURL }
}

// WithBaseURL overrides the API host. Mainly useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.BaseURL = baseURL }
}

// WithOAuthBaseURL overrides the host used for token renew/revoke calls.
func WithOAuthBaseURL(baseURL string) Option {
	return func(c *Client) { c.OAuthBaseURL = baseURL }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithLogger attaches a structured logger. The client logs request
// URLs and payloads at debug level; the default logger discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client that signs every request with the given
// credentials. The production host is used unless WithSandbox or
// WithBaseURL says otherwise.
func NewClient(creds Credentials, opts ...Option) *Client {
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	httpClient := config.Client(oauth1.NoContext, token)
	httpClient.Timeout = defaultTimeout

	c := &Client{
		BaseURL:      ProductionBaseURL,
		OAuthBaseURL: ProductionBaseURL,
		HTTPClient:   httpClient,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a signed GET and decodes the response.
func (c *Client) get(ctx context.Context, path string, params url.Values, format Format) (Response, error) {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	c.log.Debug().Str("url", u).Msg("GET")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, format)
}

// delete performs a signed DELETE and decodes the response.
func (c *Client) delete(ctx context.Context, path string, format Format) (Response, error) {
	u := c.BaseURL + path
	c.log.Debug().Str("url", u).Msg("DELETE")

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, format)
}

// send performs a signed POST or PUT carrying the payload as JSON or
// XML, matching the response format the caller asked for.
func (c *Client) send(ctx context.Context, method, path string, payload map[string]any, format Format) (Response, error) {
	var (
		body        []byte
		contentType string
		err         error
	)
	if format == FormatJSON {
		body, err = json.Marshal(payload)
		contentType = "application/json"
	} else {
		body, err = mxj.Map(payload).Xml()
		contentType = "application/xml"
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	u := c.BaseURL + path
	c.log.Debug().Str("url", u).Str("method", method).RawJSON("payload", jsonForLog(payload)).Msg("sending order payload")

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, format)
}

// jsonForLog renders a payload for debug logging, falling back to null
// on marshal failure so logging never breaks a request.
func jsonForLog(payload map[string]any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return []byte("null")
	}
	return data
}
