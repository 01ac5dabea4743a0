package etrade

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dghubble/oauth1"
)

// OAuth endpoints. Authorization always runs against the production
// hosts; the sandbox shares the same token infrastructure.
const (
	requestTokenURL = "https://api.etrade.com/oauth/request_token"
	authorizeURL    = "https://us.etrade.com/e/t/etws/authorize"
	accessTokenURL  = "https://api.etrade.com/oauth/access_token"

	renewTokenPath  = "/oauth/renew_access_token"
	revokeTokenPath = "/oauth/revoke_access_token"
)

// OAuthFlow drives the three-legged OAuth 1.0a authorization: fetch a
// request token, send the user to the authorize URL, then exchange the
// verification code they receive for access credentials.
//
// The zero value is not usable; construct with NewOAuthFlow. Endpoint
// URLs on Config may be overridden before the first call, which tests
// use to point the flow at a local server.
type OAuthFlow struct {
	Config *oauth1.Config

	// AuthorizeBaseURL is the page the user is sent to. The upstream
	// authorize page takes the consumer key and request token as
	// ?key=...&token=... rather than the standard oauth_token form.
	AuthorizeBaseURL string

	requestToken  string
	requestSecret string
}

// NewOAuthFlow creates a flow for the given consumer credentials. The
// callback is always out-of-band: the user reads a verification code
// off the authorize page instead of being redirected.
func NewOAuthFlow(consumerKey, consumerSecret string) *OAuthFlow {
	return &OAuthFlow{
		Config: &oauth1.Config{
			ConsumerKey:    consumerKey,
			ConsumerSecret: consumerSecret,
			CallbackURL:    "oob",
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: requestTokenURL,
				AuthorizeURL:    authorizeURL,
				AccessTokenURL:  accessTokenURL,
			},
		},
		AuthorizeBaseURL: authorizeURL,
	}
}

// AuthorizationURL fetches a request token and returns the URL the
// user must visit to authorize the application.
func (f *OAuthFlow) AuthorizationURL() (string, error) {
	requestToken, requestSecret, err := f.Config.RequestToken()
	if err != nil {
		return "", fmt.Errorf("failed to fetch request token: %w", err)
	}
	f.requestToken = requestToken
	f.requestSecret = requestSecret

	return fmt.Sprintf("%s?key=%s&token=%s",
		f.AuthorizeBaseURL,
		url.QueryEscape(f.Config.ConsumerKey),
		url.QueryEscape(requestToken),
	), nil
}

// AccessToken exchanges the verification code shown to the user for
// access credentials. AuthorizationURL must have been called first.
func (f *OAuthFlow) AccessToken(verifier string) (Credentials, error) {
	if f.requestToken == "" {
		return Credentials{}, fmt.Errorf("no request token, call AuthorizationURL first")
	}
	if verifier == "" {
		return Credentials{}, fmt.Errorf("verification code is required")
	}

	accessToken, accessSecret, err := f.Config.AccessToken(f.requestToken, f.requestSecret, verifier)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to fetch access token: %w", err)
	}

	return Credentials{
		ConsumerKey:    f.Config.ConsumerKey,
		ConsumerSecret: f.Config.ConsumerSecret,
		AccessToken:    accessToken,
		AccessSecret:   accessSecret,
	}, nil
}

// RenewAccessToken revives an access token that has gone inactive
// after two hours without use. Tokens expire at midnight US Eastern
// regardless and then need a full re-authorization.
func (c *Client) RenewAccessToken(ctx context.Context) error {
	return c.tokenLifecycle(ctx, renewTokenPath)
}

// RevokeAccessToken invalidates the access token permanently.
func (c *Client) RevokeAccessToken(ctx context.Context) error {
	return c.tokenLifecycle(ctx, revokeTokenPath)
}

func (c *Client) tokenLifecycle(ctx context.Context, path string) error {
	u := c.OAuthBaseURL + path
	c.log.Debug().Str("url", u).Msg("GET")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, body)
	}
	return nil
}
