package etrade

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFlow points the three-legged flow at a local server.
func newTestFlow(serverURL string) *OAuthFlow {
	flow := NewOAuthFlow("consumer-key", "consumer-secret")
	flow.Config.Endpoint.RequestTokenURL = serverURL + "/oauth/request_token"
	flow.Config.Endpoint.AccessTokenURL = serverURL + "/oauth/access_token"
	flow.AuthorizeBaseURL = serverURL + "/e/t/etws/authorize"
	return flow
}

func TestOAuthFlow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		switch r.URL.Path {
		case "/oauth/request_token":
			assert.Contains(t, r.Header.Get("Authorization"), `oauth_consumer_key="consumer-key"`)
			_, _ = w.Write([]byte("oauth_token=req-token&oauth_token_secret=req-secret&oauth_callback_confirmed=true"))
		case "/oauth/access_token":
			assert.Contains(t, r.Header.Get("Authorization"), `oauth_verifier="VER123"`)
			_, _ = w.Write([]byte("oauth_token=acc-token&oauth_token_secret=acc-secret"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	flow := newTestFlow(server.URL)

	authURL, err := flow.AuthorizationURL()
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	// The authorize page takes ?key=...&token=... rather than the
	// standard oauth_token query.
	assert.Equal(t, "consumer-key", parsed.Query().Get("key"))
	assert.Equal(t, "req-token", parsed.Query().Get("token"))

	creds, err := flow.AccessToken("VER123")
	require.NoError(t, err)
	assert.Equal(t, Credentials{
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		AccessToken:    "acc-token",
		AccessSecret:   "acc-secret",
	}, creds)
}

func TestOAuthFlow_AccessTokenBeforeAuthorize(t *testing.T) {
	flow := NewOAuthFlow("consumer-key", "consumer-secret")
	_, err := flow.AccessToken("VER123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthorizationURL")
}

func TestOAuthFlow_EmptyVerifier(t *testing.T) {
	flow := NewOAuthFlow("consumer-key", "consumer-secret")
	flow.requestToken = "req-token"
	flow.requestSecret = "req-secret"

	_, err := flow.AccessToken("")
	assert.Error(t, err)
}

func TestClient_RenewAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/renew_access_token", r.URL.Path)
		assert.Contains(t, r.Header.Get("Authorization"), `oauth_token="access-token"`)
		_, _ = w.Write([]byte("Access Token has been renewed"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	require.NoError(t, client.RenewAccessToken(context.Background()))
}

func TestClient_RevokeAccessToken_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/revoke_access_token", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`<Error><message>token_expired</message></Error>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.RevokeAccessToken(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, "token_expired", apiErr.Message)
}
