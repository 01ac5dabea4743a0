package etrade

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client pointed at a local test server.
func newTestClient(baseURL string) *Client {
	creds := Credentials{
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		AccessToken:    "access-token",
		AccessSecret:   "access-secret",
	}
	return NewClient(creds, WithBaseURL(baseURL), WithOAuthBaseURL(baseURL))
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Credentials{})
	assert.Equal(t, ProductionBaseURL, client.BaseURL)
	assert.Equal(t, ProductionBaseURL, client.OAuthBaseURL)
	assert.Equal(t, defaultTimeout, client.HTTPClient.Timeout)
}

func TestNewClient_Sandbox(t *testing.T) {
	client := NewClient(Credentials{}, WithSandbox())
	assert.Equal(t, SandboxBaseURL, client.BaseURL)
	// Token lifecycle calls stay on the production host.
	assert.Equal(t, ProductionBaseURL, client.OAuthBaseURL)
}

func TestNewClient_Timeout(t *testing.T) {
	client := NewClient(Credentials{}, WithTimeout(5*time.Second))
	assert.Equal(t, 5*time.Second, client.HTTPClient.Timeout)
}

func TestClient_SignsRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "OAuth "), "expected OAuth header, got %q", auth)
		assert.Contains(t, auth, `oauth_consumer_key="consumer-key"`)
		assert.Contains(t, auth, `oauth_token="access-token"`)
		assert.Contains(t, auth, `oauth_signature_method="HMAC-SHA1"`)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"AccountListResponse": {}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ListAccounts(context.Background(), FormatJSON)
	require.NoError(t, err)
}

func TestClient_XMLPayloadContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<CancelOrderResponse><orderId>9</orderId></CancelOrderResponse>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.CancelOrder(context.Background(), "12345abcd", 9, FormatXML)
	require.NoError(t, err)
	assert.Equal(t, "9", resp.StringAt("CancelOrderResponse", "orderId"))
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(server.URL)
	_, err := client.ListAccounts(ctx, FormatJSON)
	require.Error(t, err)
}
