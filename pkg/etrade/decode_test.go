package etrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody_JSON(t *testing.T) {
	result, err := decodeBody(FormatJSON, []byte(`{"AccountListResponse": {"Accounts": {"Account": [{"accountId": "840"}]}}}`))
	require.NoError(t, err)
	assert.Equal(t, "840", result.StringAt("AccountListResponse", "Accounts", "Account", "accountId"))
}

func TestDecodeBody_EmptyJSONBody(t *testing.T) {
	// The upstream server returns empty text for queries with no
	// matches; that is an empty result, not a decode failure.
	for _, body := range []string{"", "  \n"} {
		result, err := decodeBody(FormatJSON, []byte(body))
		require.NoError(t, err)
		assert.Empty(t, result)
	}
}

func TestDecodeBody_InvalidJSON(t *testing.T) {
	_, err := decodeBody(FormatJSON, []byte(`{"trailing": `))
	assert.Error(t, err)
}

func TestDecodeBody_XML(t *testing.T) {
	body := []byte(`<AccountListResponse><Accounts><Account><accountId>840</accountId></Account></Accounts></AccountListResponse>`)
	result, err := decodeBody(FormatXML, body)
	require.NoError(t, err)
	// A lone XML element decodes to a map; lookups read it the same
	// way as the JSON single-element array.
	assert.Equal(t, "840", result.StringAt("AccountListResponse", "Accounts", "Account", "accountId"))
}

func TestResponse_Lookup_UnwrapsSingleElementArrays(t *testing.T) {
	r := Response{
		"OrdersResponse": map[string]any{
			"Order": []any{
				map[string]any{
					"OrderDetail": []any{
						map[string]any{"status": "OPEN"},
					},
				},
			},
		},
	}
	assert.Equal(t, "OPEN", r.StringAt("OrdersResponse", "Order", "OrderDetail", "status"))

	_, ok := r.Lookup("OrdersResponse", "missing")
	assert.False(t, ok)
}

func TestResponse_SliceAt(t *testing.T) {
	list := Response{"Alerts": map[string]any{"Alert": []any{
		map[string]any{"id": "1"},
		map[string]any{"id": "2"},
	}}}
	require.Len(t, list.SliceAt("Alerts", "Alert"), 2)

	// XML's lone-map shape is wrapped into a one-element slice.
	lone := Response{"Alerts": map[string]any{"Alert": map[string]any{"id": "1"}}}
	single := lone.SliceAt("Alerts", "Alert")
	require.Len(t, single, 1)
	assert.Equal(t, "1", single[0].StringAt("id"))

	assert.Nil(t, lone.SliceAt("Alerts", "missing"))
}

func TestErrorInBody(t *testing.T) {
	result := Response{"Error": map[string]any{"code": float64(100), "message": "oauth_problem=token_rejected"}}
	apiErr := errorInBody(result)
	require.NotNil(t, apiErr)
	assert.Equal(t, "100", apiErr.Code)
	assert.Equal(t, "oauth_problem=token_rejected", apiErr.Message)

	assert.Nil(t, errorInBody(Response{"AccountListResponse": map[string]any{}}))
}

func TestNewAPIError_ParsesBothFormats(t *testing.T) {
	jsonErr := newAPIError(400, []byte(`{"Error": {"code": "1023", "message": "bad symbol"}}`))
	assert.Equal(t, "1023", jsonErr.Code)
	assert.Equal(t, "bad symbol", jsonErr.Message)
	assert.Equal(t, 400, jsonErr.StatusCode)

	xmlErr := newAPIError(500, []byte(`<Error><code>9999</code><message>server fault</message></Error>`))
	assert.Equal(t, "9999", xmlErr.Code)
	assert.Equal(t, "server fault", xmlErr.Message)

	plainErr := newAPIError(502, []byte(`bad gateway`))
	assert.Equal(t, 502, plainErr.StatusCode)
	assert.Empty(t, plainErr.Code)
}

func TestStringValue(t *testing.T) {
	assert.Equal(t, "", stringValue(nil))
	assert.Equal(t, "abc", stringValue("abc"))
	assert.Equal(t, "98765", stringValue(float64(98765)))
	assert.Equal(t, "23.5", stringValue(23.5))
	assert.Equal(t, "true", stringValue(true))
}
