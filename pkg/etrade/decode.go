package etrade

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/clbanning/mxj/v2"
)

// Format selects the wire format for a single call. The upstream API
// returns XML unless an endpoint path carries a ".json" suffix.
type Format string

const (
	// FormatXML is the upstream default.
	FormatXML Format = "xml"

	// FormatJSON asks for JSON responses.
	FormatJSON Format = "json"
)

// suffix returns the path suffix that selects this format.
func (f Format) suffix() string {
	if f == FormatJSON {
		return ".json"
	}
	return ""
}

// Response is the decoded body of an API call. Both JSON and XML
// bodies are normalized into this one generic shape so callers never
// branch on the wire format.
type Response map[string]any

// decodeResponse drains and closes the HTTP response, turning non-2xx
// statuses and embedded Error bodies into *APIError.
func decodeResponse(resp *http.Response, format Format) (Response, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	result, err := decodeBody(format, body)
	if err != nil {
		return nil, err
	}

	// The upstream API reports some failures inside a 200 body.
	if apiErr := errorInBody(result); apiErr != nil {
		return nil, apiErr
	}
	return result, nil
}

// decodeBody parses raw bytes per the requested format. An empty JSON
// body is a legitimate empty result, not an error: the upstream server
// returns empty text for queries with no matches.
func decodeBody(format Format, body []byte) (Response, error) {
	if format == FormatJSON {
		if strings.TrimSpace(string(body)) == "" {
			return Response{}, nil
		}
		var m map[string]any
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, fmt.Errorf("failed to decode JSON response: %w", err)
		}
		return Response(m), nil
	}

	mv, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode XML response: %w", err)
	}
	return Response(mv), nil
}

// errorInBody returns an *APIError when the decoded body carries an
// Error member, nil otherwise.
func errorInBody(result Response) *APIError {
	raw, ok := result["Error"]
	if !ok {
		return nil
	}
	apiErr := &APIError{StatusCode: http.StatusOK}
	if m, ok := raw.(map[string]any); ok {
		apiErr.Code = stringValue(m["code"])
		apiErr.Message = stringValue(m["message"])
	} else {
		apiErr.Message = stringValue(raw)
	}
	return apiErr
}

// newAPIError builds a transport error from a non-2xx response,
// salvaging the upstream code and message when the body parses.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	for _, f := range []Format{FormatJSON, FormatXML} {
		result, err := decodeBody(f, body)
		if err != nil {
			continue
		}
		if inner := errorInBody(result); inner != nil {
			apiErr.Code = inner.Code
			apiErr.Message = inner.Message
			return apiErr
		}
	}
	return apiErr
}

// Lookup walks nested maps by key. JSON responses wrap some members in
// single-element arrays where XML yields a lone map; Lookup descends
// through one-element slices so both shapes read the same.
func (r Response) Lookup(keys ...string) (any, bool) {
	var v any = map[string]any(r)
	for _, key := range keys {
		if s, ok := v.([]any); ok && len(s) > 0 {
			v = s[0]
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return v, true
}

// StringAt returns the string form of a nested value, or "" when the
// path does not resolve.
func (r Response) StringAt(keys ...string) string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return ""
	}
	return stringValue(v)
}

// SliceAt returns a nested value as a slice of maps. A lone map is
// wrapped, since the XML decoder produces a map where a one-element
// list appears in JSON.
func (r Response) SliceAt(keys ...string) []Response {
	v, ok := r.Lookup(keys...)
	if !ok {
		return nil
	}
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case map[string]any:
		items = []any{t}
	default:
		return nil
	}
	out := make([]Response, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Response(m))
		}
	}
	return out
}

// stringValue renders a decoded scalar as a string. Numbers avoid
// scientific notation so identifiers survive the JSON float round trip.
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
