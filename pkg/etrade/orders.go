package etrade

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// OrderAction is the side of an order. BUY_OPEN and SELL_CLOSE apply
// to option orders only.
type OrderAction string

const (
	ActionBuy        OrderAction = "BUY"
	ActionSell       OrderAction = "SELL"
	ActionBuyToCover OrderAction = "BUY_TO_COVER"
	ActionSellShort  OrderAction = "SELL_SHORT"
	ActionBuyOpen    OrderAction = "BUY_OPEN"
	ActionSellClose  OrderAction = "SELL_CLOSE"
)

// PriceType selects how an order is priced.
type PriceType string

const (
	PriceTypeMarket        PriceType = "MARKET"
	PriceTypeLimit         PriceType = "LIMIT"
	PriceTypeStop          PriceType = "STOP"
	PriceTypeStopLimit     PriceType = "STOP_LIMIT"
	PriceTypeMarketOnClose PriceType = "MARKET_ON_CLOSE"
)

// OrderTerm is how long an order stays in effect. IMMEDIATE_OR_CANCEL
// and FILL_OR_KILL are accepted upstream for LIMIT orders only.
type OrderTerm string

const (
	TermGoodUntilCancel   OrderTerm = "GOOD_UNTIL_CANCEL"
	TermGoodForDay        OrderTerm = "GOOD_FOR_DAY"
	TermImmediateOrCancel OrderTerm = "IMMEDIATE_OR_CANCEL"
	TermFillOrKill        OrderTerm = "FILL_OR_KILL"
)

// MarketSession is the trading session an order participates in.
type MarketSession string

const (
	SessionRegular  MarketSession = "REGULAR"
	SessionExtended MarketSession = "EXTENDED"
)

// SecurityType distinguishes equity from option orders.
type SecurityType string

const (
	SecurityTypeEquity SecurityType = "EQ"
	SecurityTypeOption SecurityType = "OPTN"
)

// CallPut flags an option contract type.
type CallPut string

const (
	CallPutCall CallPut = "CALL"
	CallPutPut  CallPut = "PUT"
)

// Envelope names for the two order submission payloads.
const (
	previewOrderRequest = "PreviewOrderRequest"
	placeOrderRequest   = "PlaceOrderRequest"
)

// OrderRequest describes an order to preview, place, or change.
//
// ClientOrderID is a caller-generated idempotency token: at most 20
// alphanumeric characters, unique per account, never echoed back by
// the server. NewClientOrderID generates a conforming value.
//
// Non-positive limit and stop prices are treated as unset. Extra
// entries are copied into the Order payload verbatim, as an escape
// hatch for fields the upstream API adds later.
type OrderRequest struct {
	AccountIDKey  string
	Symbol        string
	OrderAction   OrderAction
	ClientOrderID string
	PriceType     PriceType
	Quantity      int
	OrderTerm     OrderTerm
	MarketSession MarketSession

	LimitPrice float64
	StopPrice  float64
	AllOrNone  bool

	// SecurityType defaults to EQ. Option orders (OPTN) additionally
	// need CallPut, ExpiryDate, and StrikePrice.
	SecurityType SecurityType
	CallPut      CallPut
	ExpiryDate   string
	StrikePrice  float64

	// OrderID identifies the order being modified; required for the
	// change operations only.
	OrderID string

	// PreviewID carries a preview token from an earlier preview call.
	// When empty, the place operations preview automatically.
	PreviewID string

	Extra map[string]any
}

// Validate checks that the required fields for preview or place are
// present. Failures return a *MissingParameterError before anything is
// sent to the server.
//
// STOP requires a stop price and LIMIT a limit price. STOP_LIMIT is
// only rejected when both prices are absent, mirroring the upstream
// wrapper this check was lifted from; see DESIGN.md.
func (r *OrderRequest) Validate() error {
	var missing []string
	if r.AccountIDKey == "" {
		missing = append(missing, "accountIdKey")
	}
	if r.Symbol == "" {
		missing = append(missing, "symbol")
	}
	if r.OrderAction == "" {
		missing = append(missing, "orderAction")
	}
	if r.ClientOrderID == "" {
		missing = append(missing, "clientOrderId")
	}
	if r.PriceType == "" {
		missing = append(missing, "priceType")
	}
	if r.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if r.OrderTerm == "" {
		missing = append(missing, "orderTerm")
	}
	if r.MarketSession == "" {
		missing = append(missing, "marketSession")
	}

	switch r.PriceType {
	case PriceTypeStop:
		if r.StopPrice <= 0 {
			missing = append(missing, "stopPrice")
		}
	case PriceTypeLimit:
		if r.LimitPrice <= 0 {
			missing = append(missing, "limitPrice")
		}
	case PriceTypeStopLimit:
		if r.LimitPrice <= 0 && r.StopPrice <= 0 {
			missing = append(missing, "limitPrice", "stopPrice")
		}
	}

	if len(missing) > 0 {
		return &MissingParameterError{Missing: missing}
	}
	return nil
}

// buildOrderPayload assembles the nested request body for a preview or
// place call. The output is deterministic for a given request.
func buildOrderPayload(envelope string, r *OrderRequest) (map[string]any, error) {
	securityType := r.SecurityType
	if securityType == "" {
		securityType = SecurityTypeEquity
	}

	product := map[string]any{
		"securityType": string(securityType),
		"symbol":       r.Symbol,
	}
	if securityType == SecurityTypeOption {
		expiry, err := dateparse.ParseAny(r.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry date %q: %w", r.ExpiryDate, err)
		}
		product["expiryDay"] = expiry.Day()
		product["expiryMonth"] = int(expiry.Month())
		product["expiryYear"] = expiry.Year()
		product["callPut"] = string(r.CallPut)
		product["strikePrice"] = r.StrikePrice
	}

	instrument := map[string]any{
		"Product":      product,
		"orderAction":  string(r.OrderAction),
		"quantityType": "QUANTITY",
		"quantity":     r.Quantity,
	}

	order := map[string]any{
		"priceType":     string(r.PriceType),
		"orderTerm":     string(r.OrderTerm),
		"marketSession": string(r.MarketSession),
		"Instrument":    instrument,
	}
	if r.AllOrNone {
		order["allOrNone"] = true
	}
	if r.LimitPrice > 0 {
		order["limitPrice"] = r.LimitPrice
	}
	if r.StopPrice > 0 {
		// A stop price must never round against the trader: down for
		// SELL-family actions, up for BUY-family actions.
		roundDown := strings.HasPrefix(string(r.OrderAction), "SELL")
		order["stopPrice"] = toDecimalString(r.StopPrice, roundDown)
	}
	for k, v := range r.Extra {
		order[k] = v
	}

	envelopeBody := map[string]any{
		"orderType":     string(securityType),
		"clientOrderId": r.ClientOrderID,
		"Order":         order,
	}
	if r.PreviewID != "" {
		envelopeBody["PreviewIds"] = map[string]any{"previewId": r.PreviewID}
	}

	return map[string]any{envelope: envelopeBody}, nil
}

// NewClientOrderID returns a fresh 20-character alphanumeric
// idempotency token suitable for OrderRequest.ClientOrderID.
func NewClientOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// ListOrders lists orders for an account. Params are passed through as
// query parameters; see the upstream order API reference for the
// accepted filters (status, fromDate, toDate, symbol, ...).
func (c *Client) ListOrders(ctx context.Context, accountIDKey string, params map[string]string, format Format) (Response, error) {
	if accountIDKey == "" {
		return nil, fmt.Errorf("accountIDKey is required")
	}
	path := fmt.Sprintf("/v1/accounts/%s/orders%s", accountIDKey, format.suffix())
	return c.get(ctx, path, toValues(params), format)
}

// PreviewEquityOrder submits an order for preview. The response
// carries the preview id that a subsequent place call must echo.
func (c *Client) PreviewEquityOrder(ctx context.Context, req *OrderRequest, format Format) (Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payload, err := buildOrderPayload(previewOrderRequest, req)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/v1/accounts/%s/orders/preview", req.AccountIDKey)
	return c.send(ctx, http.MethodPost, path, payload, format)
}

// PlaceEquityOrder places an equity order. When the request has no
// preview id, one preview call runs first and its preview id is
// attached: placing without a prior preview is unreliable upstream.
func (c *Client) PlaceEquityOrder(ctx context.Context, req *OrderRequest, format Format) (Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r := *req // never mutate the caller's request
	if r.PreviewID == "" {
		previewID, err := c.previewID(ctx, c.PreviewEquityOrder, &r, format)
		if err != nil {
			return nil, err
		}
		r.PreviewID = previewID
	}

	payload, err := buildOrderPayload(placeOrderRequest, &r)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/v1/accounts/%s/orders/place", r.AccountIDKey)
	return c.send(ctx, http.MethodPost, path, payload, format)
}

// PlaceOptionOrder places a single-leg option order. Only single-leg
// CALL or PUT contracts are supported.
func (c *Client) PlaceOptionOrder(ctx context.Context, req *OrderRequest, format Format) (Response, error) {
	r := *req
	r.SecurityType = SecurityTypeOption
	return c.PlaceEquityOrder(ctx, &r, format)
}

// PreviewEquityOrderChange previews a modification of an existing
// order identified by req.OrderID.
func (c *Client) PreviewEquityOrderChange(ctx context.Context, req *OrderRequest, format Format) (Response, error) {
	if err := validateChange(req); err != nil {
		return nil, err
	}
	payload, err := buildOrderPayload(previewOrderRequest, req)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/v1/accounts/%s/orders/%s/change/preview", req.AccountIDKey, req.OrderID)
	return c.send(ctx, http.MethodPut, path, payload, format)
}

// PlaceEquityOrderChange replaces an existing order. The server
// cancels the old order id and mints a new one, so callers must not
// assume order-id stability across a change. As with PlaceEquityOrder,
// a preview runs first unless the request carries a preview id.
func (c *Client) PlaceEquityOrderChange(ctx context.Context, req *OrderRequest, format Format) (Response, error) {
	if err := validateChange(req); err != nil {
		return nil, err
	}

	r := *req
	if r.PreviewID == "" {
		previewID, err := c.previewID(ctx, c.PreviewEquityOrderChange, &r, format)
		if err != nil {
			return nil, err
		}
		r.PreviewID = previewID
	}

	payload, err := buildOrderPayload(placeOrderRequest, &r)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/v1/accounts/%s/orders/%s/change/place", r.AccountIDKey, r.OrderID)
	return c.send(ctx, http.MethodPut, path, payload, format)
}

// PlaceOptionOrderChange replaces an existing single-leg option order.
func (c *Client) PlaceOptionOrderChange(ctx context.Context, req *OrderRequest, format Format) (Response, error) {
	r := *req
	r.SecurityType = SecurityTypeOption
	return c.PlaceEquityOrderChange(ctx, &r, format)
}

// CancelOrder cancels an open order by its numeric order id.
func (c *Client) CancelOrder(ctx context.Context, accountIDKey string, orderID int64, format Format) (Response, error) {
	if accountIDKey == "" {
		return nil, fmt.Errorf("accountIDKey is required")
	}
	payload := map[string]any{
		"CancelOrderRequest": map[string]any{"orderId": orderID},
	}
	path := fmt.Sprintf("/v1/accounts/%s/orders/cancel", accountIDKey)
	return c.send(ctx, http.MethodPut, path, payload, format)
}

// FindOptionOrders returns the open orders whose instrument matches
// the derived option symbol for the given contract.
func (c *Client) FindOptionOrders(ctx context.Context, accountIDKey, symbol string, callPut CallPut, expiryDate string, strikePrice float64) ([]Response, error) {
	optSym, err := OptionSymbol(symbol, callPut, expiryDate, strikePrice)
	if err != nil {
		return nil, err
	}

	orders, err := c.ListOrders(ctx, accountIDKey, map[string]string{"status": "OPEN"}, FormatJSON)
	if err != nil {
		return nil, err
	}

	var matches []Response
	for _, order := range orders.SliceAt("OrdersResponse", "Order") {
		product, ok := order.Lookup("OrderDetail", "Instrument", "Product")
		if !ok {
			continue
		}
		pm, ok := product.(map[string]any)
		if !ok {
			continue
		}
		if stringValue(pm["securityType"]) != string(SecurityTypeOption) {
			continue
		}
		// Option instruments carry the full encoded symbol under
		// productId rather than the bare ticker.
		if Response(pm).StringAt("productId", "symbol") == optSym {
			matches = append(matches, order)
		}
	}
	return matches, nil
}

// FindOptionOrder resolves exactly one open order for the given
// contract, failing with a descriptive error on zero or multiple
// matches instead of guessing.
func (c *Client) FindOptionOrder(ctx context.Context, accountIDKey, symbol string, callPut CallPut, expiryDate string, strikePrice float64) (Response, error) {
	optSym, err := OptionSymbol(symbol, callPut, expiryDate, strikePrice)
	if err != nil {
		return nil, err
	}
	matches, err := c.FindOptionOrders(ctx, accountIDKey, symbol, callPut, expiryDate, strikePrice)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("no open order matches option %s", optSym)
	default:
		return nil, fmt.Errorf("%d open orders match option %s, expected exactly one", len(matches), optSym)
	}
}

// previewFunc is either of the two preview operations.
type previewFunc func(ctx context.Context, req *OrderRequest, format Format) (Response, error)

// previewID runs the mandatory preview step before a place and
// extracts the preview token from the response.
func (c *Client) previewID(ctx context.Context, preview previewFunc, req *OrderRequest, format Format) (string, error) {
	c.log.Debug().Msg("no previewId given, previewing before placing order")

	resp, err := preview(ctx, req, format)
	if err != nil {
		return "", err
	}
	id := resp.StringAt("PreviewOrderResponse", "PreviewIds", "previewId")
	if id == "" {
		return "", fmt.Errorf("preview response carries no previewId")
	}
	c.log.Debug().Str("previewId", id).Msg("previewed order")
	return id, nil
}

// validateChange applies the standard order validation plus the
// order id requirement of the change endpoints.
func validateChange(req *OrderRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.OrderID == "" {
		return &MissingParameterError{Missing: []string{"orderId"}}
	}
	return nil
}

// toValues converts a flat param map to url.Values.
func toValues(params map[string]string) url.Values {
	if len(params) == 0 {
		return nil
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values
}
