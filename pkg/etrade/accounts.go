package etrade

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ListAccounts lists the accounts of the authenticated user.
func (c *Client) ListAccounts(ctx context.Context, format Format) (Response, error) {
	path := "/v1/accounts/list" + format.suffix()
	return c.get(ctx, path, nil, format)
}

// BalanceOptions adjusts the balance query. A nil value asks for a
// real-time figure on a brokerage account.
type BalanceOptions struct {
	AccountType string
	RealTimeNAV bool
}

// GetAccountBalance retrieves the balance of an account identified by
// its account id key.
func (c *Client) GetAccountBalance(ctx context.Context, accountIDKey string, opts *BalanceOptions, format Format) (Response, error) {
	if accountIDKey == "" {
		return nil, fmt.Errorf("accountIDKey is required")
	}
	if opts == nil {
		opts = &BalanceOptions{RealTimeNAV: true}
	}

	params := url.Values{}
	params.Set("instType", "BROKERAGE")
	params.Set("realTimeNAV", strconv.FormatBool(opts.RealTimeNAV))
	if opts.AccountType != "" {
		params.Set("accountType", opts.AccountType)
	}

	path := fmt.Sprintf("/v1/accounts/%s/balance%s", accountIDKey, format.suffix())
	return c.get(ctx, path, params, format)
}

// GetAccountPortfolio retrieves the positions of an account. Params
// are passed through as query parameters (count, sortBy, view, ...).
func (c *Client) GetAccountPortfolio(ctx context.Context, accountIDKey string, params map[string]string, format Format) (Response, error) {
	if accountIDKey == "" {
		return nil, fmt.Errorf("accountIDKey is required")
	}
	path := fmt.Sprintf("/v1/accounts/%s/portfolio%s", accountIDKey, format.suffix())
	return c.get(ctx, path, toValues(params), format)
}

// ListTransactions lists account transactions. Params are passed
// through as query parameters (startDate, endDate, count, marker, ...).
// A date range with no transactions yields an empty Response.
func (c *Client) ListTransactions(ctx context.Context, accountIDKey string, params map[string]string, format Format) (Response, error) {
	if accountIDKey == "" {
		return nil, fmt.Errorf("accountIDKey is required")
	}
	path := fmt.Sprintf("/v1/accounts/%s/transactions%s", accountIDKey, format.suffix())
	return c.get(ctx, path, toValues(params), format)
}

// GetTransactionDetails retrieves the details of a single transaction.
func (c *Client) GetTransactionDetails(ctx context.Context, accountIDKey, transactionID string, format Format) (Response, error) {
	if accountIDKey == "" {
		return nil, fmt.Errorf("accountIDKey is required")
	}
	if transactionID == "" {
		return nil, fmt.Errorf("transactionID is required")
	}
	path := fmt.Sprintf("/v1/accounts/%s/transactions/%s%s", accountIDKey, transactionID, format.suffix())
	return c.get(ctx, path, nil, format)
}
