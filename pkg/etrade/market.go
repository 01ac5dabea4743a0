package etrade

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

// maxQuoteSymbols is the upstream per-request symbol limit; anything
// beyond the first 25 would be silently dropped by the server.
const maxQuoteSymbols = 25

// LookUpProduct looks up instruments by full or partial company name.
// The upstream matcher abbreviates common words (company, industry,
// systems) and generally skips punctuation.
func (c *Client) LookUpProduct(ctx context.Context, search string, format Format) (Response, error) {
	if search == "" {
		return nil, fmt.Errorf("search string is required")
	}
	path := fmt.Sprintf("/v1/market/lookup/%s%s", url.PathEscape(search), format.suffix())
	return c.get(ctx, path, nil, format)
}

// QuoteOptions adjusts a quote request.
type QuoteOptions struct {
	// DetailFlag selects the returned field set: ALL, FUNDAMENTAL,
	// INTRADAY, OPTIONS, WEEK_52, or MF_DETAIL. Empty means ALL.
	DetailFlag string

	RequireEarningsDate bool

	// SkipMiniOptionsCheck, when set, controls whether the upstream
	// skips its mini-options lookup. Nil leaves the server default.
	SkipMiniOptionsCheck *bool
}

// GetQuote retrieves quote data for up to 25 symbols. Longer lists are
// truncated to the first 25, matching the upstream behavior. Option
// symbols use the underlier:year:month:day:optionType:strikePrice form.
func (c *Client) GetQuote(ctx context.Context, symbols []string, opts *QuoteOptions, format Format) (Response, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required")
	}
	if len(symbols) > maxQuoteSymbols {
		c.log.Warn().Int("requested", len(symbols)).Msg("quote request truncated to first 25 symbols")
		symbols = symbols[:maxQuoteSymbols]
	}

	params := url.Values{}
	if opts != nil {
		if opts.DetailFlag != "" {
			params.Set("detailFlag", strings.ToUpper(opts.DetailFlag))
		}
		if opts.RequireEarningsDate {
			params.Set("requireEarningsDate", "true")
		}
		if opts.SkipMiniOptionsCheck != nil {
			params.Set("skipMiniOptionsCheck", strconv.FormatBool(*opts.SkipMiniOptionsCheck))
		}
	}

	path := fmt.Sprintf("/v1/market/quote/%s%s", strings.Join(symbols, ","), format.suffix())
	return c.get(ctx, path, params, format)
}

// OptionChainsOptions adjusts an option chain request.
type OptionChainsOptions struct {
	// ExpiryDate narrows the chain to one expiry; empty asks for the
	// expiry closest to today.
	ExpiryDate string

	StrikePriceNear float64
	NoOfStrikes     int

	// ChainType is CALL, PUT, or CALLPUT (default).
	ChainType string

	// OptionCategory is STANDARD (default), ALL, or MINI.
	OptionCategory string

	// PriceType is ATNM or ALL.
	PriceType string

	// SkipAdjusted, when set, controls whether adjusted options are
	// hidden. Nil leaves the server default.
	SkipAdjusted *bool
}

// GetOptionChains retrieves the option chain for an underlier.
func (c *Client) GetOptionChains(ctx context.Context, underlier string, opts *OptionChainsOptions, format Format) (Response, error) {
	if underlier == "" {
		return nil, fmt.Errorf("underlier is required")
	}

	params := url.Values{}
	params.Set("symbol", underlier)
	if opts != nil {
		if opts.ExpiryDate != "" {
			expiry, err := dateparse.ParseAny(opts.ExpiryDate)
			if err != nil {
				return nil, fmt.Errorf("invalid expiry date %q: %w", opts.ExpiryDate, err)
			}
			params.Set("expiryDay", fmt.Sprintf("%02d", expiry.Day()))
			params.Set("expiryMonth", fmt.Sprintf("%02d", int(expiry.Month())))
			params.Set("expiryYear", fmt.Sprintf("%04d", expiry.Year()))
		}
		if opts.StrikePriceNear > 0 {
			params.Set("strikePriceNear", fmt.Sprintf("%.2f", opts.StrikePriceNear))
		}
		if opts.NoOfStrikes > 0 {
			params.Set("noOfStrikes", strconv.Itoa(opts.NoOfStrikes))
		}
		if opts.ChainType != "" {
			params.Set("chainType", strings.ToUpper(opts.ChainType))
		}
		if opts.OptionCategory != "" {
			params.Set("optionCategory", strings.ToUpper(opts.OptionCategory))
		}
		if opts.PriceType != "" {
			params.Set("priceType", strings.ToUpper(opts.PriceType))
		}
		if opts.SkipAdjusted != nil {
			params.Set("skipAdjusted", strconv.FormatBool(*opts.SkipAdjusted))
		}
	}

	path := "/v1/market/optionchains" + format.suffix()
	return c.get(ctx, path, params, format)
}

// GetOptionExpireDates lists the option expiry dates for a symbol.
func (c *Client) GetOptionExpireDates(ctx context.Context, symbol string, format Format) (Response, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("expiryType", "ALL")

	path := "/v1/market/optionexpiredate" + format.suffix()
	return c.get(ctx, path, params, format)
}
