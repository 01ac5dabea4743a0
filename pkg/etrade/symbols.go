package etrade

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// optionSymbolLen is the fixed length of the broker's internal option
// symbol encoding.
const optionSymbolLen = 21

// OptionSymbol derives the broker's internal 21-character option
// symbol: the underlying padded to 6 characters with '-', the expiry
// as YYMMDD, C or P, and the strike times 1000 as an 8-digit
// zero-padded integer. Example: OptionSymbol("PLTR", CallPutPut,
// "2022-02-18", 23) == "PLTR--220218P00023000".
func OptionSymbol(underlying string, callPut CallPut, expiryDate string, strikePrice float64) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(underlying))
	if len(sym) == 0 || len(sym) > 6 {
		return "", fmt.Errorf("underlying %q must be 1 to 6 characters", underlying)
	}
	sym += strings.Repeat("-", 6-len(sym))

	expiry, err := dateparse.ParseAny(expiryDate)
	if err != nil {
		return "", fmt.Errorf("invalid expiry date %q: %w", expiryDate, err)
	}

	cp := strings.ToUpper(strings.TrimSpace(string(callPut)))
	if cp == "" || (cp[0] != 'C' && cp[0] != 'P') {
		return "", fmt.Errorf("callPut must be CALL or PUT, got %q", callPut)
	}

	strike := decimal.NewFromFloat(strikePrice).Mul(decimal.NewFromInt(1000)).Round(0).IntPart()
	if strike < 0 || strike > 99999999 {
		return "", fmt.Errorf("strike price %v does not fit the 8-digit encoding", strikePrice)
	}

	encoded := fmt.Sprintf("%s%s%c%08d", sym, expiry.Format("060102"), cp[0], strike)
	if len(encoded) != optionSymbolLen {
		return "", fmt.Errorf("derived option symbol %q is not %d characters", encoded, optionSymbolLen)
	}
	return encoded, nil
}

// toDecimalString renders a price as a 2-decimal string. When the
// input carries more precision than a cent, the value is nudged half a
// cent toward the trader's advantage before re-rounding: down for
// SELL-family actions, up for BUY-family actions. A nudge that would
// take the price to zero or below is skipped.
func toDecimalString(price float64, roundDown bool) string {
	s := fmt.Sprintf("%.2f", price)
	rounded, _ := strconv.ParseFloat(s, 64)
	if price-rounded == 0 {
		return s
	}

	nudge := 0.005
	if roundDown {
		nudge = -nudge
	}
	if adjusted := price + nudge; adjusted > 0 {
		s = fmt.Sprintf("%.2f", adjusted)
	}
	return s
}
