package fee

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/walletsuite/wallet-tx-core/currency"
)

// truncationThreshold is the smallest native amount rendered literally.
// Anything below renders as "< 0.001 SYMBOL" so a dust-sized fee never
// shows up looking like zero.
var truncationThreshold = decimal.RequireFromString("0.001")

// Format renders an estimated fee for display. The default-currency price
// wins when present; otherwise the native price is shown, truncated below
// the 0.001 threshold.
func Format(f EstimatedFee, currencies currency.KnownCurrencies) (string, error) {
	if price := f.PriceInDefault(); price != nil {
		return formatAmount(*price, currencies)
	}
	native := f.PriceInNative()
	cur, ok := currencies.Lookup(native.CurrencyId)
	if !ok {
		return "", &currency.UnknownCurrencyError{Id: native.CurrencyId}
	}
	amount := currency.ToDecimal(native, cur)
	if amount.Sign() > 0 && amount.LessThan(truncationThreshold) {
		return fmt.Sprintf("< 0.001 %s", cur.Symbol), nil
	}
	return fmt.Sprintf("%s %s", trimmed(amount, cur), cur.Symbol), nil
}

func formatAmount(m currency.Money, currencies currency.KnownCurrencies) (string, error) {
	cur, ok := currencies.Lookup(m.CurrencyId)
	if !ok {
		return "", &currency.UnknownCurrencyError{Id: m.CurrencyId}
	}
	amount := currency.ToDecimal(m, cur)
	if cur.IsFiat() {
		return fmt.Sprintf("%s%s", cur.Symbol, amount.StringFixed(int32(cur.Fraction))), nil
	}
	return fmt.Sprintf("%s %s", trimmed(amount, cur), cur.Symbol), nil
}

// trimmed keeps at most the currency's fraction digits and drops trailing
// zeros, so 0.0500 ETH renders as 0.05 ETH.
func trimmed(amount decimal.Decimal, cur currency.Currency) string {
	return amount.Round(int32(cur.Fraction)).String()
}
