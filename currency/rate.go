package currency

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FXRate converts amounts from Base into Quote. Rate is an integer scaled by
// the quote currency's RateFraction decimal places, so a USD quote with
// RateFraction 18 stores ~0.92 as 920000000000000000.
type FXRate struct {
	Base  CurrencyId
	Quote CurrencyId
	Rate  *big.Int
}

func NewFXRate(base, quote CurrencyId, rate *big.Int) FXRate {
	return FXRate{Base: base, Quote: quote, Rate: new(big.Int).Set(rate)}
}

type RateMismatchError struct {
	RateBase CurrencyId
	Amount   CurrencyId
}

func (e *RateMismatchError) Error() string {
	return fmt.Sprintf("rate base %s does not match amount currency %s", e.RateBase, e.Amount)
}

// ApplyRate converts a base-currency amount into quote smallest units:
//
//	floor(amount / 10^base.Fraction * rate / 10^quote.RateFraction * 10^quote.Fraction)
//
// Truncation is toward zero, never round-half-up, so re-applying the same
// rate is deterministic. The whole computation runs on decimals; no floats.
// A base/amount mismatch or a currency missing from the dictionary is a
// fatal invariant violation.
func ApplyRate(m Money, rate FXRate, currencies KnownCurrencies) Money {
	if rate.Base != m.CurrencyId {
		panic(&RateMismatchError{RateBase: rate.Base, Amount: m.CurrencyId})
	}
	base := currencies.MustLookup(rate.Base)
	quote := currencies.MustLookup(rate.Quote)

	baseUnits := decimal.NewFromBigInt(m.Amount, -int32(base.Fraction))
	rateUnits := decimal.NewFromBigInt(rate.Rate, -int32(quote.RateFraction))
	quoteUnits := baseUnits.Mul(rateUnits).Shift(int32(quote.Fraction))

	return Money{Amount: quoteUnits.RoundDown(0).BigInt(), CurrencyId: rate.Quote}
}
