package currency

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Money is an exact amount in a currency's smallest unit. All arithmetic is
// integer arithmetic; two Money values can only be combined when they share a
// currency id, and breaking that rule is a bug in the caller, not bad input.
type Money struct {
	Amount     *big.Int
	CurrencyId CurrencyId
}

func NewMoney(amount *big.Int, id CurrencyId) Money {
	return Money{Amount: new(big.Int).Set(amount), CurrencyId: id}
}

func NewMoneyFromInt64(amount int64, id CurrencyId) Money {
	return Money{Amount: big.NewInt(amount), CurrencyId: id}
}

type CurrencyMismatchError struct {
	Op string
	A  CurrencyId
	B  CurrencyId
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch in %s: %s vs %s", e.Op, e.A, e.B)
}

func mustMatch(op string, a, b Money) {
	if a.CurrencyId != b.CurrencyId {
		panic(&CurrencyMismatchError{Op: op, A: a.CurrencyId, B: b.CurrencyId})
	}
}

func Add(a, b Money) Money {
	mustMatch("add", a, b)
	return Money{Amount: new(big.Int).Add(a.Amount, b.Amount), CurrencyId: a.CurrencyId}
}

func Sub(a, b Money) Money {
	mustMatch("sub", a, b)
	return Money{Amount: new(big.Int).Sub(a.Amount, b.Amount), CurrencyId: a.CurrencyId}
}

// Compare returns -1, 0 or 1 by integer amount.
func Compare(a, b Money) int {
	mustMatch("compare", a, b)
	return a.Amount.Cmp(b.Amount)
}

func IsGreaterThan(a, b Money) bool {
	return Compare(a, b) > 0
}

func IsLessThan(a, b Money) bool {
	return Compare(a, b) < 0
}

func IsEqual(a, b Money) bool {
	return Compare(a, b) == 0
}

func (m Money) IsZero() bool {
	return m.Amount.Sign() == 0
}

// MulByNumber scales an amount by an approximate float factor, rounding half
// away from zero. The factor is display-grade only; exact conversions go
// through ApplyRate.
func MulByNumber(m Money, factor float64) Money {
	d := decimal.NewFromBigInt(m.Amount, 0).Mul(decimal.NewFromFloat(factor))
	return Money{Amount: d.Round(0).BigInt(), CurrencyId: m.CurrencyId}
}

// ToNumber divides the amount down by the currency's fraction for display.
// The precision loss is acceptable at this boundary only; the result must
// never feed back into monetary arithmetic. Reports false when the currency
// is not in the dictionary.
func ToNumber(m Money, currencies KnownCurrencies) (float64, bool) {
	cur, ok := currencies.Lookup(m.CurrencyId)
	if !ok {
		return 0, false
	}
	f, _ := decimal.NewFromBigInt(m.Amount, -int32(cur.Fraction)).Float64()
	return f, true
}

// ToDecimal is the exact counterpart of ToNumber, used by formatting and
// threshold comparisons where float drift is not acceptable.
func ToDecimal(m Money, cur Currency) decimal.Decimal {
	return decimal.NewFromBigInt(m.Amount, -int32(cur.Fraction))
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.CurrencyId)
}
