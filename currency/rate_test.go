package currency

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyRateUsdcToEur(t *testing.T) {
	currencies := testCurrencies()

	// 1 USDC at ~0.92 EUR/USDC, rate scaled by EUR's 18 rate-fraction.
	rate, _ := new(big.Int).SetString("920000000000000000", 10)
	amount := NewMoneyFromInt64(1_000_000, usdc)

	got := ApplyRate(amount, NewFXRate(usdc, eur, rate), currencies)
	require.Equal(t, eur, got.CurrencyId)
	require.Equal(t, int64(92), got.Amount.Int64())
}

func TestApplyRateTruncatesTowardZero(t *testing.T) {
	currencies := testCurrencies()

	// 1.005 USDC * 0.92 = 0.9246 EUR -> 92 cents, never 93.
	rate, _ := new(big.Int).SetString("920000000000000000", 10)
	amount := NewMoneyFromInt64(1_005_000, usdc)

	got := ApplyRate(amount, NewFXRate(usdc, eur, rate), currencies)
	require.Equal(t, int64(92), got.Amount.Int64())
}

func TestApplyRateIsDeterministic(t *testing.T) {
	currencies := testCurrencies()
	rate, _ := new(big.Int).SetString("920000000000000000", 10)
	fx := NewFXRate(usdc, eur, rate)

	// Large balance, no drift across repeated applications.
	amount := NewMoney(mustBig("123456789012345678901234"), usdc)
	first := ApplyRate(amount, fx, currencies)
	for i := 0; i < 100; i++ {
		require.True(t, IsEqual(first, ApplyRate(amount, fx, currencies)))
	}
}

func TestApplyRateLargeBalanceExact(t *testing.T) {
	currencies := testCurrencies()
	rate, _ := new(big.Int).SetString("920000000000000000", 10)

	// 10^24 USDC smallest units = 10^18 USDC -> 0.92 * 10^18 EUR = 92 * 10^18 cents.
	amount := NewMoney(mustBig("1000000000000000000000000"), usdc)
	got := ApplyRate(amount, NewFXRate(usdc, eur, rate), currencies)
	require.Equal(t, mustBig("92000000000000000000"), got.Amount)
}

func TestApplyRateBaseMismatchIsFatal(t *testing.T) {
	currencies := testCurrencies()
	rate := NewFXRate(usdc, eur, big.NewInt(1))

	require.Panics(t, func() { ApplyRate(NewMoneyFromInt64(1, eth), rate, currencies) })
}

func TestApplyRateUnknownCurrencyIsFatal(t *testing.T) {
	rate := NewFXRate(usdc, eur, big.NewInt(1))
	amount := NewMoneyFromInt64(1, usdc)

	require.Panics(t, func() { ApplyRate(amount, rate, KnownCurrencies{}) })
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}
