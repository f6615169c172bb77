package fee

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/walletsuite/wallet-tx-core/currency"
)

const (
	eth currency.CurrencyId = "ETH"
	usd currency.CurrencyId = "USD"
)

func testCurrencies() currency.KnownCurrencies {
	return currency.KnownCurrencies{
		eth: {Id: eth, Kind: currency.KindCrypto, Symbol: "ETH", Code: "ETH", Fraction: 18, RateFraction: 18},
		usd: {Id: usd, Kind: currency.KindFiat, Symbol: "$", Code: "USD", Fraction: 2, RateFraction: 18},
	}
}

func ethAmount(s string) currency.Money {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return currency.NewMoney(v, eth)
}

func TestFormatPrefersDefaultCurrency(t *testing.T) {
	price := currency.NewMoneyFromInt64(123, usd)
	f := LegacyFee{
		GasPrice:               big.NewInt(1),
		PriceInNativeCurrency:  ethAmount("1000000000000000"),
		PriceInDefaultCurrency: &price,
		ForecastDuration:       DurationNormal,
	}

	got, err := Format(f, testCurrencies())
	require.NoError(t, err)
	require.Equal(t, "$1.23", got)
}

func TestFormatTruncatesDustNativeAmount(t *testing.T) {
	// 500 wei is far below the 0.001 ETH threshold.
	f := LegacyFee{
		GasPrice:              big.NewInt(1),
		PriceInNativeCurrency: ethAmount("500"),
		ForecastDuration:      DurationNormal,
	}

	got, err := Format(f, testCurrencies())
	require.NoError(t, err)
	require.Equal(t, "< 0.001 ETH", got)
}

func TestFormatExactAtThreshold(t *testing.T) {
	// Exactly 0.001 ETH renders literally.
	f := Eip1559Fee{
		MaxPriorityFeePerGas:  big.NewInt(1),
		MaxFeePerGas:          big.NewInt(2),
		PriceInNativeCurrency: ethAmount("1000000000000000"),
		ForecastDuration:      DurationFast,
	}

	got, err := Format(f, testCurrencies())
	require.NoError(t, err)
	require.Equal(t, "0.001 ETH", got)
}

func TestFormatAboveThreshold(t *testing.T) {
	f := LegacyFee{
		GasPrice:              big.NewInt(1),
		PriceInNativeCurrency: ethAmount("50000000000000000"), // 0.05 ETH
		ForecastDuration:      DurationSlow,
	}

	got, err := Format(f, testCurrencies())
	require.NoError(t, err)
	require.Equal(t, "0.05 ETH", got)
}

func TestFormatZeroNativeAmount(t *testing.T) {
	f := LegacyFee{
		GasPrice:              big.NewInt(0),
		PriceInNativeCurrency: ethAmount("0"),
		ForecastDuration:      DurationNormal,
	}

	got, err := Format(f, testCurrencies())
	require.NoError(t, err)
	require.Equal(t, "0 ETH", got)
}

func TestFormatUnknownCurrency(t *testing.T) {
	f := LegacyFee{
		GasPrice:              big.NewInt(1),
		PriceInNativeCurrency: currency.NewMoneyFromInt64(1, "MYSTERY"),
	}

	_, err := Format(f, testCurrencies())
	var unknown *currency.UnknownCurrencyError
	require.ErrorAs(t, err, &unknown)
}

func TestGenericGasInfoTotalCost(t *testing.T) {
	g := GenericGasInfo{GasUsed: big.NewInt(21000), EffectiveGasPrice: big.NewInt(30_000_000_000)}
	require.Equal(t, "630000000000000", g.TotalCost().String())
}

func TestL2RollupGasInfoTotalCost(t *testing.T) {
	g := L2RollupGasInfo{
		L1Fee:       big.NewInt(40_000_000_000_000),
		L1FeeScalar: "0.684",
		L1GasPrice:  big.NewInt(25_000_000_000),
		L1GasUsed:   big.NewInt(2_100),
		GasUsed:     big.NewInt(21000),
		L2GasPrice:  big.NewInt(1_000_000),
	}

	// 21000 * 1e6 L2 execution + already-scaled L1 data fee.
	want := new(big.Int).Add(big.NewInt(21_000_000_000), big.NewInt(40_000_000_000_000))
	require.Equal(t, want, g.TotalCost())
}

func TestForecastDurationEstimates(t *testing.T) {
	require.Less(t, DurationFast.Estimate(), DurationNormal.Estimate())
	require.Less(t, DurationNormal.Estimate(), DurationSlow.Estimate())
}
