package rpcclient

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/walletsuite/wallet-tx-core/common/clock"
	"github.com/walletsuite/wallet-tx-core/currency"
	"github.com/walletsuite/wallet-tx-core/fee"
)

// RateSource resolves the FX rate from the native currency into the user's
// default fiat currency. Returning ok=false means no rate is available; the
// forecast then carries native prices only, which is a fallback, not an
// error.
type RateSource interface {
	NativeRate(ctx context.Context) (currency.FXRate, currency.KnownCurrencies, bool, error)
}

// ForecastParams identifies one forecast request. Comparable so it can key
// a pollable.
type ForecastParams struct {
	GasLimit       uint64
	NativeCurrency currency.CurrencyId
}

// ForecastFetcher builds fee forecasts from node RPC data. Its Fetch method
// has the shape a Poller expects.
type ForecastFetcher struct {
	client *ChainClient
	rates  RateSource
	clock  clock.Clock
}

func NewForecastFetcher(client *ChainClient, rates RateSource) *ForecastFetcher {
	return &ForecastFetcher{client: client, rates: rates, clock: clock.SystemClock}
}

// Fetch builds one forecast. EIP-1559 rails when the node supports the tip
// method, legacy gas-price rails otherwise.
func (f *ForecastFetcher) Fetch(ctx context.Context, params ForecastParams) (fee.Forecast, error) {
	gasPrice, err := f.client.GasPrice(ctx)
	if err != nil {
		return fee.Forecast{}, err
	}

	var rate *currency.FXRate
	var currencies currency.KnownCurrencies
	fxRate, known, ok, err := f.rates.NativeRate(ctx)
	if err != nil {
		// The forecast is still useful without fiat conversion.
		log.Warn("native fx rate unavailable, fee forecast will be native only", "err", err)
	} else if ok {
		rate = &fxRate
		currencies = known
	}

	tip, err := f.client.MaxPriorityFeePerGas(ctx)
	if err != nil {
		var rpcErr *RPCError
		if !errors.As(err, &rpcErr) {
			return fee.Forecast{}, err
		}
		// Node rejects the method: pre EIP-1559 chain, legacy rails.
		return f.legacyForecast(params, gasPrice, rate, currencies), nil
	}

	baseFee, err := f.client.BaseFee(ctx)
	if err != nil {
		// Fee history is an optimization; the gas price suggestion is a
		// workable base.
		log.Warn("fee history unavailable, using gas price as base fee", "err", err)
		baseFee = gasPrice
	}
	return f.eip1559Forecast(params, baseFee, tip, rate, currencies), nil
}

func (f *ForecastFetcher) legacyForecast(params ForecastParams, gasPrice *big.Int, rate *currency.FXRate, currencies currency.KnownCurrencies) fee.Forecast {
	rail := func(scaleNum, scaleDen int64, duration fee.ForecastDuration) fee.EstimatedFee {
		price := new(big.Int).Mul(gasPrice, big.NewInt(scaleNum))
		price.Div(price, big.NewInt(scaleDen))
		native := f.nativeCost(params, price)
		return fee.LegacyFee{
			GasPrice:               price,
			PriceInNativeCurrency:  native,
			PriceInDefaultCurrency: convert(native, rate, currencies),
			ForecastDuration:       duration,
		}
	}
	return fee.Forecast{
		Slow:      rail(9, 10, fee.DurationSlow),
		Normal:    rail(1, 1, fee.DurationNormal),
		Fast:      rail(12, 10, fee.DurationFast),
		FetchedAt: f.clock.Now(),
	}
}

func (f *ForecastFetcher) eip1559Forecast(params ForecastParams, baseFee, tip *big.Int, rate *currency.FXRate, currencies currency.KnownCurrencies) fee.Forecast {
	rail := func(tipMultiplier int64, duration fee.ForecastDuration) fee.EstimatedFee {
		scaledTip := new(big.Int).Mul(tip, big.NewInt(tipMultiplier))
		// Cap at base fee + double the scaled tip to survive base-fee
		// swings between forecast and inclusion.
		maxFee := new(big.Int).Mul(scaledTip, big.NewInt(2))
		maxFee.Add(maxFee, baseFee)

		native := f.nativeCost(params, new(big.Int).Add(baseFee, scaledTip))
		maxNative := f.nativeCost(params, maxFee)
		return fee.Eip1559Fee{
			MaxPriorityFeePerGas:      scaledTip,
			MaxFeePerGas:              maxFee,
			PriceInNativeCurrency:     native,
			PriceInDefaultCurrency:    convert(native, rate, currencies),
			MaxPriceInDefaultCurrency: convert(maxNative, rate, currencies),
			ForecastDuration:          duration,
		}
	}
	return fee.Forecast{
		Slow:      rail(1, fee.DurationSlow),
		Normal:    rail(2, fee.DurationNormal),
		Fast:      rail(3, fee.DurationFast),
		FetchedAt: f.clock.Now(),
	}
}

func (f *ForecastFetcher) nativeCost(params ForecastParams, perGas *big.Int) currency.Money {
	cost := new(big.Int).Mul(perGas, new(big.Int).SetUint64(params.GasLimit))
	return currency.NewMoney(cost, params.NativeCurrency)
}

// convert returns nil when no rate is resolvable; the renderer falls back
// to the native amount. A rate keyed to some other base currency counts as
// unresolvable: ApplyRate treats that mismatch as fatal, and a forecast
// must degrade, not crash, on a bad rate.
func convert(native currency.Money, rate *currency.FXRate, currencies currency.KnownCurrencies) *currency.Money {
	if rate == nil || rate.Base != native.CurrencyId {
		return nil
	}
	if _, ok := currencies.Lookup(rate.Base); !ok {
		return nil
	}
	if _, ok := currencies.Lookup(rate.Quote); !ok {
		return nil
	}
	converted := currency.ApplyRate(native, *rate, currencies)
	return &converted
}
