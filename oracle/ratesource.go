package oracle

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/walletsuite/wallet-tx-core/common/clock"
	"github.com/walletsuite/wallet-tx-core/currency"
)

// CurrencyRegistry is the persisted currency dictionary backing rate
// resolution.
type CurrencyRegistry interface {
	QueryKnownCurrencies() (currency.KnownCurrencies, error)
	StoreCurrencies(currencies currency.KnownCurrencies, timestamp uint64) error
}

// NativeRateSource resolves the native-to-default-fiat rate through the
// oracle and keeps the registry fresh with every response.
type NativeRateSource struct {
	client   *Client
	registry CurrencyRegistry
	clock    clock.Clock
	native   currency.CurrencyId
	quote    currency.CurrencyId
}

func NewNativeRateSource(client *Client, registry CurrencyRegistry, cl clock.Clock, native, quote currency.CurrencyId) *NativeRateSource {
	return &NativeRateSource{
		client:   client,
		registry: registry,
		clock:    cl,
		native:   native,
		quote:    quote,
	}
}

func (s *NativeRateSource) NativeRate(ctx context.Context) (currency.FXRate, currency.KnownCurrencies, bool, error) {
	known, err := s.registry.QueryKnownCurrencies()
	if err != nil {
		return currency.FXRate{}, nil, false, err
	}
	native, ok := known.Lookup(s.native)
	if !ok {
		// Not in the dictionary yet. The oracle resolves the chain native
		// coin from the quote alone; its response seeds the registry.
		native = currency.Currency{Id: s.native, Kind: currency.KindCrypto}
	}

	tokenRate, err := s.client.FetchTokenRate(ctx, native, s.quote)
	if err != nil {
		return currency.FXRate{}, nil, false, err
	}

	if err := s.registry.StoreCurrencies(tokenRate.Currencies, uint64(s.clock.Now().Unix())); err != nil {
		log.Warn("failed to persist currency dictionary update", "err", err)
	}
	return tokenRate.Rate, known.Merge(tokenRate.Currencies), true, nil
}
