package oracle

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/walletsuite/wallet-tx-core/common/clock"
	"github.com/walletsuite/wallet-tx-core/currency"
)

type fakeRegistry struct {
	known    currency.KnownCurrencies
	stored   currency.KnownCurrencies
	storedAt uint64
	queryErr error
}

func (r *fakeRegistry) QueryKnownCurrencies() (currency.KnownCurrencies, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	return r.known, nil
}

func (r *fakeRegistry) StoreCurrencies(currencies currency.KnownCurrencies, timestamp uint64) error {
	r.stored = currencies
	r.storedAt = timestamp
	return nil
}

func TestNativeRateSeedsEmptyRegistry(t *testing.T) {
	server := oracleServer(validBody)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	registry := &fakeRegistry{known: currency.KnownCurrencies{}}
	clk := clock.NewDeterministicClock(time.Unix(1_700_000_000, 0))
	source := NewNativeRateSource(client, registry, clk, "USDC", "EUR")

	rate, known, ok, err := source.NativeRate(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, currency.CurrencyId("USDC"), rate.Base)
	require.Equal(t, currency.CurrencyId("EUR"), rate.Quote)

	// The response dictionary went into the registry and the merged view.
	require.Contains(t, registry.stored, currency.CurrencyId("USDC"))
	require.Contains(t, registry.stored, currency.CurrencyId("EUR"))
	require.Equal(t, uint64(1_700_000_000), registry.storedAt)
	_, found := known.Lookup("EUR")
	require.True(t, found)
}

func TestNativeRateRegistryFailure(t *testing.T) {
	client, err := NewClient("http://localhost:1")
	require.NoError(t, err)

	registry := &fakeRegistry{queryErr: errors.New("db down")}
	source := NewNativeRateSource(client, registry, clock.SystemClock, "USDC", "EUR")

	_, _, ok, err := source.NativeRate(context.Background())
	require.Error(t, err)
	require.False(t, ok)
}

func TestNativeRateOracleFailure(t *testing.T) {
	server := oracleServer(`{"currencies": []}`)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	registry := &fakeRegistry{known: currency.KnownCurrencies{"USDC": usdcToken()}}
	source := NewNativeRateSource(client, registry, clock.SystemClock, "USDC", "EUR")

	_, _, ok, err := source.NativeRate(context.Background())
	require.Error(t, err)
	require.False(t, ok)
}
