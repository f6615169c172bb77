package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/walletsuite/wallet-tx-core/currency"
)

const validBody = `{
	"rate": {"base": "USDC", "quote": "EUR", "rate": "920000000000000000"},
	"currencies": [
		{"id": "USDC", "kind": "crypto", "symbol": "USDC", "code": "USDC", "fraction": 6, "rateFraction": 18, "networkHexChainId": "0x1", "address": "0xa0b8"},
		{"id": "EUR", "kind": "fiat", "symbol": "€", "code": "EUR", "fraction": 2, "rateFraction": 18}
	]
}`

func oracleServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func usdcToken() currency.Currency {
	return currency.Currency{
		Id:                "USDC",
		Kind:              currency.KindCrypto,
		Symbol:            "USDC",
		Fraction:          6,
		RateFraction:      18,
		NetworkHexChainId: "0x1",
		Address:           "0xa0b8",
	}
}

func TestFetchTokenRate(t *testing.T) {
	server := oracleServer(validBody)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	got, err := client.FetchTokenRate(context.Background(), usdcToken(), "EUR")
	require.NoError(t, err)
	require.Equal(t, currency.CurrencyId("USDC"), got.Rate.Base)
	require.Equal(t, currency.CurrencyId("EUR"), got.Rate.Quote)
	require.Equal(t, "920000000000000000", got.Rate.Rate.String())

	// Fetched dictionary applies cleanly.
	amount := currency.NewMoneyFromInt64(1_000_000, "USDC")
	converted := currency.ApplyRate(amount, got.Rate, got.Currencies)
	require.Equal(t, int64(92), converted.Amount.Int64())
}

func TestFetchTokenRateForFiatIsFatal(t *testing.T) {
	client, err := NewClient("http://localhost:1")
	require.NoError(t, err)

	fiat := currency.Currency{Id: "EUR", Kind: currency.KindFiat}
	require.Panics(t, func() {
		_, _ = client.FetchTokenRate(context.Background(), fiat, "USD")
	})
}

func TestValidationRejectsBadShapes(t *testing.T) {
	cases := map[string]string{
		"missing rate":       `{"currencies": []}`,
		"non-integer rate":   `{"rate": {"base": "A", "quote": "B", "rate": "0.92"}, "currencies": [{"id": "A", "kind": "crypto", "symbol": "A"}]}`,
		"empty currencies":   `{"rate": {"base": "A", "quote": "B", "rate": "1"}, "currencies": []}`,
		"unknown base":       `{"rate": {"base": "X", "quote": "B", "rate": "1"}, "currencies": [{"id": "B", "kind": "fiat", "symbol": "B"}]}`,
		"invalid kind":       `{"rate": {"base": "A", "quote": "B", "rate": "1"}, "currencies": [{"id": "A", "kind": "weird", "symbol": "A"}]}`,
		"missing symbol":     `{"rate": {"base": "A", "quote": "B", "rate": "1"}, "currencies": [{"id": "A", "kind": "crypto"}]}`,
		"missing quote":      `{"rate": {"base": "A", "rate": "1"}, "currencies": [{"id": "A", "kind": "crypto", "symbol": "A"}]}`,
		// A shape-valid rate answering a different pair than requested.
		"wrong base": `{"rate": {"base": "WETH", "quote": "EUR", "rate": "1"}, "currencies": [
			{"id": "WETH", "kind": "crypto", "symbol": "WETH"},
			{"id": "EUR", "kind": "fiat", "symbol": "€"}]}`,
		"wrong quote": `{"rate": {"base": "USDC", "quote": "GBP", "rate": "1"}, "currencies": [
			{"id": "USDC", "kind": "crypto", "symbol": "USDC"},
			{"id": "GBP", "kind": "fiat", "symbol": "£"}]}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := oracleServer(body)
			defer server.Close()

			client, err := NewClient(server.URL)
			require.NoError(t, err)

			_, err = client.FetchTokenRate(context.Background(), usdcToken(), "EUR")
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestHTTPErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.FetchTokenRate(context.Background(), usdcToken(), "EUR")
	require.ErrorIs(t, err, errOracleHTTPError)
}
