package currency

import (
	"fmt"
	"strings"
)

type CurrencyId string

type CurrencyKind string

const (
	KindFiat   CurrencyKind = "fiat"
	KindCrypto CurrencyKind = "crypto"
)

// Currency describes one fiat or crypto currency. Amounts are always kept in
// the currency's smallest unit; Fraction is the number of decimal places that
// unit represents. RateFraction is the scale used when the currency appears as
// the quote side of an FXRate.
type Currency struct {
	Id           CurrencyId
	Kind         CurrencyKind
	Symbol       string
	Code         string
	Fraction     uint8
	RateFraction uint8
	Name         string
	Icon         string

	// crypto only
	NetworkHexChainId string
	Address           string
}

func (c Currency) IsFiat() bool {
	return c.Kind == KindFiat
}

// KnownCurrencies is the currency dictionary keyed by currency id. Lookups
// may legitimately miss: a currency the wallet has not seen yet must render
// as unknown, not crash.
type KnownCurrencies map[CurrencyId]Currency

func (kc KnownCurrencies) Lookup(id CurrencyId) (Currency, bool) {
	c, ok := kc[id]
	return c, ok
}

// MustLookup is for call sites where the design asserts presence (rate
// application). A miss there is a programming error, not bad input.
func (kc KnownCurrencies) MustLookup(id CurrencyId) Currency {
	c, ok := kc[id]
	if !ok {
		panic(&UnknownCurrencyError{Id: id})
	}
	return c
}

func (kc KnownCurrencies) Merge(other KnownCurrencies) KnownCurrencies {
	out := make(KnownCurrencies, len(kc)+len(other))
	for id, c := range kc {
		out[id] = c
	}
	for id, c := range other {
		out[id] = c
	}
	return out
}

type UnknownCurrencyError struct {
	Id CurrencyId
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency: %s", e.Id)
}

func ParseKind(s string) (CurrencyKind, error) {
	switch strings.ToLower(s) {
	case string(KindFiat):
		return KindFiat, nil
	case string(KindCrypto):
		return KindCrypto, nil
	default:
		return KindCrypto, fmt.Errorf("invalid currency kind: %s", s)
	}
}
