package fee

import (
	"math/big"
	"time"

	"github.com/walletsuite/wallet-tx-core/currency"
)

// ForecastDuration is the predicted wait for inclusion at a given fee rail.
type ForecastDuration string

const (
	DurationOutrageouslyFast ForecastDuration = "outrageously_fast"
	DurationFast             ForecastDuration = "fast"
	DurationNormal           ForecastDuration = "normal"
	DurationSlow             ForecastDuration = "slow"
)

func (d ForecastDuration) Estimate() time.Duration {
	switch d {
	case DurationOutrageouslyFast:
		return 5 * time.Second
	case DurationFast:
		return 15 * time.Second
	case DurationNormal:
		return 45 * time.Second
	case DurationSlow:
		return 3 * time.Minute
	default:
		return 45 * time.Second
	}
}

// EstimatedFee is the closed set of pre-confirmation fee shapes. Every
// consumer switches over the concrete type; a new variant must be handled
// at every switch or the compiler-enforced default panics.
type EstimatedFee interface {
	// PriceInNative is the worst-case cost in the chain's native currency.
	PriceInNative() currency.Money

	// PriceInDefault is the cost converted to the user's default fiat
	// currency, or nil when no FX rate was resolvable. Nil is a fallback
	// condition, not an error: render the native amount instead.
	PriceInDefault() *currency.Money

	Duration() ForecastDuration

	isEstimatedFee()
}

// LegacyFee prices a transaction with a single gas price (pre EIP-1559
// chains and chains that never adopted it).
type LegacyFee struct {
	GasPrice               *big.Int
	PriceInNativeCurrency  currency.Money
	PriceInDefaultCurrency *currency.Money
	ForecastDuration       ForecastDuration
}

func (f LegacyFee) PriceInNative() currency.Money   { return f.PriceInNativeCurrency }
func (f LegacyFee) PriceInDefault() *currency.Money { return f.PriceInDefaultCurrency }
func (f LegacyFee) Duration() ForecastDuration      { return f.ForecastDuration }
func (f LegacyFee) isEstimatedFee()                 {}

// Eip1559Fee prices a transaction with a priority fee and a fee cap. The
// native/default prices are computed from the cap, so they are worst-case.
type Eip1559Fee struct {
	MaxPriorityFeePerGas      *big.Int
	MaxFeePerGas              *big.Int
	PriceInNativeCurrency     currency.Money
	PriceInDefaultCurrency    *currency.Money
	MaxPriceInDefaultCurrency *currency.Money
	ForecastDuration          ForecastDuration
}

func (f Eip1559Fee) PriceInNative() currency.Money   { return f.PriceInNativeCurrency }
func (f Eip1559Fee) PriceInDefault() *currency.Money { return f.PriceInDefaultCurrency }
func (f Eip1559Fee) Duration() ForecastDuration      { return f.ForecastDuration }
func (f Eip1559Fee) isEstimatedFee()                 {}

// Forecast is one fetch of the fee market: a rail per urgency level, all of
// the same concrete fee shape.
type Forecast struct {
	Slow   EstimatedFee
	Normal EstimatedFee
	Fast   EstimatedFee

	FetchedAt time.Time
}
