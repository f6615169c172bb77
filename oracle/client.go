package oracle

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
	gresty "github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/walletsuite/wallet-tx-core/currency"
)

var errOracleHTTPError = errors.New("price oracle http error")

// ParseError marks an oracle response that failed strict shape validation.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed oracle response field %q: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TokenRate is one resolved rate together with the currency dictionary
// needed to apply it.
type TokenRate struct {
	Rate       currency.FXRate
	Currencies currency.KnownCurrencies
}

type rateResponse struct {
	Rate       *rateDTO      `json:"rate"`
	Currencies []currencyDTO `json:"currencies"`
}

type rateDTO struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
	Rate  string `json:"rate"`
}

type currencyDTO struct {
	Id           string `json:"id"`
	Kind         string `json:"kind"`
	Symbol       string `json:"symbol"`
	Code         string `json:"code"`
	Fraction     uint8  `json:"fraction"`
	RateFraction uint8  `json:"rateFraction"`
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	ChainId      string `json:"networkHexChainId"`
	Address      string `json:"address"`
}

// Client fetches FX rates for tokens from the price oracle REST API.
type Client struct {
	client *gresty.Client
}

func NewClient(baseUrl string) (*Client, error) {
	if baseUrl == "" {
		return nil, errors.New("oracle URL cannot be empty")
	}
	client := gresty.New()
	client.SetBaseURL(baseUrl)
	client.OnAfterResponse(func(client *gresty.Client, response *gresty.Response) error {
		statusCode := response.StatusCode()
		if statusCode >= http.StatusBadRequest {
			method := response.Request.Method
			url := response.Request.URL
			return fmt.Errorf("%d cannot %s %s: %w", statusCode, method, url, errOracleHTTPError)
		}
		return nil
	})
	return &Client{client: client}, nil
}

// FetchTokenRate resolves the rate for one crypto token against the user's
// default fiat currency. Asking for a fiat base is a programming error:
// fiat currencies never have a rate fetched.
func (c *Client) FetchTokenRate(ctx context.Context, token currency.Currency, quote currency.CurrencyId) (*TokenRate, error) {
	if token.IsFiat() {
		panic(fmt.Sprintf("rate fetch for fiat currency %s", token.Id))
	}

	var body rateResponse
	_, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("token", token.Address).
		SetQueryParam("network", token.NetworkHexChainId).
		SetQueryParam("quote", string(quote)).
		SetResult(&body).
		Get("/v1/rates")
	if err != nil {
		log.Error("oracle rate request failed", "token", token.Id, "err", err)
		return nil, err
	}

	return validate(&body, token.Id, quote)
}

// validate enforces the response shape strictly before any field is used,
// including that the rate answers the pair that was actually requested. A
// rate keyed to some other base would blow up downstream in ApplyRate.
func validate(body *rateResponse, wantBase, wantQuote currency.CurrencyId) (*TokenRate, error) {
	if body.Rate == nil {
		return nil, &ParseError{Field: "rate", Err: errors.New("missing")}
	}
	if body.Rate.Base == "" {
		return nil, &ParseError{Field: "rate.base", Err: errors.New("empty")}
	}
	if body.Rate.Quote == "" {
		return nil, &ParseError{Field: "rate.quote", Err: errors.New("empty")}
	}
	rateInt, ok := new(big.Int).SetString(body.Rate.Rate, 10)
	if !ok {
		return nil, &ParseError{Field: "rate.rate", Err: fmt.Errorf("not an integer: %q", body.Rate.Rate)}
	}
	if len(body.Currencies) == 0 {
		return nil, &ParseError{Field: "currencies", Err: errors.New("empty")}
	}

	currencies := make(currency.KnownCurrencies, len(body.Currencies))
	for i, dto := range body.Currencies {
		if dto.Id == "" {
			return nil, &ParseError{Field: fmt.Sprintf("currencies[%d].id", i), Err: errors.New("empty")}
		}
		kind, err := currency.ParseKind(dto.Kind)
		if err != nil {
			return nil, &ParseError{Field: fmt.Sprintf("currencies[%d].kind", i), Err: err}
		}
		if dto.Symbol == "" {
			return nil, &ParseError{Field: fmt.Sprintf("currencies[%d].symbol", i), Err: errors.New("empty")}
		}
		currencies[currency.CurrencyId(dto.Id)] = currency.Currency{
			Id:                currency.CurrencyId(dto.Id),
			Kind:              kind,
			Symbol:            dto.Symbol,
			Code:              dto.Code,
			Fraction:          dto.Fraction,
			RateFraction:      dto.RateFraction,
			Name:              dto.Name,
			Icon:              dto.Icon,
			NetworkHexChainId: dto.ChainId,
			Address:           dto.Address,
		}
	}

	base := currency.CurrencyId(body.Rate.Base)
	quote := currency.CurrencyId(body.Rate.Quote)
	if base != wantBase {
		return nil, &ParseError{Field: "rate.base", Err: fmt.Errorf("got %s, requested %s", base, wantBase)}
	}
	if quote != wantQuote {
		return nil, &ParseError{Field: "rate.quote", Err: fmt.Errorf("got %s, requested %s", quote, wantQuote)}
	}
	if _, ok := currencies.Lookup(base); !ok {
		return nil, &ParseError{Field: "rate.base", Err: fmt.Errorf("currency %s not in dictionary", base)}
	}
	if _, ok := currencies.Lookup(quote); !ok {
		return nil, &ParseError{Field: "rate.quote", Err: fmt.Errorf("currency %s not in dictionary", quote)}
	}

	return &TokenRate{
		Rate:       currency.NewFXRate(base, quote, rateInt),
		Currencies: currencies,
	}, nil
}
