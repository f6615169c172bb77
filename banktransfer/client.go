package banktransfer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
	gresty "github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/walletsuite/wallet-tx-core/currency"
)

// Client wraps the fiat on/off-ramp provider REST API. Only the surfaces the
// transaction/fee model consumes are exposed; onboarding stays with the
// provider's own flow.
type Client struct {
	client    *gresty.Client
	sessionId string
}

func NewClient(baseUrl, sessionId string) (*Client, error) {
	if baseUrl == "" {
		return nil, errors.New("provider URL cannot be empty")
	}
	client := gresty.New()
	client.SetBaseURL(baseUrl)
	return &Client{client: client, sessionId: sessionId}, nil
}

type BankAccount struct {
	Uuid            string `json:"uuid"`
	Currency        string `json:"currency"`
	Iban            string `json:"iban"`
	AccountNumber   string `json:"account_number"`
	SortCode        string `json:"sort_code"`
	MainBeneficiary bool   `json:"main_beneficiary"`
}

type CreateBankAccountRequest struct {
	Currency      string `json:"currency"`
	Iban          string `json:"iban,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	SortCode      string `json:"sort_code,omitempty"`
}

// CreateBankAccount registers an off-ramp beneficiary. Provider rejections
// come back as typed domain errors (ErrInvalidIBAN and friends).
func (c *Client) CreateBankAccount(ctx context.Context, req CreateBankAccountRequest) (*BankAccount, error) {
	var account BankAccount
	res, err := c.client.R().
		SetContext(ctx).
		SetHeader("unblock-session-id", c.sessionId).
		SetBody(req).
		SetResult(&account).
		Post("/user/bank-account/remote")
	if err != nil {
		log.Error("create bank account request failed", "err", err)
		return nil, err
	}
	if res.IsError() {
		return nil, c.asDomainError(res)
	}
	return &account, nil
}

type TransferFee struct {
	// PercentageFee is a multiplier fraction, not percentage points:
	// the provider quotes a 1.25% fee as 0.0125.
	PercentageFee float64 `json:"percentage_fee"`
}

// TransferFee returns the provider's fee fraction for a ramp direction.
// The caller applies it to a Money amount via ApplyTransferFee; the
// provider only ever quotes an approximate rate.
func (c *Client) TransferFee(ctx context.Context, direction string) (*TransferFee, error) {
	var out TransferFee
	res, err := c.client.R().
		SetContext(ctx).
		SetHeader("unblock-session-id", c.sessionId).
		SetQueryParam("direction", direction).
		SetResult(&out).
		Get("/fees")
	if err != nil {
		log.Error("transfer fee request failed", "err", err)
		return nil, err
	}
	if res.IsError() {
		return nil, c.asDomainError(res)
	}
	return &out, nil
}

// ApplyTransferFee computes the provider's cut of an amount by scaling it
// with the quoted fraction, so a 0.0125 fee on 100.00 EUR yields 1.25 EUR.
func ApplyTransferFee(amount currency.Money, f TransferFee) currency.Money {
	return currency.MulByNumber(amount, f.PercentageFee)
}

func (c *Client) asDomainError(res *gresty.Response) error {
	var body errorBody
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return fmt.Errorf("%d %s: unparseable error body: %w", res.StatusCode(), http.StatusText(res.StatusCode()), err)
	}
	return classifyError(res.StatusCode(), body)
}
