package banktransfer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/walletsuite/wallet-tx-core/currency"
)

func TestClassifyInvalidIban(t *testing.T) {
	err := classifyError(http.StatusBadRequest, errorBody{
		StatusCode: 400,
		ErrorCode:  "BENEFICIARY_DETAILS_INVALID",
		Message:    "beneficiary rejected: iban_invalid",
	})
	require.ErrorIs(t, err, ErrInvalidIBAN)
}

func TestClassifyAccountSortCodeMismatch(t *testing.T) {
	err := classifyError(http.StatusBadRequest, errorBody{
		ErrorCode: "BENEFICIARY_DETAILS_INVALID",
		Message:   "beneficiary rejected: account_sort_code_mismatch",
	})
	require.ErrorIs(t, err, ErrAccountSortCodeMismatch)
}

func TestClassifySessionExpired(t *testing.T) {
	err := classifyError(http.StatusUnauthorized, errorBody{Message: "Session abc has expired"})
	require.ErrorIs(t, err, ErrSessionExpired)

	err = classifyError(http.StatusBadRequest, errorBody{Message: "session_id_not_found"})
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestClassifyKycNotApproved(t *testing.T) {
	err := classifyError(http.StatusForbidden, errorBody{ErrorCode: "KYC_NOT_APPROVED"})
	require.ErrorIs(t, err, ErrKycNotApproved)
}

func TestClassifyUnknownIsUnexpected(t *testing.T) {
	err := classifyError(http.StatusInternalServerError, errorBody{
		StatusCode: 500,
		ErrorCode:  "SOMETHING_NEW",
		Message:    "never seen before",
	})

	var unexpected *UnexpectedProviderError
	require.ErrorAs(t, err, &unexpected)
	require.Equal(t, http.StatusInternalServerError, unexpected.StatusCode)
	require.Equal(t, "SOMETHING_NEW", unexpected.Code)
}

func TestCreateBankAccountErrorClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"statusCode": 400, "error": "BENEFICIARY_DETAILS_INVALID", "message": "iban_invalid"}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "session-1")
	require.NoError(t, err)

	_, err = client.CreateBankAccount(context.Background(), CreateBankAccountRequest{Currency: "EUR", Iban: "not-an-iban"})
	require.ErrorIs(t, err, ErrInvalidIBAN)
}

func TestCreateBankAccountSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "session-1", r.Header.Get("unblock-session-id"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"uuid": "b-1", "currency": "EUR", "iban": "DE02100100100006820101"}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "session-1")
	require.NoError(t, err)

	account, err := client.CreateBankAccount(context.Background(), CreateBankAccountRequest{Currency: "EUR", Iban: "DE02100100100006820101"})
	require.NoError(t, err)
	require.Equal(t, "b-1", account.Uuid)
}

func TestApplyTransferFee(t *testing.T) {
	amount := currency.NewMoneyFromInt64(10_000, "EUR") // 100.00 EUR
	got := ApplyTransferFee(amount, TransferFee{PercentageFee: 0.0125})
	require.Equal(t, int64(125), got.Amount.Int64()) // 1.25 EUR
	require.Equal(t, currency.CurrencyId("EUR"), got.CurrencyId)
}
