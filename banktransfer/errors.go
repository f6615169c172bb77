package banktransfer

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Domain errors recovered from provider error payloads. Each one renders as
// actionable guidance in the UI instead of a generic failure.
var (
	ErrInvalidIBAN             = errors.New("bank account iban is invalid")
	ErrAccountSortCodeMismatch = errors.New("account number and sort code do not match")
	ErrSessionExpired          = errors.New("provider session expired, re-login required")
	ErrKycNotApproved          = errors.New("kyc is not approved yet")
)

// UnexpectedProviderError carries the raw statusCode/message pair for
// telemetry when no known pattern matches.
type UnexpectedProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *UnexpectedProviderError) Error() string {
	return fmt.Sprintf("unexpected provider error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// errorBody is the provider's error envelope: a statusCode/message pair.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	ErrorCode  string `json:"error"`
	Message    string `json:"message"`
}

// classifyError maps a provider error payload to a typed domain error by
// substring matching, preserving the provider's current (unversioned)
// behavior. The patterns mirror the live API exactly; if the provider ever
// ships structured codes this table is the single place to swap.
func classifyError(httpStatus int, body errorBody) error {
	message := strings.ToLower(body.Message)
	code := strings.ToUpper(body.ErrorCode)

	switch {
	case strings.Contains(code, "BENEFICIARY_DETAILS_INVALID") && strings.Contains(message, "iban_invalid"):
		return ErrInvalidIBAN
	case strings.Contains(code, "BENEFICIARY_DETAILS_INVALID") && strings.Contains(message, "account_sort_code_mismatch"):
		return ErrAccountSortCodeMismatch
	case httpStatus == http.StatusUnauthorized && strings.Contains(message, "session"):
		return ErrSessionExpired
	case strings.Contains(message, "session_id_not_found"):
		return ErrSessionExpired
	case strings.Contains(code, "KYC_NOT_APPROVED"), strings.Contains(message, "kyc_not_approved"):
		return ErrKycNotApproved
	default:
		return &UnexpectedProviderError{StatusCode: httpStatus, Code: body.ErrorCode, Message: body.Message}
	}
}
