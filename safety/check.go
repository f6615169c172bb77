package safety

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Severity string

const (
	// SeverityCaution soft-warns: the user may dismiss it.
	SeverityCaution Severity = "Caution"
	// SeverityDanger hard-blocks: approval needs an explicit extra confirmation.
	SeverityDanger Severity = "Danger"
)

type CheckState string

const (
	StatePassed CheckState = "Passed"
	StateFailed CheckState = "Failed"
)

// Result is the computed outcome embedded in every check variant. A check is
// immutable once computed; a new request recomputes the whole battery.
type Result struct {
	State    CheckState
	Severity Severity
}

func Passed() Result {
	return Result{State: StatePassed}
}

func Failed(severity Severity) Result {
	return Result{State: StateFailed, Severity: severity}
}

// Check is the closed set of safety-check variants. Consumers switch over
// the concrete types; UnexpectedCheck guards the unreachable default.
type Check interface {
	Variant() string
	Outcome() Result

	isCheck()
}

func UnexpectedCheck(c Check) error {
	return fmt.Errorf("unexpected safety check variant: %T", c)
}

// Connection checks.

type BlacklistCheck struct {
	Result
	Site string
}

func (c BlacklistCheck) Variant() string { return "blacklist" }
func (c BlacklistCheck) Outcome() Result { return c.Result }
func (c BlacklistCheck) isCheck()        {}

type SuspiciousCharactersCheck struct {
	Result
	Site string
}

func (c SuspiciousCharactersCheck) Variant() string { return "suspicious_characters" }
func (c SuspiciousCharactersCheck) Outcome() Result { return c.Result }
func (c SuspiciousCharactersCheck) isCheck()        {}

// Transaction checks.

type TransactionSimulationCheck struct {
	Result
	FailureReason string
}

func (c TransactionSimulationCheck) Variant() string { return "transaction_simulation" }
func (c TransactionSimulationCheck) Outcome() Result { return c.Result }
func (c TransactionSimulationCheck) isCheck()        {}

type SmartContractBlacklistCheck struct {
	Result
	Contract common.Address
}

func (c SmartContractBlacklistCheck) Variant() string { return "smart_contract_blacklist" }
func (c SmartContractBlacklistCheck) Outcome() Result { return c.Result }
func (c SmartContractBlacklistCheck) isCheck()        {}

type TokenVerificationCheck struct {
	Result
	Token common.Address
}

func (c TokenVerificationCheck) Variant() string { return "token_verification" }
func (c TokenVerificationCheck) Outcome() Result { return c.Result }
func (c TokenVerificationCheck) isCheck()        {}

type NftCollectionCheck struct {
	Result
	Collection common.Address
}

func (c NftCollectionCheck) Variant() string { return "nft_collection" }
func (c NftCollectionCheck) Outcome() Result { return c.Result }
func (c NftCollectionCheck) isCheck()        {}

type P2pReceiverTypeCheck struct {
	Result
	Receiver common.Address
}

func (c P2pReceiverTypeCheck) Variant() string { return "p2p_receiver_type" }
func (c P2pReceiverTypeCheck) Outcome() Result { return c.Result }
func (c P2pReceiverTypeCheck) isCheck()        {}

type ApprovalSpenderTypeCheck struct {
	Result
	Spender common.Address
}

func (c ApprovalSpenderTypeCheck) Variant() string { return "approval_spender_type" }
func (c ApprovalSpenderTypeCheck) Outcome() Result { return c.Result }
func (c ApprovalSpenderTypeCheck) isCheck()        {}

type ApprovalExpirationCheck struct {
	Result
	Expiration time.Time
}

func (c ApprovalExpirationCheck) Variant() string { return "approval_expiration" }
func (c ApprovalExpirationCheck) Outcome() Result { return c.Result }
func (c ApprovalExpirationCheck) isCheck()        {}

// Sign-message checks.

type SpendLimitCheck struct {
	Result
}

func (c SpendLimitCheck) Variant() string { return "spend_limit" }
func (c SpendLimitCheck) Outcome() Result { return c.Result }
func (c SpendLimitCheck) isCheck()        {}

type ExpirationCheck struct {
	Result
}

func (c ExpirationCheck) Variant() string { return "expiration" }
func (c ExpirationCheck) Outcome() Result { return c.Result }
func (c ExpirationCheck) isCheck()        {}

// FindNftCollectionCheck locates the check for one collection. A miss means
// no badge for that collection, which is distinct from a passed check.
func FindNftCollectionCheck(checks []Check, collection common.Address) (NftCollectionCheck, bool) {
	for _, c := range checks {
		if nft, ok := c.(NftCollectionCheck); ok && nft.Collection == collection {
			return nft, true
		}
	}
	return NftCollectionCheck{}, false
}
