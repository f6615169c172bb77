package safety

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/walletsuite/wallet-tx-core/currency"
)

// The engine aggregates context data it does not own. Each port is an
// external collaborator (simulation RPC, blacklist service, verification
// service); a port failure makes the whole evaluation retryable instead of
// silently passing the check.

type Simulation struct {
	WillRevert    bool
	RevertReason  string
	BalanceChange *currency.Money
}

type Simulator interface {
	Simulate(ctx context.Context, req TransactionRequest) (Simulation, error)
}

type BlacklistSource interface {
	IsBlacklisted(ctx context.Context, address common.Address) (bool, error)
	IsSiteBlacklisted(ctx context.Context, site string) (bool, error)
}

type TokenVerifier interface {
	IsVerified(ctx context.Context, token common.Address) (bool, error)
	IsCollectionVerified(ctx context.Context, collection common.Address) (bool, error)
}

type AddressKind string

const (
	AddressKindEOA      AddressKind = "eoa"
	AddressKindContract AddressKind = "contract"
)

type AddressTyper interface {
	KindOf(ctx context.Context, address common.Address) (AddressKind, error)
}

// Request kinds. The applicable check battery differs per kind.

type ConnectionRequest struct {
	Site string
}

type TransactionRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte

	// Optional request features; nil/empty means the matching checks are
	// not applicable and are skipped, not passed.
	ApprovalSpender    *common.Address
	ApprovalExpiration time.Time
	P2pReceiver        *common.Address
	Tokens             []common.Address
	NftCollections     []common.Address

	Now time.Time
}

type SignMessageRequest struct {
	SpendLimit *currency.Money
	SpendCap   *currency.Money
	Expiration time.Time
	Now        time.Time
}

// longExpiry is the permit/approval expiry beyond which a request gets a
// caution.
const longExpiry = 24 * time.Hour * 30

type Engine struct {
	simulator Simulator
	blacklist BlacklistSource
	verifier  TokenVerifier
	typer     AddressTyper
}

func NewEngine(simulator Simulator, blacklist BlacklistSource, verifier TokenVerifier, typer AddressTyper) *Engine {
	return &Engine{simulator: simulator, blacklist: blacklist, verifier: verifier, typer: typer}
}

// EvaluateConnection runs the connection battery. The returned slice order
// is the fixed variant order regardless of completion order.
func (e *Engine) EvaluateConnection(ctx context.Context, req ConnectionRequest) ([]Check, error) {
	var blacklistCheck Check
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		listed, err := e.blacklist.IsSiteBlacklisted(gctx, req.Site)
		if err != nil {
			return fmt.Errorf("site blacklist lookup: %w", err)
		}
		result := Passed()
		if listed {
			result = Failed(SeverityDanger)
		}
		blacklistCheck = BlacklistCheck{Result: result, Site: req.Site}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	suspicious := SuspiciousCharactersCheck{Result: Passed(), Site: req.Site}
	if hasSuspiciousCharacters(req.Site) {
		suspicious.Result = Failed(SeverityCaution)
	}

	return []Check{blacklistCheck, suspicious}, nil
}

// EvaluateTransaction runs the transaction battery. Checks run concurrently
// but land in fixed slots, so the output order never depends on scheduling.
func (e *Engine) EvaluateTransaction(ctx context.Context, req TransactionRequest) ([]Check, error) {
	const (
		slotSimulation = iota
		slotContractBlacklist
		slotReceiverType
		slotSpenderType
		slotApprovalExpiration
		slotFirstToken
	)

	slots := make([]Check, slotFirstToken+len(req.Tokens)+len(req.NftCollections))
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sim, err := e.simulator.Simulate(gctx, req)
		if err != nil {
			return fmt.Errorf("transaction simulation: %w", err)
		}
		result := Passed()
		reason := ""
		if sim.WillRevert {
			result = Failed(SeverityDanger)
			reason = sim.RevertReason
		}
		slots[slotSimulation] = TransactionSimulationCheck{Result: result, FailureReason: reason}
		return nil
	})

	g.Go(func() error {
		listed, err := e.blacklist.IsBlacklisted(gctx, req.To)
		if err != nil {
			return fmt.Errorf("contract blacklist lookup: %w", err)
		}
		result := Passed()
		if listed {
			result = Failed(SeverityDanger)
		}
		slots[slotContractBlacklist] = SmartContractBlacklistCheck{Result: result, Contract: req.To}
		return nil
	})

	if receiver := req.P2pReceiver; receiver != nil {
		g.Go(func() error {
			kind, err := e.typer.KindOf(gctx, *receiver)
			if err != nil {
				return fmt.Errorf("receiver type lookup: %w", err)
			}
			result := Passed()
			if kind == AddressKindContract {
				// Sending funds person-to-person into a contract is
				// almost always a mistake.
				result = Failed(SeverityCaution)
			}
			slots[slotReceiverType] = P2pReceiverTypeCheck{Result: result, Receiver: *receiver}
			return nil
		})
	}

	if spender := req.ApprovalSpender; spender != nil {
		g.Go(func() error {
			kind, err := e.typer.KindOf(gctx, *spender)
			if err != nil {
				return fmt.Errorf("spender type lookup: %w", err)
			}
			result := Passed()
			if kind == AddressKindEOA {
				// Approving an EOA spender is a drain pattern.
				result = Failed(SeverityDanger)
			}
			slots[slotSpenderType] = ApprovalSpenderTypeCheck{Result: result, Spender: *spender}
			return nil
		})
	}

	if req.ApprovalSpender != nil && !req.ApprovalExpiration.IsZero() {
		result := Passed()
		if req.ApprovalExpiration.Sub(req.Now) > longExpiry {
			result = Failed(SeverityCaution)
		}
		slots[slotApprovalExpiration] = ApprovalExpirationCheck{Result: result, Expiration: req.ApprovalExpiration}
	}

	for i, token := range req.Tokens {
		slot := slotFirstToken + i
		token := token
		g.Go(func() error {
			verified, err := e.verifier.IsVerified(gctx, token)
			if err != nil {
				return fmt.Errorf("token verification lookup: %w", err)
			}
			result := Passed()
			if !verified {
				result = Failed(SeverityCaution)
			}
			slots[slot] = TokenVerificationCheck{Result: result, Token: token}
			return nil
		})
	}

	for i, collection := range req.NftCollections {
		slot := slotFirstToken + len(req.Tokens) + i
		collection := collection
		g.Go(func() error {
			verified, err := e.verifier.IsCollectionVerified(gctx, collection)
			if err != nil {
				return fmt.Errorf("collection verification lookup: %w", err)
			}
			result := Passed()
			if !verified {
				result = Failed(SeverityCaution)
			}
			slots[slot] = NftCollectionCheck{Result: result, Collection: collection}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Drop slots for checks that were not applicable to this request.
	checks := make([]Check, 0, len(slots))
	for _, c := range slots {
		if c != nil {
			checks = append(checks, c)
		}
	}
	return checks, nil
}

// EvaluateSignMessage runs the sign-message battery. A spend limit quoted
// in a different currency than its cap cannot be compared, so that request
// is rejected outright rather than waved through.
func (e *Engine) EvaluateSignMessage(req SignMessageRequest) ([]Check, error) {
	spendLimit := SpendLimitCheck{Result: Passed()}
	if req.SpendLimit != nil && req.SpendCap != nil {
		if req.SpendLimit.CurrencyId != req.SpendCap.CurrencyId {
			return nil, fmt.Errorf("spend limit in %s cannot be compared against cap in %s",
				req.SpendLimit.CurrencyId, req.SpendCap.CurrencyId)
		}
		if currency.IsGreaterThan(*req.SpendLimit, *req.SpendCap) {
			spendLimit.Result = Failed(SeverityCaution)
		}
	}

	expiration := ExpirationCheck{Result: Passed()}
	if !req.Expiration.IsZero() && req.Expiration.Sub(req.Now) > longExpiry {
		expiration.Result = Failed(SeverityCaution)
	}

	return []Check{spendLimit, expiration}, nil
}

func hasSuspiciousCharacters(site string) bool {
	for _, r := range site {
		if r > 0x7f {
			return true
		}
	}
	return strings.Contains(site, "xn--")
}
