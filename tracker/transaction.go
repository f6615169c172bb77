package tracker

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/walletsuite/wallet-tx-core/fee"
)

type State string

const (
	StateQueued          State = "queued"
	StateIncludedInBlock State = "included_in_block"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

// rank orders states for the monotonicity guard. A transition may only move
// to a strictly higher rank; anything else is a stale observation.
func (s State) rank() int {
	switch s {
	case StateQueued:
		return 0
	case StateIncludedInBlock:
		return 1
	case StateCompleted, StateFailed:
		return 2
	default:
		panic(fmt.Sprintf("unexpected transaction state: %s", s))
	}
}

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// ErrStaleTransition marks an observation that arrived after a later state
// was already recorded. The caller ignores it and keeps the current value.
var ErrStaleTransition = errors.New("stale transaction state transition")

// SubmittedTransaction is a passive record of one broadcast transaction.
// Fields accrete monotonically as the chain watcher observes progress: Hash
// and QueuedAt are fixed at creation, inclusion adds GasInfo, terminal
// states add their timestamp. Transitions return a new value; the receiver
// is never mutated.
type SubmittedTransaction struct {
	Hash     common.Hash
	State    State
	QueuedAt time.Time

	// set from included_in_block onward
	GasInfo fee.GasInfo

	// set in the matching terminal state only
	CompletedAt time.Time
	FailedAt    time.Time
}

func NewSubmittedTransaction(hash common.Hash, queuedAt time.Time) SubmittedTransaction {
	return SubmittedTransaction{Hash: hash, State: StateQueued, QueuedAt: queuedAt}
}

func (tx SubmittedTransaction) guard(to State) error {
	if to.rank() <= tx.State.rank() {
		return errors.Wrapf(ErrStaleTransition, "%s -> %s for %s", tx.State, to, tx.Hash)
	}
	return nil
}

// ApplyInclusion records the transaction mined into a block. The gas info
// may still be an estimate; the terminal transition finalizes it from the
// receipt.
func (tx SubmittedTransaction) ApplyInclusion(gasInfo fee.GasInfo) (SubmittedTransaction, error) {
	if err := tx.guard(StateIncludedInBlock); err != nil {
		return tx, err
	}
	next := tx
	next.State = StateIncludedInBlock
	next.GasInfo = gasInfo
	return next, nil
}

// ApplyCompletion records a successful receipt. Valid from queued too:
// inclusion and success can be observed in the same poll.
func (tx SubmittedTransaction) ApplyCompletion(gasInfo fee.GasInfo, at time.Time) (SubmittedTransaction, error) {
	if err := tx.guard(StateCompleted); err != nil {
		return tx, err
	}
	next := tx
	next.State = StateCompleted
	next.GasInfo = gasInfo
	next.CompletedAt = at
	return next, nil
}

// ApplyFailure records a reverted receipt.
func (tx SubmittedTransaction) ApplyFailure(gasInfo fee.GasInfo, at time.Time) (SubmittedTransaction, error) {
	if err := tx.guard(StateFailed); err != nil {
		return tx, err
	}
	next := tx
	next.State = StateFailed
	next.GasInfo = gasInfo
	next.FailedAt = at
	return next, nil
}

func ParseState(s string) (State, error) {
	switch State(s) {
	case StateQueued, StateIncludedInBlock, StateCompleted, StateFailed:
		return State(s), nil
	default:
		return StateQueued, fmt.Errorf("invalid transaction state: %s", s)
	}
}
