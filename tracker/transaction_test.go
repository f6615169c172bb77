package tracker

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/walletsuite/wallet-tx-core/fee"
)

var (
	testHash = common.HexToHash("0xdeadbeef")
	queuedAt = time.Unix(1_700_000_000, 0)
)

func testGasInfo() fee.GasInfo {
	return fee.GenericGasInfo{GasUsed: big.NewInt(21000), EffectiveGasPrice: big.NewInt(1_000_000_000)}
}

func TestHappyPath(t *testing.T) {
	tx := NewSubmittedTransaction(testHash, queuedAt)
	require.Equal(t, StateQueued, tx.State)
	require.False(t, tx.State.Terminal())

	included, err := tx.ApplyInclusion(testGasInfo())
	require.NoError(t, err)
	require.Equal(t, StateIncludedInBlock, included.State)
	require.Equal(t, testHash, included.Hash)
	require.Equal(t, queuedAt, included.QueuedAt)
	require.NotNil(t, included.GasInfo)

	done, err := included.ApplyCompletion(testGasInfo(), queuedAt.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, StateCompleted, done.State)
	require.True(t, done.State.Terminal())
	require.Equal(t, queuedAt.Add(time.Minute), done.CompletedAt)
}

func TestDirectQueuedToFailed(t *testing.T) {
	tx := NewSubmittedTransaction(testHash, queuedAt)

	failed, err := tx.ApplyFailure(testGasInfo(), queuedAt.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, StateFailed, failed.State)
	require.True(t, failed.State.Terminal())
}

func TestStaleObservationIsIgnored(t *testing.T) {
	tx := NewSubmittedTransaction(testHash, queuedAt)
	done, err := tx.ApplyCompletion(testGasInfo(), queuedAt.Add(time.Minute))
	require.NoError(t, err)

	// A late inclusion observation must not regress the record.
	after, err := done.ApplyInclusion(testGasInfo())
	require.ErrorIs(t, err, ErrStaleTransition)
	require.Equal(t, done, after)

	// Terminal states never transition again, not even to another terminal.
	after, err = done.ApplyFailure(testGasInfo(), queuedAt.Add(2*time.Minute))
	require.ErrorIs(t, err, ErrStaleTransition)
	require.Equal(t, done, after)
}

func TestDoubleInclusionIsStale(t *testing.T) {
	tx := NewSubmittedTransaction(testHash, queuedAt)
	included, err := tx.ApplyInclusion(testGasInfo())
	require.NoError(t, err)

	_, err = included.ApplyInclusion(testGasInfo())
	require.ErrorIs(t, err, ErrStaleTransition)
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	tx := NewSubmittedTransaction(testHash, queuedAt)
	_, err := tx.ApplyInclusion(testGasInfo())
	require.NoError(t, err)
	require.Equal(t, StateQueued, tx.State)
	require.Nil(t, tx.GasInfo)
}

func TestParseState(t *testing.T) {
	for _, s := range []State{StateQueued, StateIncludedInBlock, StateCompleted, StateFailed} {
		parsed, err := ParseState(string(s))
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	_, err := ParseState("pending")
	require.Error(t, err)
}
