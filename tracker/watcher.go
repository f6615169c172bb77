package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/walletsuite/wallet-tx-core/common/clock"
	"github.com/walletsuite/wallet-tx-core/common/retry"
	"github.com/walletsuite/wallet-tx-core/common/tasks"
	"github.com/walletsuite/wallet-tx-core/rpcclient"
)

// ReceiptSource is the slice of the chain client the watcher polls.
type ReceiptSource interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*rpcclient.Transaction, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*rpcclient.Receipt, error)
}

// TransactionStore persists watcher snapshots between restarts.
type TransactionStore interface {
	StoreTransaction(tx SubmittedTransaction) error
	QueryUnfinalizedTransactions() ([]SubmittedTransaction, error)
}

// Watcher drives submitted transactions through their state machine by
// polling the chain on a fixed interval. Each observed progression is
// persisted and published to subscribers; stale observations are dropped.
type Watcher struct {
	source ReceiptSource
	store  TransactionStore
	clock  clock.Clock

	pollInterval time.Duration

	mu          sync.Mutex
	pending     map[common.Hash]SubmittedTransaction
	subscribers []chan SubmittedTransaction

	// tick hands progressed transactions to the handler task; persistence
	// and publishing never run on the poll-loop goroutine.
	updates chan SubmittedTransaction

	loop           *clock.LoopFn
	resourceCtx    context.Context
	resourceCancel context.CancelFunc
	tasks          tasks.Group
}

func NewWatcher(source ReceiptSource, store TransactionStore, cl clock.Clock, pollInterval time.Duration, shutdown context.CancelCauseFunc) *Watcher {
	resCtx, resCancel := context.WithCancel(context.Background())
	return &Watcher{
		source:         source,
		store:          store,
		clock:          cl,
		pollInterval:   pollInterval,
		pending:        make(map[common.Hash]SubmittedTransaction),
		updates:        make(chan SubmittedTransaction),
		resourceCtx:    resCtx,
		resourceCancel: resCancel,
		tasks: tasks.Group{
			HandleCrit: func(err error) {
				shutdown(fmt.Errorf("critical error in transaction watcher: %w", err))
			},
		},
	}
}

func (w *Watcher) Start() error {
	log.Info("transaction watcher starting", "pollInterval", w.pollInterval)
	unfinalized, err := w.store.QueryUnfinalizedTransactions()
	if err != nil {
		return fmt.Errorf("failed to load unfinalized transactions: %w", err)
	}
	w.mu.Lock()
	for _, tx := range unfinalized {
		w.pending[tx.Hash] = tx
	}
	w.mu.Unlock()
	log.Info("resumed unfinalized transactions", "count", len(unfinalized))

	w.tasks.Go(func() error {
		for tx := range w.updates {
			if err := w.handleUpdate(tx); err != nil {
				log.Error("failed to handle transaction update", "hash", tx.Hash, "err", err)
				return fmt.Errorf("failed to handle transaction update: %w", err)
			}
		}
		return nil
	})

	w.loop = clock.NewLoopFn(w.clock, w.tick, func() error {
		log.Info("transaction watcher poll loop stopped")
		return nil
	}, w.pollInterval)
	return nil
}

func (w *Watcher) Close() error {
	var result error
	if w.loop != nil {
		if err := w.loop.Close(); err != nil {
			result = errors.Wrap(err, "failed to stop watcher poll loop")
		}
	}
	// the loop is stopped, no tick can produce anymore
	close(w.updates)
	w.resourceCancel()
	if err := w.tasks.Wait(); err != nil {
		result = errors.Wrap(err, "failed to wait for watcher tasks")
	}

	w.mu.Lock()
	for _, sub := range w.subscribers {
		close(sub)
	}
	w.subscribers = nil
	w.mu.Unlock()
	return result
}

// Track registers a freshly broadcast transaction in the queued state.
func (w *Watcher) Track(hash common.Hash) (SubmittedTransaction, error) {
	tx := NewSubmittedTransaction(hash, w.clock.Now())
	if err := w.storeWithRetry(tx); err != nil {
		return SubmittedTransaction{}, err
	}
	w.mu.Lock()
	w.pending[hash] = tx
	w.mu.Unlock()
	w.publish(tx)
	log.Info("tracking transaction", "hash", hash)
	return tx, nil
}

// Subscribe returns a channel of state snapshots. Slow consumers miss
// updates rather than stalling the watcher.
func (w *Watcher) Subscribe() <-chan SubmittedTransaction {
	ch := make(chan SubmittedTransaction, 16)
	w.mu.Lock()
	w.subscribers = append(w.subscribers, ch)
	w.mu.Unlock()
	return ch
}

func (w *Watcher) tick(ctx context.Context) {
	w.mu.Lock()
	pending := make([]SubmittedTransaction, 0, len(w.pending))
	for _, tx := range w.pending {
		pending = append(pending, tx)
	}
	w.mu.Unlock()

	for _, tx := range pending {
		next, progressed, err := w.observe(ctx, tx)
		if err != nil {
			log.Warn("failed to poll transaction, will retry next tick", "hash", tx.Hash, "err", err)
			continue
		}
		if !progressed {
			continue
		}
		select {
		case w.updates <- next:
		case <-ctx.Done():
			return
		}
	}
}

// handleUpdate persists and publishes a progressed transaction. It runs on
// the task group so a crash routes through HandleCrit instead of killing
// the poll loop goroutine.
func (w *Watcher) handleUpdate(next SubmittedTransaction) error {
	if err := w.storeWithRetry(next); err != nil {
		return err
	}
	w.mu.Lock()
	if next.State.Terminal() {
		delete(w.pending, next.Hash)
	} else {
		w.pending[next.Hash] = next
	}
	w.mu.Unlock()
	w.publish(next)
	log.Info("transaction progressed", "hash", next.Hash, "state", next.State)
	return nil
}

// observe polls the chain once for a single transaction and applies the
// resulting transition, if any.
func (w *Watcher) observe(ctx context.Context, tx SubmittedTransaction) (SubmittedTransaction, bool, error) {
	receipt, err := w.source.TransactionReceipt(ctx, tx.Hash)
	if err != nil {
		return tx, false, err
	}
	if receipt != nil {
		var next SubmittedTransaction
		var applyErr error
		if receipt.Status == rpcclient.ReceiptStatusSuccess {
			next, applyErr = tx.ApplyCompletion(receipt.GasInfo(), w.clock.Now())
		} else {
			next, applyErr = tx.ApplyFailure(receipt.GasInfo(), w.clock.Now())
		}
		if applyErr != nil {
			if errors.Is(applyErr, ErrStaleTransition) {
				log.Warn("dropping stale receipt observation", "hash", tx.Hash, "err", applyErr)
				return tx, false, nil
			}
			return tx, false, applyErr
		}
		return next, true, nil
	}

	if tx.State != StateQueued {
		return tx, false, nil
	}
	txn, err := w.source.TransactionByHash(ctx, tx.Hash)
	if err != nil {
		return tx, false, err
	}
	if txn == nil || txn.BlockNumber == nil {
		return tx, false, nil
	}
	// mined but no receipt yet, the cost is unknown until the receipt lands
	next, applyErr := tx.ApplyInclusion(nil)
	if applyErr != nil {
		if errors.Is(applyErr, ErrStaleTransition) {
			return tx, false, nil
		}
		return tx, false, applyErr
	}
	return next, true, nil
}

func (w *Watcher) storeWithRetry(tx SubmittedTransaction) error {
	retryStrategy := &retry.ExponentialStrategy{Min: time.Second, Max: 20 * time.Second, MaxJitter: 250 * time.Millisecond}
	_, err := retry.Do[interface{}](w.resourceCtx, 5, retryStrategy, func() (interface{}, error) {
		return nil, w.store.StoreTransaction(tx)
	})
	return err
}

func (w *Watcher) publish(tx SubmittedTransaction) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sub := range w.subscribers {
		select {
		case sub <- tx:
		default:
		}
	}
}
