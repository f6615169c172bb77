package clock

import (
	"context"
	"sync"
	"time"
)

// LoopFn runs fn at the given interval until closed, then runs onClose.
// A slow fn delays the next tick rather than overlapping with it.
type LoopFn struct {
	clock Clock

	fn      func(ctx context.Context)
	onClose func() error

	ctx    context.Context
	cancel context.CancelFunc
	ticker Ticker
	wg     sync.WaitGroup
}

// NewLoopFn creates and starts the loop. onClose may be nil.
func NewLoopFn(clock Clock, fn func(ctx context.Context), onClose func() error, interval time.Duration) *LoopFn {
	ctx, cancel := context.WithCancel(context.Background())
	lf := &LoopFn{
		clock:   clock,
		fn:      fn,
		onClose: onClose,
		ctx:     ctx,
		cancel:  cancel,
		ticker:  clock.NewTicker(interval),
	}
	lf.wg.Add(1)
	go lf.work()
	return lf
}

func (lf *LoopFn) work() {
	defer lf.wg.Done()
	for {
		select {
		case <-lf.ctx.Done():
			return
		case <-lf.ticker.Ch():
			lf.fn(lf.ctx)
		}
	}
}

// Close stops the loop, waits for a tick in flight, and runs onClose.
func (lf *LoopFn) Close() error {
	lf.cancel()
	lf.ticker.Stop()
	lf.wg.Wait()
	if lf.onClose != nil {
		return lf.onClose()
	}
	return nil
}
