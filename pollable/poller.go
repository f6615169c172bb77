package pollable

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/walletsuite/wallet-tx-core/common/clock"
)

// FetchFunc loads the value for one set of params. It must honor ctx
// cancellation; the poller cancels superseded fetches.
type FetchFunc[P comparable, D any] func(ctx context.Context, params P) (D, error)

// Poller owns at most one outstanding fetch for a logical value and
// publishes Pollable snapshots to subscribers. Responses from superseded
// fetches are discarded by generation, so a slow stale response can never
// overwrite a newer one regardless of arrival order.
type Poller[P comparable, D any] struct {
	fetch FetchFunc[P, D]
	clock clock.Clock

	mu             sync.Mutex
	state          Pollable[P, D]
	generation     uint64
	inflight       bool
	inflightParams P
	inflightCancel context.CancelFunc
	subscribers    []chan Pollable[P, D]
	loop           *clock.LoopFn
	closed         bool
}

func NewPoller[P comparable, D any](fetch FetchFunc[P, D], clk clock.Clock) *Poller[P, D] {
	return &Poller[P, D]{
		fetch: fetch,
		clock: clk,
		state: NotAsked[P, D](),
	}
}

// State returns the current snapshot.
func (p *Poller[P, D]) State() Pollable[P, D] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe returns a channel receiving every state change. The channel is
// buffered; a slow consumer drops intermediate snapshots, never blocks the
// poller.
func (p *Poller[P, D]) Subscribe() <-chan Pollable[P, D] {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan Pollable[P, D], 16)
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// Load requests a fetch for params. A request matching the in-flight params
// is coalesced; a request with different params cancels the in-flight fetch
// and supersedes it.
func (p *Poller[P, D]) Load(ctx context.Context, params P) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.inflight {
		if p.inflightParams == params {
			return
		}
		p.inflightCancel()
	}
	p.startLocked(ctx, params)
}

// Retry re-runs the last fetch. Only meaningful in error or
// subsequent-failed state; otherwise a no-op.
func (p *Poller[P, D]) Retry(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.state.Retryable() {
		return
	}
	if p.inflight {
		p.inflightCancel()
	}
	p.startLocked(ctx, p.state.Params)
}

func (p *Poller[P, D]) startLocked(ctx context.Context, params P) {
	p.generation++
	gen := p.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	p.inflight = true
	p.inflightParams = params
	p.inflightCancel = cancel

	p.state = p.state.startFetch(params)
	p.publishLocked()

	go func() {
		data, err := p.fetch(fetchCtx, params)
		cancel()

		p.mu.Lock()
		defer p.mu.Unlock()
		// Stale-response guard: only the newest fetch may commit.
		if gen != p.generation {
			log.Debug("discarding stale poll response", "generation", gen, "current", p.generation)
			return
		}
		p.inflight = false
		if err != nil {
			p.state = p.state.fail(params, err)
		} else {
			p.state = p.state.succeed(params, data)
		}
		p.publishLocked()
	}()
}

// StartPolling re-fetches the current params at the given interval until
// StopPolling or Close. Ticks while nothing was ever loaded, or while a
// fetch is in flight, are skipped.
func (p *Poller[P, D]) StartPolling(ctx context.Context, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loop != nil || p.closed {
		return
	}
	p.loop = clock.NewLoopFn(p.clock, func(loopCtx context.Context) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed || p.inflight || p.state.Status == StatusNotAsked {
			return
		}
		p.startLocked(ctx, p.state.Params)
	}, nil, interval)
}

func (p *Poller[P, D]) StopPolling() {
	p.mu.Lock()
	loop := p.loop
	p.loop = nil
	p.mu.Unlock()
	if loop != nil {
		_ = loop.Close()
	}
}

// Close stops polling, cancels any in-flight fetch and closes subscriber
// channels.
func (p *Poller[P, D]) Close() {
	p.StopPolling()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.generation++ // orphan any in-flight result
	if p.inflight {
		p.inflightCancel()
		p.inflight = false
	}
	for _, ch := range p.subscribers {
		close(ch)
	}
	p.subscribers = nil
}

func (p *Poller[P, D]) publishLocked() {
	for _, ch := range p.subscribers {
		select {
		case ch <- p.state:
		default:
		}
	}
}
