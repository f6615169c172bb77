package pollable

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/walletsuite/wallet-tx-core/common/clock"
)

type fetchResult struct {
	data string
	err  error
}

// blockingFetcher lets a test decide when each fetch resolves.
type blockingFetcher struct {
	gates map[string]chan fetchResult
}

func newBlockingFetcher(params ...string) *blockingFetcher {
	f := &blockingFetcher{gates: make(map[string]chan fetchResult)}
	for _, p := range params {
		f.gates[p] = make(chan fetchResult, 1)
	}
	return f
}

func (f *blockingFetcher) fetch(ctx context.Context, params string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-f.gates[params]:
		return res.data, res.err
	}
}

func (f *blockingFetcher) resolve(params, data string) {
	f.gates[params] <- fetchResult{data: data}
}

func (f *blockingFetcher) failWith(params string, err error) {
	f.gates[params] <- fetchResult{err: err}
}

func waitFor(t *testing.T, ch <-chan Pollable[string, string], status Status) Pollable[string, string] {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case state, ok := <-ch:
			require.True(t, ok, "subscription closed while waiting for %s", status)
			if state.Status == status {
				return state
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", status)
		}
	}
}

func newTestPoller(f *blockingFetcher) *Poller[string, string] {
	return NewPoller[string, string](f.fetch, clock.NewDeterministicClock(time.UnixMilli(0)))
}

func TestLoadingToLoaded(t *testing.T) {
	f := newBlockingFetcher("a")
	p := newTestPoller(f)
	defer p.Close()
	sub := p.Subscribe()

	p.Load(context.Background(), "a")
	require.Equal(t, StatusLoading, p.State().Status)

	f.resolve("a", "da")
	state := waitFor(t, sub, StatusLoaded)
	require.Equal(t, "a", state.Params)
	require.Equal(t, "da", state.Data)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	f := newBlockingFetcher("a", "b")
	p := newTestPoller(f)
	defer p.Close()
	sub := p.Subscribe()

	// Fetch A starts, then B supersedes it before A resolves.
	p.Load(context.Background(), "a")
	p.Load(context.Background(), "b")

	// B resolves first and wins.
	f.resolve("b", "db")
	state := waitFor(t, sub, StatusLoaded)
	require.Equal(t, "b", state.Params)
	require.Equal(t, "db", state.Data)

	// A resolving later must not overwrite the state keyed to B. A's
	// context was cancelled at supersession, so unblock it either way.
	f.resolve("a", "da")
	time.Sleep(50 * time.Millisecond)
	final := p.State()
	require.Equal(t, StatusLoaded, final.Status)
	require.Equal(t, "b", final.Params)
	require.Equal(t, "db", final.Data)
}

func TestDuplicateLoadIsCoalesced(t *testing.T) {
	f := newBlockingFetcher("a")
	p := newTestPoller(f)
	defer p.Close()
	sub := p.Subscribe()

	p.Load(context.Background(), "a")
	p.Load(context.Background(), "a") // coalesced, not queued

	f.resolve("a", "first")
	waitFor(t, sub, StatusLoaded)

	// Only one fetch ran: the gate has no second consumer.
	select {
	case f.gates["a"] <- fetchResult{data: "second"}:
	default:
		t.Fatal("expected gate to be free, a second fetch is pending")
	}
}

func TestFirstLoadFailureIsError(t *testing.T) {
	f := newBlockingFetcher("a")
	p := newTestPoller(f)
	defer p.Close()
	sub := p.Subscribe()

	boom := errors.New("boom")
	p.Load(context.Background(), "a")
	f.failWith("a", boom)

	state := waitFor(t, sub, StatusError)
	require.ErrorIs(t, state.Err, boom)
	require.False(t, state.HasData())
	require.True(t, state.Retryable())
}

func TestRefreshFailureKeepsStaleData(t *testing.T) {
	f := newBlockingFetcher("a")
	p := newTestPoller(f)
	defer p.Close()
	sub := p.Subscribe()

	p.Load(context.Background(), "a")
	f.resolve("a", "da")
	waitFor(t, sub, StatusLoaded)

	// Same params with data present -> reloading, and its failure keeps
	// the stale data.
	p.Load(context.Background(), "a")
	require.Equal(t, StatusReloading, p.State().Status)

	f.failWith("a", errors.New("flaky"))
	state := waitFor(t, sub, StatusSubsequentFailed)
	require.Equal(t, "da", state.Data)
	require.Error(t, state.Err)
}

func TestRetryFromSubsequentFailed(t *testing.T) {
	f := newBlockingFetcher("a")
	p := newTestPoller(f)
	defer p.Close()
	sub := p.Subscribe()

	p.Load(context.Background(), "a")
	f.resolve("a", "da")
	waitFor(t, sub, StatusLoaded)

	p.Load(context.Background(), "a")
	f.failWith("a", errors.New("flaky"))
	waitFor(t, sub, StatusSubsequentFailed)

	p.Retry(context.Background())
	f.resolve("a", "recovered")
	state := waitFor(t, sub, StatusLoaded)
	require.Equal(t, "recovered", state.Data)
}

func TestRetryIsNoOpWhenLoaded(t *testing.T) {
	f := newBlockingFetcher("a")
	p := newTestPoller(f)
	defer p.Close()
	sub := p.Subscribe()

	p.Load(context.Background(), "a")
	f.resolve("a", "da")
	waitFor(t, sub, StatusLoaded)

	p.Retry(context.Background())
	require.Equal(t, StatusLoaded, p.State().Status)
}

func TestPollingRefetchesOnInterval(t *testing.T) {
	f := newBlockingFetcher("a")
	clk := clock.NewDeterministicClock(time.UnixMilli(0))
	p := NewPoller[string, string](f.fetch, clk)
	defer p.Close()
	sub := p.Subscribe()

	p.Load(context.Background(), "a")
	f.resolve("a", "v1")
	waitFor(t, sub, StatusLoaded)

	p.StartPolling(context.Background(), time.Second)
	clk.AdvanceTime(time.Second)
	waitFor(t, sub, StatusReloading)

	f.resolve("a", "v2")
	state := waitFor(t, sub, StatusLoaded)
	require.Equal(t, "v2", state.Data)
}

func TestCloseCancelsInFlightFetch(t *testing.T) {
	f := newBlockingFetcher("a")
	p := newTestPoller(f)
	sub := p.Subscribe()

	p.Load(context.Background(), "a")
	p.Close()

	_, ok := <-sub
	// Only the loading snapshot may have been delivered before close.
	if ok {
		_, ok = <-sub
	}
	require.False(t, ok)
}

func TestNotAskedSnapshot(t *testing.T) {
	p := NotAsked[string, string]()
	require.Equal(t, StatusNotAsked, p.Status)
	require.False(t, p.HasData())
	require.False(t, p.InFlight())
	require.False(t, p.Retryable())
}
