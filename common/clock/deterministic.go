package clock

import (
	"context"
	"sync"
	"time"
)

type action interface {
	// isDue reports whether the action should fire at the given time.
	isDue(now time.Time) bool

	// fire triggers the action. Returns true if it needs to fire again.
	fire(now time.Time) bool
}

type timer struct {
	ch      chan time.Time
	due     time.Time
	stopped bool
	run     bool
	sync.Mutex
}

func (t *timer) isDue(now time.Time) bool {
	t.Lock()
	defer t.Unlock()
	return !t.due.After(now)
}

func (t *timer) fire(now time.Time) bool {
	t.Lock()
	defer t.Unlock()
	if !t.stopped && !t.run {
		t.run = true
		select {
		case t.ch <- now:
		default:
		}
	}
	return false
}

func (t *timer) Ch() <-chan time.Time {
	return t.ch
}

func (t *timer) Stop() bool {
	t.Lock()
	defer t.Unlock()
	r := !t.stopped && !t.run
	t.stopped = true
	return r
}

type ticker struct {
	c       Clock
	ch      chan time.Time
	nextDue time.Time
	period  time.Duration
	stopped bool
	sync.Mutex
}

func (t *ticker) Ch() <-chan time.Time {
	return t.ch
}

func (t *ticker) Stop() {
	t.Lock()
	defer t.Unlock()
	t.stopped = true
}

func (t *ticker) Reset(d time.Duration) {
	if d <= 0 {
		panic("Continuously firing tickers are a really bad idea")
	}
	t.Lock()
	defer t.Unlock()
	t.period = d
	t.nextDue = t.c.Now().Add(d)
}

func (t *ticker) isDue(now time.Time) bool {
	t.Lock()
	defer t.Unlock()
	return !t.nextDue.After(now)
}

func (t *ticker) fire(now time.Time) bool {
	t.Lock()
	defer t.Unlock()
	if t.stopped {
		return false
	}
	// publish without blocking and only update due time on success
	select {
	case t.ch <- now:
		t.nextDue = now.Add(t.period)
	default:
	}
	return true
}

// DeterministicClock only advances when AdvanceTime is called, firing any
// timers and tickers whose due time has been reached. Intended for tests.
type DeterministicClock struct {
	now          time.Time
	pending      []action
	newPendingCh chan struct{}
	lock         sync.Mutex
}

func NewDeterministicClock(now time.Time) *DeterministicClock {
	return &DeterministicClock{
		now:          now,
		newPendingCh: make(chan struct{}, 1),
	}
}

func (d *DeterministicClock) Now() time.Time {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.now
}

func (d *DeterministicClock) Since(t time.Time) time.Duration {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.now.Sub(t)
}

func (d *DeterministicClock) NewTicker(dur time.Duration) Ticker {
	if dur <= 0 {
		panic("Continuously firing tickers are a really bad idea")
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	t := &ticker{
		c:       d,
		ch:      make(chan time.Time, 1),
		nextDue: d.now.Add(dur),
		period:  dur,
	}
	d.addPending(t)
	return t
}

func (d *DeterministicClock) NewTimer(dur time.Duration) Timer {
	d.lock.Lock()
	defer d.lock.Unlock()
	t := &timer{
		ch:  make(chan time.Time, 1),
		due: d.now.Add(dur),
	}
	d.addPending(t)
	return t
}

func (d *DeterministicClock) SleepCtx(ctx context.Context, dur time.Duration) error {
	return sleepCtx(ctx, dur, d)
}

func (d *DeterministicClock) addPending(a action) {
	d.pending = append(d.pending, a)
	select {
	case d.newPendingCh <- struct{}{}:
	default:
		// a new pending task is already flagged
	}
}

// WaitForNewPendingTask blocks until something registers a timer or ticker,
// letting tests synchronize with goroutines that schedule work lazily.
func (d *DeterministicClock) WaitForNewPendingTask(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-d.newPendingCh:
		return true
	}
}

func (d *DeterministicClock) WaitForNewPendingTaskWithTimeout(timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return d.WaitForNewPendingTask(ctx)
}

// AdvanceTime moves the clock forward and fires everything that came due.
func (d *DeterministicClock) AdvanceTime(dur time.Duration) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.now = d.now.Add(dur)
	var remaining []action
	for _, a := range d.pending {
		if !a.isDue(d.now) || a.fire(d.now) {
			remaining = append(remaining, a)
		}
	}
	d.pending = remaining
}

var _ Clock = (*DeterministicClock)(nil)
