package clock

import (
	"context"
	"time"
)

// Clock represents time in a way that can be provided by varying
// implementations. Methods are direct replacements for the time package,
// so production code takes a Clock and tests inject a DeterministicClock.
type Clock interface {
	// Now provides the current local time. Equivalent to time.Now()
	Now() time.Time

	// Since returns the time elapsed since t. Shorthand for Now().Sub(t).
	Since(t time.Time) time.Duration

	NewTicker(d time.Duration) Ticker

	NewTimer(d time.Duration) Timer

	// SleepCtx sleeps for d or until ctx is done, whichever comes first.
	SleepCtx(ctx context.Context, d time.Duration) error
}

// A Ticker holds a channel that delivers ticks at intervals.
type Ticker interface {
	Ch() <-chan time.Time
	Stop()
	Reset(d time.Duration)
}

type Timer interface {
	Ch() <-chan time.Time
	Stop() bool
}

var SystemClock Clock = systemClock{}

type systemClock struct{}

func (s systemClock) Now() time.Time {
	return time.Now()
}

func (s systemClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

type SystemTicker struct {
	*time.Ticker
}

func (t *SystemTicker) Ch() <-chan time.Time {
	return t.C
}

func (s systemClock) NewTicker(d time.Duration) Ticker {
	return &SystemTicker{time.NewTicker(d)}
}

type SystemTimer struct {
	*time.Timer
}

func (t *SystemTimer) Ch() <-chan time.Time {
	return t.C
}

func (s systemClock) NewTimer(d time.Duration) Timer {
	return &SystemTimer{time.NewTimer(d)}
}

func (s systemClock) SleepCtx(ctx context.Context, d time.Duration) error {
	return sleepCtx(ctx, d, s)
}

func sleepCtx(ctx context.Context, d time.Duration, c Clock) error {
	timer := c.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Ch():
		return nil
	}
}
