package retry

import (
	"math"
	"math/rand"
	"time"
)

// Strategy computes how long to wait before attempt n (zero based).
type Strategy interface {
	Duration(attempt int) time.Duration
}

// ExponentialStrategy doubles the wait each attempt between Min and Max,
// plus up to MaxJitter of random noise.
type ExponentialStrategy struct {
	Min       time.Duration
	Max       time.Duration
	MaxJitter time.Duration
}

func (s *ExponentialStrategy) Duration(attempt int) time.Duration {
	var jitter time.Duration
	if s.MaxJitter > 0 {
		jitter = time.Duration(rand.Int63n(s.MaxJitter.Nanoseconds()))
	}
	if attempt < 0 {
		return s.Min + jitter
	}
	durFloat := float64(s.Min)
	durFloat *= math.Pow(2, float64(attempt))
	dur := time.Duration(durFloat)
	if durFloat > float64(s.Max) {
		dur = s.Max
	}
	dur += jitter
	return dur
}

func Exponential() Strategy {
	return &ExponentialStrategy{
		Min:       time.Second,
		Max:       10 * time.Second,
		MaxJitter: 250 * time.Millisecond,
	}
}

// FixedStrategy waits the same duration every attempt.
type FixedStrategy struct {
	Dur time.Duration
}

func (s *FixedStrategy) Duration(attempt int) time.Duration {
	return s.Dur
}

func Fixed(dur time.Duration) Strategy {
	return &FixedStrategy{Dur: dur}
}
