package pollable

// Status enumerates the lifecycle of an asynchronously (re)fetched value.
type Status string

const (
	// StatusNotAsked means no fetch was ever requested.
	StatusNotAsked Status = "not_asked"
	// StatusLoading means the first fetch for these params is in flight.
	StatusLoading Status = "loading"
	// StatusLoaded means a fetch succeeded and Data is current.
	StatusLoaded Status = "loaded"
	// StatusReloading means a refresh is in flight while stale Data is
	// still shown.
	StatusReloading Status = "reloading"
	// StatusSubsequentFailed means a refresh failed but the previous Data
	// is retained.
	StatusSubsequentFailed Status = "subsequent_failed"
	// StatusError means the value never loaded successfully.
	StatusError Status = "error"
)

// Pollable is an immutable snapshot of one polled value. Transitions return
// new values; consumers only read.
//
//	Params is set in every status except NotAsked.
//	Data is set in Loaded, Reloading and SubsequentFailed.
//	Err is set in SubsequentFailed and Error.
type Pollable[P comparable, D any] struct {
	Status Status
	Params P
	Data   D
	Err    error
}

func NotAsked[P comparable, D any]() Pollable[P, D] {
	return Pollable[P, D]{Status: StatusNotAsked}
}

// HasData reports whether Data is meaningful in the current status.
func (p Pollable[P, D]) HasData() bool {
	switch p.Status {
	case StatusLoaded, StatusReloading, StatusSubsequentFailed:
		return true
	case StatusNotAsked, StatusLoading, StatusError:
		return false
	default:
		panic("unexpected pollable status: " + p.Status)
	}
}

// InFlight reports whether a fetch is currently outstanding.
func (p Pollable[P, D]) InFlight() bool {
	return p.Status == StatusLoading || p.Status == StatusReloading
}

// Retryable reports whether a manual retry action applies.
func (p Pollable[P, D]) Retryable() bool {
	return p.Status == StatusError || p.Status == StatusSubsequentFailed
}

// startFetch moves into Loading or, when current data exists for the same
// params, Reloading.
func (p Pollable[P, D]) startFetch(params P) Pollable[P, D] {
	if p.HasData() && p.Params == params {
		return Pollable[P, D]{Status: StatusReloading, Params: params, Data: p.Data}
	}
	return Pollable[P, D]{Status: StatusLoading, Params: params}
}

// succeed applies a successful fetch result.
func (p Pollable[P, D]) succeed(params P, data D) Pollable[P, D] {
	return Pollable[P, D]{Status: StatusLoaded, Params: params, Data: data}
}

// fail applies a failed fetch: first load fails hard, a refresh keeps the
// stale data alongside the error.
func (p Pollable[P, D]) fail(params P, err error) Pollable[P, D] {
	if p.Status == StatusReloading {
		return Pollable[P, D]{Status: StatusSubsequentFailed, Params: params, Data: p.Data, Err: err}
	}
	return Pollable[P, D]{Status: StatusError, Params: params, Err: err}
}
