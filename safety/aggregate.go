package safety

// Verdict is the aggregation of one check battery. It is derived from the
// checks, never stored or patched.
type Verdict struct {
	// FailedChecks is empty on success. Order is evaluation order (the
	// fixed variant-list order), not severity order.
	FailedChecks []Check
}

func (v Verdict) Passed() bool {
	return len(v.FailedChecks) == 0
}

// BlocksApproval reports whether any failure is a hard block. Danger
// requires explicit extra confirmation, Caution is dismissible.
func (v Verdict) BlocksApproval() bool {
	for _, c := range v.FailedChecks {
		if c.Outcome().Severity == SeverityDanger {
			return true
		}
	}
	return false
}

// Aggregate folds an evaluated battery into a verdict: failed iff at least
// one check failed. An empty battery passes vacuously.
func Aggregate(checks []Check) Verdict {
	var failed []Check
	for _, c := range checks {
		if c.Outcome().State == StateFailed {
			failed = append(failed, c)
		}
	}
	return Verdict{FailedChecks: failed}
}
