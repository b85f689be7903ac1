package models

// SplitStatus is the payment state of a split.
//
//	PENDING -> PAID -> SETTLED
//	PENDING ---------> SETTLED
//
// Nothing leaves SETTLED and nothing re-enters PENDING.
type SplitStatus string

const (
	StatusPending SplitStatus = "PENDING"
	StatusPaid    SplitStatus = "PAID"
	StatusSettled SplitStatus = "SETTLED"
)

// Valid reports whether s is a known status.
func (s SplitStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusSettled:
		return true
	}
	return false
}

// Transition checks a move from s to target.
// It returns noop=true when the split is already in the target state
// (PAID or SETTLED), which callers treat as success without a write.
func (s SplitStatus) Transition(target SplitStatus) (noop bool, err error) {
	if s == target && target != StatusPending {
		return true, nil
	}
	switch {
	case s == StatusPending && target == StatusPaid,
		s == StatusPending && target == StatusSettled,
		s == StatusPaid && target == StatusSettled:
		return false, nil
	}
	return false, &InvalidStatusTransitionError{From: s, To: target}
}
