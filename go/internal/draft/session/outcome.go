package session

import "fmt"

// Outcome reports what happened to a pick, skip, tick or reset request.
// Rejections are expected races and never errors.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeRejectedComplete
	OutcomeRejectedBusy
	OutcomeRejectedNoSkips
	OutcomeRejectedClosed
	OutcomeRejectedStale
	OutcomeRejectedCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeRejectedComplete:
		return "rejected_complete"
	case OutcomeRejectedBusy:
		return "rejected_busy"
	case OutcomeRejectedNoSkips:
		return "rejected_no_skips"
	case OutcomeRejectedClosed:
		return "rejected_closed"
	case OutcomeRejectedStale:
		return "rejected_stale"
	case OutcomeRejectedCanceled:
		return "rejected_canceled"
	default:
		return "unknown"
	}
}

// Applied reports whether the request changed the session.
func (o Outcome) Applied() bool {
	return o == OutcomeApplied
}

// MarshalText renders the outcome by name in JSON.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for c := OutcomeApplied; c <= OutcomeRejectedCanceled; c++ {
		if c.String() == string(text) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}
