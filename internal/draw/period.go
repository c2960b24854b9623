package draw

import "time"

// Phase is the per-period state machine. Transitions are guarded so
// that illegal states (settled before resolved, double resolution)
// are unrepresentable.
type Phase string

const (
	PhaseOpen     Phase = "open"
	PhaseClosed   Phase = "closed"
	PhaseResolved Phase = "resolved"
	PhaseSettled  Phase = "settled"
)

type Period struct {
	Seq     uint64
	OpenAt  time.Time
	CloseAt time.Time
	Phase   Phase
}

func NewPeriod(seq uint64, openAt time.Time, cooldown time.Duration) *Period {
	return &Period{
		Seq:     seq,
		OpenAt:  openAt,
		CloseAt: openAt.Add(cooldown),
		Phase:   PhaseOpen,
	}
}

// AcceptsSubmissions reports whether the submission window is open at
// now. The window closes exactly at CloseAt.
func (p *Period) AcceptsSubmissions(now time.Time) bool {
	return p.Phase == PhaseOpen && now.Before(p.CloseAt)
}

// MarkClosed is a lazy transition: a period flips to closed the first
// time it is observed past its close timestamp.
func (p *Period) MarkClosed(now time.Time) {
	if p.Phase == PhaseOpen && !now.Before(p.CloseAt) {
		p.Phase = PhaseClosed
	}
}

// BeginResolve guards entry into resolution. The two errors are
// distinct on purpose: "try later" vs "already happened".
func (p *Period) BeginResolve(now time.Time) error {
	switch p.Phase {
	case PhaseResolved, PhaseSettled:
		return ErrAlreadyResolved
	case PhaseOpen:
		if now.Before(p.CloseAt) {
			return ErrDrawNotReady
		}
		p.Phase = PhaseClosed
	}
	return nil
}

// MarkResolved commits the irrevocable resolved flag.
func (p *Period) MarkResolved() error {
	if p.Phase != PhaseClosed {
		if p.Phase == PhaseResolved || p.Phase == PhaseSettled {
			return ErrAlreadyResolved
		}
		return ErrDrawNotReady
	}
	p.Phase = PhaseResolved
	return nil
}

// MarkSettled is terminal for the period. Resolved-but-unsettled is a
// valid durable state; settlement may be retried until it commits.
func (p *Period) MarkSettled() error {
	switch p.Phase {
	case PhaseSettled:
		return ErrAlreadySettled
	case PhaseResolved:
		p.Phase = PhaseSettled
		return nil
	default:
		return ErrNotResolved
	}
}
