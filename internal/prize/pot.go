package prize

import "errors"

var (
	ErrRetentionViolation = errors.New("retention_violation")
	ErrAlreadyClaimed     = errors.New("already_claimed")
	ErrClaimNotFound      = errors.New("claim_not_found")
	ErrInvalidPolicy      = errors.New("invalid_policy")
)

// Pot is the economic reserve of one game instance. Balance is
// Retained + Releasable. Retained is the seed: it never decreases
// across periods; the one sanctioned reduction is the terminal OG
// endgame distribution, which goes through ReleaseSeed.
type Pot struct {
	Retained   int64
	Releasable int64
}

func (p Pot) Balance() int64 { return p.Retained + p.Releasable }

// AccrueEntry books an entry fee into the pot, splitting it between
// seed and releasable at retainBps.
func (p Pot) AccrueEntry(fee, retainBps int64) Pot {
	if fee <= 0 {
		return p
	}
	toSeed := fee * retainBps / 10000
	return Pot{Retained: p.Retained + toSeed, Releasable: p.Releasable + (fee - toSeed)}
}

// Pay removes a settled payout from the releasable side. The seed is
// untouched by construction.
func (p Pot) Pay(amount int64) (Pot, error) {
	if amount < 0 || amount > p.Releasable {
		return p, ErrRetentionViolation
	}
	return Pot{Retained: p.Retained, Releasable: p.Releasable - amount}, nil
}

// Return puts an expired unclaimed prize back into releasable. The
// seed never receives sweep-backs.
func (p Pot) Return(amount int64) Pot {
	if amount <= 0 {
		return p
	}
	return Pot{Retained: p.Retained, Releasable: p.Releasable + amount}
}

// ReleaseSeed is the single terminal exception to the retention rule,
// used only by the OG endgame distribution.
func (p Pot) ReleaseSeed(amount int64) (Pot, error) {
	if amount < 0 || amount > p.Retained {
		return p, ErrRetentionViolation
	}
	return Pot{Retained: p.Retained - amount, Releasable: p.Releasable}, nil
}
