package prize

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pick-derby/internal/draw"
	"pick-derby/internal/economics"
)

// TiePolicy declares how tickets sharing a tier split its allocation.
type TiePolicy string

const (
	// TieEqual splits the tier allocation evenly across tickets.
	TieEqual TiePolicy = "equal"
	// TieStake splits proportionally to each ticket's entry stake.
	TieStake TiePolicy = "stake"
)

// Claim is a fixed entitlement created at settlement. Amount is set
// once and never recomputed; configuration mistakes are corrected
// prospectively, never retroactively.
type Claim struct {
	Player    string
	PeriodSeq uint64
	Tier      int
	Amount    int64
	Claimed   bool
	CreatedAt time.Time
}

// Distribution is the atomic output of one settlement: either all of
// it commits or none of it does.
type Distribution struct {
	PeriodSeq  uint64
	RateBps    int64
	Releasable int64
	Paid       int64
	Claims     []Claim
	PotAfter   Pot
}

// Distributor converts match scores and scheduler output into claims,
// enforcing the retention invariant.
type Distributor struct {
	schedule *economics.Schedule
	tie      TiePolicy
}

func NewDistributor(s *economics.Schedule, tie TiePolicy) (*Distributor, error) {
	switch tie {
	case TieEqual, TieStake:
	default:
		return nil, ErrInvalidPolicy
	}
	return &Distributor{schedule: s, tie: tie}, nil
}

// Settle computes a period's distribution. stakes maps player to the
// total entry stake debited for the period (used under TieStake). The
// function is pure: it returns the would-be distribution and the pot
// after it; the caller commits both atomically or not at all.
//
// Retention invariant: the releasable amount for the period is
// rate × pot balance, and must fit inside the pot's releasable side.
// If it would dig into the seed the settlement is refused with
// ErrRetentionViolation and the period stays resolved-but-unsettled.
func (d *Distributor) Settle(periodSeq uint64, gameAgeSeconds int64, scores []draw.TicketScore, stakes map[string]int64, pot Pot, now time.Time) (*Distribution, error) {
	rates := d.schedule.RatesForPot(periodSeq, gameAgeSeconds, pot.Balance())
	releasable := pot.Balance() * rates.PayoutRateBps / 10000
	if releasable > pot.Releasable {
		return nil, ErrRetentionViolation
	}

	claims := d.buildClaims(periodSeq, rates, releasable, scores, stakes, now)

	var paid int64
	for _, c := range claims {
		paid += c.Amount
	}
	potAfter, err := pot.Pay(paid)
	if err != nil {
		return nil, err
	}
	return &Distribution{
		PeriodSeq:  periodSeq,
		RateBps:    rates.PayoutRateBps,
		Releasable: releasable,
		Paid:       paid,
		Claims:     claims,
		PotAfter:   potAfter,
	}, nil
}

// buildClaims partitions tickets into tiers and splits each tier's
// allocation. One claim per (player, tier): a player's tickets in the
// same tier merge into one entitlement. All splits floor to whole pot
// units, so dust stays in the releasable balance.
func (d *Distributor) buildClaims(periodSeq uint64, rates economics.Rates, releasable int64, scores []draw.TicketScore, stakes map[string]int64, now time.Time) []Claim {
	type share struct {
		player string
		weight decimal.Decimal
	}
	claims := make([]Claim, 0)

	for tierIdx, tier := range rates.Tiers {
		var members []share
		total := decimal.Zero
		for _, sc := range scores {
			if tierFor(rates.Tiers, sc.Score) != tierIdx {
				continue
			}
			w := decimal.NewFromInt(1)
			if d.tie == TieStake {
				w = decimal.NewFromInt(stakes[sc.Player])
				if w.Sign() <= 0 {
					w = decimal.NewFromInt(1)
				}
			}
			members = append(members, share{player: sc.Player, weight: w})
			total = total.Add(w)
		}
		if len(members) == 0 || total.Sign() == 0 {
			continue
		}

		alloc := decimal.NewFromInt(releasable).
			Mul(decimal.NewFromInt(tier.ShareBps)).
			Div(decimal.NewFromInt(10000)).
			Floor()

		byPlayer := make(map[string]decimal.Decimal)
		order := make([]string, 0, len(members))
		for _, m := range members {
			if _, seen := byPlayer[m.player]; !seen {
				order = append(order, m.player)
			}
			byPlayer[m.player] = byPlayer[m.player].Add(m.weight)
		}
		sort.Strings(order)

		for _, player := range order {
			amount := alloc.Mul(byPlayer[player]).Div(total).Floor().IntPart()
			if amount <= 0 {
				continue
			}
			claims = append(claims, Claim{
				Player:    player,
				PeriodSeq: periodSeq,
				Tier:      tierIdx,
				Amount:    amount,
				CreatedAt: now,
			})
		}
	}
	return claims
}

// tierFor returns the index of the highest tier the score meets, or
// -1 below the lowest threshold. Tiers are threshold-descending.
func tierFor(tiers []economics.Tier, score int64) int {
	for i, t := range tiers {
		if score >= t.Threshold {
			return i
		}
	}
	return -1
}

// SweepExpired marks claims older than expiry as swept and returns
// the total to put back into the pot's releasable balance. Claimed
// claims are untouched.
func SweepExpired(claims []Claim, expiry time.Duration, now time.Time) (swept []Claim, total int64) {
	for _, c := range claims {
		if !c.Claimed && now.Sub(c.CreatedAt) >= expiry {
			swept = append(swept, c)
			total += c.Amount
		}
	}
	return swept, total
}
