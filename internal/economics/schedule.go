package economics

import (
	"errors"
	"math"
	"sort"
)

var ErrInvalidSchedule = errors.New("invalid_schedule")

const MaxBps = 10000

// Tier is one prize tier: a score threshold and its share of the
// period's releasable amount, in basis points. Tiers are ordered by
// threshold descending; a ticket lands in the highest tier whose
// threshold it meets.
type Tier struct {
	Threshold int64
	ShareBps  int64
}

// Rates is the scheduler output for one period: the payout rate
// applied to the pot and the tier split table in force.
type Rates struct {
	PayoutRateBps int64
	Tiers         []Tier
}

// CurveKind tags the closed set of supported payout-rate shapes.
type CurveKind string

const (
	CurveConstant  CurveKind = "constant"
	CurveBreathing CurveKind = "breathing"
	CurveHealth    CurveKind = "health"
)

// RampShape selects how a breathing schedule climbs from the inhale
// rate to the ceiling.
type RampShape string

const (
	RampLinear      RampShape = "linear"
	RampExponential RampShape = "exponential"
	RampStep        RampShape = "step"
	RampSigmoid     RampShape = "sigmoid"
)

// Schedule is a validated, immutable payout-rate schedule. RatesFor is
// a pure function of its arguments, so any historical period can be
// re-derived for audit. Malformed configurations never survive
// construction; RatesFor cannot produce an out-of-range rate.
type Schedule struct {
	kind  CurveKind
	tiers []Tier

	// constant / breathing
	rateBps    int64
	ceilingBps int64

	// breathing: rateBps holds the inhale rate; the ramp runs from the
	// last inhale period to inhalePeriods-1+rampPeriods.
	inhalePeriods uint64
	rampPeriods   uint64
	shape         RampShape

	// health
	minBps    int64
	maxBps    int64
	targetPot int64
}

func validTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return ErrInvalidSchedule
	}
	if !sort.SliceIsSorted(tiers, func(i, j int) bool { return tiers[i].Threshold > tiers[j].Threshold }) {
		return ErrInvalidSchedule
	}
	var sum int64
	for i, t := range tiers {
		if t.Threshold < 0 || t.ShareBps < 0 {
			return ErrInvalidSchedule
		}
		if i > 0 && t.Threshold == tiers[i-1].Threshold {
			return ErrInvalidSchedule
		}
		sum += t.ShareBps
	}
	if sum > MaxBps {
		return ErrInvalidSchedule
	}
	return nil
}

func copyTiers(tiers []Tier) []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// NewConstant builds a flat-rate schedule.
func NewConstant(rateBps int64, tiers []Tier) (*Schedule, error) {
	if rateBps < 0 || rateBps > MaxBps {
		return nil, ErrInvalidSchedule
	}
	if err := validTiers(tiers); err != nil {
		return nil, err
	}
	return &Schedule{kind: CurveConstant, rateBps: rateBps, tiers: copyTiers(tiers)}, nil
}

// NewBreathing builds an inhale/exhale schedule: a constant low rate
// for inhalePeriods periods, then a ramp of the given shape reaching
// ceilingBps exactly rampPeriods periods after the inhale ends.
func NewBreathing(inhaleBps, ceilingBps int64, inhalePeriods, rampPeriods uint64, shape RampShape, tiers []Tier) (*Schedule, error) {
	if inhaleBps < 0 || inhaleBps > MaxBps || ceilingBps < inhaleBps || ceilingBps > MaxBps {
		return nil, ErrInvalidSchedule
	}
	if inhalePeriods == 0 || rampPeriods == 0 {
		return nil, ErrInvalidSchedule
	}
	switch shape {
	case RampLinear, RampExponential, RampStep, RampSigmoid:
	default:
		return nil, ErrInvalidSchedule
	}
	if err := validTiers(tiers); err != nil {
		return nil, err
	}
	return &Schedule{
		kind:          CurveBreathing,
		rateBps:       inhaleBps,
		ceilingBps:    ceilingBps,
		inhalePeriods: inhalePeriods,
		rampPeriods:   rampPeriods,
		shape:         shape,
		tiers:         copyTiers(tiers),
	}, nil
}

// NewHealthBanded builds a pot-health-driven schedule: the rate moves
// monotonically with currentPot/targetPot, clamped to [minBps,maxBps].
func NewHealthBanded(minBps, maxBps, targetPot int64, tiers []Tier) (*Schedule, error) {
	if minBps < 0 || maxBps > MaxBps || minBps > maxBps || targetPot <= 0 {
		return nil, ErrInvalidSchedule
	}
	if err := validTiers(tiers); err != nil {
		return nil, err
	}
	return &Schedule{kind: CurveHealth, minBps: minBps, maxBps: maxBps, targetPot: targetPot, tiers: copyTiers(tiers)}, nil
}

func (s *Schedule) Kind() CurveKind { return s.kind }

// TargetPot is meaningful only for health schedules; zero otherwise.
func (s *Schedule) TargetPot() int64 { return s.targetPot }

// RatesFor evaluates the schedule for a period. Stateless: the same
// (periodIndex, gameAgeSeconds) always yields the same Rates. For
// health schedules it returns the band floor; callers that know the
// pot use RatesForPot.
func (s *Schedule) RatesFor(periodIndex uint64, gameAgeSeconds int64) Rates {
	_ = gameAgeSeconds
	switch s.kind {
	case CurveConstant:
		return Rates{PayoutRateBps: s.rateBps, Tiers: copyTiers(s.tiers)}
	case CurveBreathing:
		return Rates{PayoutRateBps: s.breathingRate(periodIndex), Tiers: copyTiers(s.tiers)}
	default:
		return Rates{PayoutRateBps: s.minBps, Tiers: copyTiers(s.tiers)}
	}
}

// RatesForPot is the health-aware entry point: identical to RatesFor
// for time-driven curves, band interpolation for health curves.
func (s *Schedule) RatesForPot(periodIndex uint64, gameAgeSeconds int64, currentPot int64) Rates {
	if s.kind != CurveHealth {
		return s.RatesFor(periodIndex, gameAgeSeconds)
	}
	return Rates{PayoutRateBps: s.healthRate(currentPot), Tiers: copyTiers(s.tiers)}
}

// breathingRate: inhale rate through period inhalePeriods-1, then the
// configured ramp. The ramp fraction runs from the last inhale period
// (f=0, rate exactly inhale) to rampPeriods later (f=1, rate exactly
// ceiling).
func (s *Schedule) breathingRate(periodIndex uint64) int64 {
	rampBase := s.inhalePeriods - 1
	if periodIndex <= rampBase {
		return s.rateBps
	}
	elapsed := periodIndex - rampBase
	if elapsed >= s.rampPeriods {
		return s.ceilingBps
	}
	f := float64(elapsed) / float64(s.rampPeriods)
	span := float64(s.ceilingBps - s.rateBps)
	var scaled float64
	switch s.shape {
	case RampLinear:
		scaled = f
	case RampExponential:
		scaled = (math.Exp2(f) - 1) // doubles over the ramp; normalized below
	case RampStep:
		// four discrete steps across the ramp
		scaled = math.Floor(f*4) / 4
	case RampSigmoid:
		scaled = logistic01(f)
	}
	rate := s.rateBps + int64(math.Round(span*scaled))
	return clampBps(rate, s.rateBps, s.ceilingBps)
}

// logistic01 maps [0,1] through a logistic curve normalized so the
// endpoints land exactly on 0 and 1.
func logistic01(f float64) float64 {
	const k = 8.0
	raw := func(x float64) float64 { return 1 / (1 + math.Exp(-k*(x-0.5))) }
	lo, hi := raw(0), raw(1)
	return (raw(f) - lo) / (hi - lo)
}

// healthRate interpolates the band on currentPot/targetPot, clamped
// at twice the target so overflowing pots pay at the ceiling.
func (s *Schedule) healthRate(currentPot int64) int64 {
	if currentPot < 0 {
		currentPot = 0
	}
	ratio := float64(currentPot) / float64(s.targetPot)
	if ratio > 2 {
		ratio = 2
	}
	span := float64(s.maxBps - s.minBps)
	rate := s.minBps + int64(math.Round(span*ratio/2))
	return clampBps(rate, s.minBps, s.maxBps)
}

func clampBps(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
