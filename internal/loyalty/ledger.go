package loyalty

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"pick-derby/internal/prize"
)

var (
	ErrEndgameAlreadyRun = errors.New("endgame_already_run")
	ErrInvalidOGConfig   = errors.New("invalid_og_config")
)

// Policy selects how tenure accrues across periods.
type Policy string

const (
	// PolicyStreak hard-resets tenure to zero on a missed period.
	PolicyStreak Policy = "streak"
	// PolicyCumulative counts every qualifying period, gaps allowed.
	PolicyCumulative Policy = "cumulative"
)

// Weighting selects how the OG fund is split among qualifiers.
type Weighting string

const (
	WeightEqual  Weighting = "equal"
	WeightTenure Weighting = "tenure"
)

// Record is one player's loyalty state. Written only by this ledger,
// once per period per active player.
type Record struct {
	Player      string
	FirstPeriod uint64
	LastActive  uint64
	Tenure      uint64

	// Rolling accuracy inputs for performance-gated OG qualification.
	ScoreSum      int64
	PeriodsScored uint64
}

// OGConfig is the endgame entitlement configuration, validated at
// construction of the ledger.
type OGConfig struct {
	TenureThreshold uint64
	// AccuracyGateBps gates qualification on ScoreSum relative to the
	// maximum attainable score, in basis points. 0 disables the gate.
	AccuracyGateBps int64
	// ShareBps is the fraction of the final pot distributed to OGs.
	ShareBps  int64
	Weighting Weighting
}

func (c OGConfig) validate() error {
	if c.ShareBps < 0 || c.ShareBps > 10000 || c.AccuracyGateBps < 0 || c.AccuracyGateBps > 10000 {
		return ErrInvalidOGConfig
	}
	switch c.Weighting {
	case WeightEqual, WeightTenure:
	default:
		return ErrInvalidOGConfig
	}
	return nil
}

// Ledger tracks tenure per player. Not safe for concurrent use; the
// application service serializes period processing.
type Ledger struct {
	policy     Policy
	cfg        OGConfig
	records    map[string]*Record
	lastPeriod uint64
	hasPeriod  bool
	endgameRun bool
}

func NewLedger(policy Policy, cfg OGConfig) (*Ledger, error) {
	switch policy {
	case PolicyStreak, PolicyCumulative:
	default:
		return nil, ErrInvalidOGConfig
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Ledger{policy: policy, cfg: cfg, records: make(map[string]*Record)}, nil
}

// RecordPeriod applies one settled period: every player with a valid
// submission gains a tenure point; under the streak policy every
// tracked player who sat the period out is reset to zero. scores feed
// the accuracy gate and may be nil.
func (l *Ledger) RecordPeriod(periodSeq uint64, active []string, scores map[string]int64) {
	// Settlement retries replay the period they failed on; only the
	// first application counts.
	if l.hasPeriod && periodSeq <= l.lastPeriod {
		return
	}
	l.lastPeriod = periodSeq
	l.hasPeriod = true

	activeSet := make(map[string]struct{}, len(active))
	for _, p := range active {
		activeSet[p] = struct{}{}
	}

	if l.policy == PolicyStreak {
		for _, rec := range l.records {
			if _, ok := activeSet[rec.Player]; !ok && rec.Tenure > 0 {
				rec.Tenure = 0
			}
		}
	}

	for _, player := range active {
		rec, ok := l.records[player]
		if !ok {
			rec = &Record{Player: player, FirstPeriod: periodSeq}
			l.records[player] = rec
		}
		rec.Tenure++
		rec.LastActive = periodSeq
		if scores != nil {
			rec.ScoreSum += scores[player]
			rec.PeriodsScored++
		}
	}
}

// Restore hydrates the ledger from persisted records on startup.
// endgameRun re-latches the once-only terminal distribution across
// restarts.
func (l *Ledger) Restore(recs []Record, endgameRun bool) {
	for _, rec := range recs {
		cp := rec
		l.records[rec.Player] = &cp
		if rec.LastActive >= l.lastPeriod {
			l.lastPeriod = rec.LastActive
			l.hasPeriod = true
		}
	}
	l.endgameRun = endgameRun
}

// Lookup returns a copy of a player's record.
func (l *Ledger) Lookup(player string) (Record, bool) {
	rec, ok := l.records[player]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Records returns all records, player-sorted, for the audit surface.
func (l *Ledger) Records() []Record {
	out := make([]Record, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Player < out[j].Player })
	return out
}

// OGShare is one player's endgame entitlement.
type OGShare struct {
	Player string
	Amount int64
}

// Endgame runs the terminal OG distribution exactly once per game
// instance. It is the only operation allowed to reduce the retained
// seed: the OG fund drains releasable first, then the seed. maxScore
// is the per-period maximum of the configured scoring mode, used by
// the accuracy gate.
func (l *Ledger) Endgame(pot prize.Pot, maxScore int64) ([]OGShare, prize.Pot, error) {
	if l.endgameRun {
		return nil, pot, ErrEndgameAlreadyRun
	}

	qualified := make([]*Record, 0)
	for _, rec := range l.records {
		if rec.Tenure < l.cfg.TenureThreshold {
			continue
		}
		if l.cfg.AccuracyGateBps > 0 {
			if rec.PeriodsScored == 0 || maxScore <= 0 {
				continue
			}
			attained := rec.ScoreSum * 10000
			possible := maxScore * int64(rec.PeriodsScored)
			if attained < l.cfg.AccuracyGateBps*possible {
				continue
			}
		}
		qualified = append(qualified, rec)
	}
	sort.Slice(qualified, func(i, j int) bool { return qualified[i].Player < qualified[j].Player })

	l.endgameRun = true
	if len(qualified) == 0 {
		return nil, pot, nil
	}

	fund := pot.Balance() * l.cfg.ShareBps / 10000
	fromReleasable := fund
	if fromReleasable > pot.Releasable {
		fromReleasable = pot.Releasable
	}
	potAfter, err := pot.Pay(fromReleasable)
	if err != nil {
		return nil, pot, err
	}
	if seedPart := fund - fromReleasable; seedPart > 0 {
		potAfter, err = potAfter.ReleaseSeed(seedPart)
		if err != nil {
			return nil, pot, err
		}
	}

	totalWeight := decimal.Zero
	weights := make([]decimal.Decimal, len(qualified))
	for i, rec := range qualified {
		w := decimal.NewFromInt(1)
		if l.cfg.Weighting == WeightTenure {
			w = decimal.NewFromInt(int64(rec.Tenure))
		}
		weights[i] = w
		totalWeight = totalWeight.Add(w)
	}

	fundDec := decimal.NewFromInt(fund)
	shares := make([]OGShare, 0, len(qualified))
	var distributed int64
	for i, rec := range qualified {
		amount := fundDec.Mul(weights[i]).Div(totalWeight).Floor().IntPart()
		if amount <= 0 {
			continue
		}
		shares = append(shares, OGShare{Player: rec.Player, Amount: amount})
		distributed += amount
	}
	// floor dust stays in the pot
	potAfter = potAfter.Return(fund - distributed)
	return shares, potAfter, nil
}

// EndgameRun reports whether the terminal distribution has happened.
func (l *Ledger) EndgameRun() bool { return l.endgameRun }
