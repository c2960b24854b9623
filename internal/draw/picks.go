package draw

// Pick is one chosen asset plus the metadata the active scoring mode
// reads. Weight is only meaningful under ScoreWeighted, RankLo/RankHi
// only under ScoreRangeContainment; other modes ignore them.
type Pick struct {
	Asset  int
	Weight int
	RankLo int
	RankHi int
}

// PickSet is one player ticket for one period: the ordered N picks.
// Under ScoreRankCorrelation and ScorePairWinner the order itself is
// the prediction.
type PickSet struct {
	Picks []Pick
}

// Validate checks a pick set against the rules: exactly N distinct
// in-range assets and, per scoring mode, metadata inside its declared
// domain. Any violation is ErrInvalidPicks.
func (r *Rules) Validate(ps PickSet) error {
	m := r.Pool.Size()
	n := r.Pool.PickCount()
	if len(ps.Picks) != n {
		return ErrInvalidPicks
	}
	seen := make(map[int]struct{}, n)
	for _, p := range ps.Picks {
		if p.Asset < 0 || p.Asset >= m {
			return ErrInvalidPicks
		}
		if _, dup := seen[p.Asset]; dup {
			return ErrInvalidPicks
		}
		seen[p.Asset] = struct{}{}

		switch r.Scoring {
		case ScoreWeighted:
			if p.Weight < MinWeight || p.Weight > MaxWeight {
				return ErrInvalidPicks
			}
		case ScoreRangeContainment:
			if p.RankLo < 0 || p.RankHi >= m || p.RankLo > p.RankHi {
				return ErrInvalidPicks
			}
		}
	}
	return nil
}

// Assets returns the pick's asset indices in submission order.
func (ps PickSet) Assets() []int {
	out := make([]int, len(ps.Picks))
	for i, p := range ps.Picks {
		out[i] = p.Asset
	}
	return out
}
