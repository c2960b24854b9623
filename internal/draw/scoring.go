package draw

// score dispatches on the configured scoring mode. rankOf maps asset
// index to its position in the canonical ranking (0 = best). Every
// mode is total over valid pick sets and returns a non-negative
// integer so all modes share one tier threshold table.
func (r *Rules) score(ps PickSet, rankOf []int) int64 {
	n := r.Pool.PickCount()
	switch r.Scoring {
	case ScoreCount:
		return scoreCount(ps, rankOf, n)
	case ScoreWeighted:
		return scoreWeighted(ps, rankOf, n)
	case ScoreRankCorrelation:
		return scoreRankCorrelation(ps, rankOf, n, r.Pool.Size())
	case ScoreRangeContainment:
		return scoreRangeContainment(ps, rankOf)
	case ScorePairWinner:
		return scorePairWinner(ps, rankOf)
	}
	return 0
}

// scoreCount: plain overlap between the picks and the target set.
func scoreCount(ps PickSet, rankOf []int, n int) int64 {
	var hits int64
	for _, p := range ps.Picks {
		if rankOf[p.Asset] < n {
			hits++
		}
	}
	return hits
}

// scoreWeighted: sum of confidence weights over matched picks.
func scoreWeighted(ps PickSet, rankOf []int, n int) int64 {
	var sum int64
	for _, p := range ps.Picks {
		if rankOf[p.Asset] < n {
			sum += int64(p.Weight)
		}
	}
	return sum
}

// scoreRankCorrelation: a footrule-style agreement score. The pick at
// position i predicts actual rank i; each pick loses its absolute
// displacement from that prediction. The floor at zero keeps the
// score comparable against non-negative tier thresholds. A perfect
// ordered match scores n*(m-1).
func scoreRankCorrelation(ps PickSet, rankOf []int, n, m int) int64 {
	max := int64(n) * int64(m-1)
	var displacement int64
	for i, p := range ps.Picks {
		d := int64(rankOf[p.Asset] - i)
		if d < 0 {
			d = -d
		}
		displacement += d
	}
	if displacement >= max {
		return 0
	}
	return max - displacement
}

// scoreRangeContainment: one point per pick whose actual rank falls
// inside its predicted [lo,hi] range.
func scoreRangeContainment(ps PickSet, rankOf []int) int64 {
	var hits int64
	for _, p := range ps.Picks {
		actual := rankOf[p.Asset]
		if actual >= p.RankLo && actual <= p.RankHi {
			hits++
		}
	}
	return hits
}

// scorePairWinner: one point per correctly ordered pick pair. The
// submission order predicts that earlier picks outrank later ones.
func scorePairWinner(ps PickSet, rankOf []int) int64 {
	var correct int64
	for i := 0; i < len(ps.Picks); i++ {
		for j := i + 1; j < len(ps.Picks); j++ {
			if rankOf[ps.Picks[i].Asset] < rankOf[ps.Picks[j].Asset] {
				correct++
			}
		}
	}
	return correct
}

// MaxScore is the highest score the configured mode can produce, used
// by tier tables and the loyalty accuracy gate to normalize.
func (r *Rules) MaxScore() int64 {
	n := int64(r.Pool.PickCount())
	switch r.Scoring {
	case ScoreCount, ScoreRangeContainment:
		return n
	case ScoreWeighted:
		return n * MaxWeight
	case ScoreRankCorrelation:
		return n * int64(r.Pool.Size()-1)
	case ScorePairWinner:
		return n * (n - 1) / 2
	}
	return 0
}
