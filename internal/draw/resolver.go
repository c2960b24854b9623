package draw

import (
	"sort"

	"pick-derby/internal/oracle"
)

// Outcome is the canonical result of one resolved period: the full
// ranking (asset indices, best first per the configured direction)
// and the N-asset target set. It is persisted verbatim so every
// ranking and score stays publicly auditable.
type Outcome struct {
	PeriodSeq uint64
	Ranking   []int
	Target    []int
}

// TicketScore pairs a scored ticket with its owner for the prize
// distributor.
type TicketScore struct {
	Player string
	Ticket int
	Score  int64
}

// Rank computes the canonical ranking for a performance vector:
// performance descending (ascending under DirectionBottom), ties
// broken by asset index ascending so the result is independent of
// observation order.
func (r *Rules) Rank(v oracle.PerformanceVector) ([]int, error) {
	if len(v) != r.Pool.Size() {
		return nil, ErrInvalidObservation
	}
	ranking := make([]int, len(v))
	for i := range ranking {
		ranking[i] = i
	}
	sort.SliceStable(ranking, func(a, b int) bool {
		ai, bi := ranking[a], ranking[b]
		if v[ai] != v[bi] {
			if r.Direction == DirectionBottom {
				return v[ai] < v[bi]
			}
			return v[ai] > v[bi]
		}
		return ai < bi
	})
	return ranking, nil
}

// Resolve turns a performance vector and the period's tickets into an
// Outcome and one deterministic score per ticket. It is a pure
// function of its inputs; the caller owns the state transition around
// it.
func (r *Rules) Resolve(periodSeq uint64, v oracle.PerformanceVector, tickets []Ticket) (*Outcome, []TicketScore, error) {
	ranking, err := r.Rank(v)
	if err != nil {
		return nil, nil, err
	}
	n := r.Pool.PickCount()
	target := make([]int, n)
	copy(target, ranking[:n])

	rankOf := make([]int, len(ranking))
	for pos, asset := range ranking {
		rankOf[asset] = pos
	}

	scores := make([]TicketScore, 0, len(tickets))
	for _, t := range tickets {
		scores = append(scores, TicketScore{
			Player: t.Player,
			Ticket: t.Index,
			Score:  r.score(t.Picks, rankOf),
		})
	}
	return &Outcome{PeriodSeq: periodSeq, Ranking: ranking, Target: target}, scores, nil
}

// Ticket is one stored submission handed to the resolver.
type Ticket struct {
	Player string
	Index  int
	Picks  PickSet
}
