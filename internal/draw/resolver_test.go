package draw

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"pick-derby/internal/oracle"
	"pick-derby/internal/pool"
)

func testRules(t *testing.T, m, n int, mode ScoringMode, dir Direction) *Rules {
	t.Helper()
	ids := make([]string, m)
	for i := range ids {
		ids[i] = fmt.Sprintf("feed-%d", i)
	}
	p, err := pool.NewRegistry(ids, n)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	r, err := NewRules(p, 7*24*time.Hour, mode, dir, ReviseLast, 1, 100, 0)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	return r
}

func TestRankDescendingWithIndexTieBreak(t *testing.T) {
	r := testRules(t, 5, 2, ScoreCount, DirectionTop)
	// assets 1 and 3 tie on +200; index ascending breaks the tie.
	v := oracle.PerformanceVector{-100, 200, 50, 200, -300}
	ranking, err := r.Rank(v)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	want := []int{1, 3, 2, 0, 4}
	if !reflect.DeepEqual(ranking, want) {
		t.Fatalf("expected %v, got %v", want, ranking)
	}
}

func TestRankContrarianAscending(t *testing.T) {
	r := testRules(t, 4, 2, ScoreCount, DirectionBottom)
	v := oracle.PerformanceVector{10, -40, 0, -40}
	ranking, err := r.Rank(v)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	want := []int{1, 3, 2, 0}
	if !reflect.DeepEqual(ranking, want) {
		t.Fatalf("expected %v, got %v", want, ranking)
	}
}

func TestRankRejectsWrongLength(t *testing.T) {
	r := testRules(t, 5, 2, ScoreCount, DirectionTop)
	if _, err := r.Rank(oracle.PerformanceVector{1, 2, 3}); !errors.Is(err, ErrInvalidObservation) {
		t.Fatalf("expected ErrInvalidObservation, got %v", err)
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := testRules(t, 10, 3, ScoreCount, DirectionTop)
	v := oracle.PerformanceVector{5, 5, 5, 900, -10, 42, 0, 42, 13, -1}
	tickets := []Ticket{
		{Player: "alice", Index: 0, Picks: PickSet{Picks: []Pick{{Asset: 3}, {Asset: 5}, {Asset: 7}}}},
		{Player: "bob", Index: 0, Picks: PickSet{Picks: []Pick{{Asset: 0}, {Asset: 4}, {Asset: 9}}}},
	}
	out1, scores1, err := r.Resolve(7, v, tickets)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out2, scores2, err := r.Resolve(7, v, tickets)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if !reflect.DeepEqual(out1, out2) || !reflect.DeepEqual(scores1, scores2) {
		t.Fatalf("resolution not deterministic")
	}
	if !reflect.DeepEqual(out1.Target, []int{3, 5, 7}) {
		t.Fatalf("expected target [3 5 7], got %v", out1.Target)
	}
	if scores1[0].Score != 3 {
		t.Fatalf("alice picked the full target, expected 3, got %d", scores1[0].Score)
	}
	if scores1[1].Score != 0 {
		t.Fatalf("bob matched nothing, expected 0, got %d", scores1[1].Score)
	}
}

// Scenario from the weekly game: 42 assets, 6 picks, asset 7 is the
// top performer and the ticket nails the next five ranked assets too.
func TestResolveFullMatchWeeklyPool(t *testing.T) {
	r := testRules(t, 42, 6, ScoreCount, DirectionTop)
	v := make(oracle.PerformanceVector, 42)
	for i := range v {
		v[i] = int64(-i) // descending by index as baseline
	}
	v[7] = 4000 // +40.00%
	// next five best after asset 7 are assets 0,1,2,3,4
	picks := PickSet{Picks: []Pick{{Asset: 7}, {Asset: 0}, {Asset: 1}, {Asset: 2}, {Asset: 3}, {Asset: 4}}}
	if err := r.Validate(picks); err != nil {
		t.Fatalf("validate: %v", err)
	}
	out, scores, err := r.Resolve(0, v, []Ticket{{Player: "p", Index: 0, Picks: picks}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.Ranking[0] != 7 {
		t.Fatalf("expected asset 7 ranked first, got %d", out.Ranking[0])
	}
	if scores[0].Score != 6 {
		t.Fatalf("expected full match 6, got %d", scores[0].Score)
	}
}
