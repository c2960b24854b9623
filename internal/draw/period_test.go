package draw

import (
	"errors"
	"testing"
	"time"
)

func TestPeriodLifecycle(t *testing.T) {
	open := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	p := NewPeriod(0, open, 7*24*time.Hour)

	if !p.AcceptsSubmissions(open.Add(time.Hour)) {
		t.Fatalf("window should be open just after start")
	}
	if p.AcceptsSubmissions(p.CloseAt) {
		t.Fatalf("window must close exactly at CloseAt")
	}

	if err := p.BeginResolve(open.Add(time.Hour)); !errors.Is(err, ErrDrawNotReady) {
		t.Fatalf("resolve before cooldown: expected ErrDrawNotReady, got %v", err)
	}
	if p.Phase != PhaseOpen {
		t.Fatalf("failed precondition must not change phase, got %s", p.Phase)
	}

	if err := p.BeginResolve(p.CloseAt); err != nil {
		t.Fatalf("begin resolve at close: %v", err)
	}
	if err := p.MarkResolved(); err != nil {
		t.Fatalf("mark resolved: %v", err)
	}
	if err := p.BeginResolve(p.CloseAt.Add(time.Hour)); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second resolve: expected ErrAlreadyResolved, got %v", err)
	}

	if err := p.MarkSettled(); err != nil {
		t.Fatalf("mark settled: %v", err)
	}
	if err := p.MarkSettled(); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("second settle: expected ErrAlreadySettled, got %v", err)
	}
}

func TestPeriodSettleRequiresResolved(t *testing.T) {
	p := NewPeriod(3, time.Now(), time.Hour)
	if err := p.MarkSettled(); !errors.Is(err, ErrNotResolved) {
		t.Fatalf("expected ErrNotResolved, got %v", err)
	}
}

func TestValidatePicks(t *testing.T) {
	r := testRules(t, 6, 3, ScoreCount, DirectionTop)

	ok := PickSet{Picks: []Pick{{Asset: 0}, {Asset: 4}, {Asset: 5}}}
	if err := r.Validate(ok); err != nil {
		t.Fatalf("valid picks rejected: %v", err)
	}

	dup := PickSet{Picks: []Pick{{Asset: 0}, {Asset: 0}, {Asset: 5}}}
	if err := r.Validate(dup); !errors.Is(err, ErrInvalidPicks) {
		t.Fatalf("duplicate picks: expected ErrInvalidPicks, got %v", err)
	}

	outOfRange := PickSet{Picks: []Pick{{Asset: 0}, {Asset: 4}, {Asset: 6}}}
	if err := r.Validate(outOfRange); !errors.Is(err, ErrInvalidPicks) {
		t.Fatalf("out of range: expected ErrInvalidPicks, got %v", err)
	}

	short := PickSet{Picks: []Pick{{Asset: 0}}}
	if err := r.Validate(short); !errors.Is(err, ErrInvalidPicks) {
		t.Fatalf("wrong size: expected ErrInvalidPicks, got %v", err)
	}
}

func TestValidateWeightDomain(t *testing.T) {
	r := testRules(t, 6, 2, ScoreWeighted, DirectionTop)
	bad := PickSet{Picks: []Pick{{Asset: 0, Weight: 6}, {Asset: 1, Weight: 3}}}
	if err := r.Validate(bad); !errors.Is(err, ErrInvalidPicks) {
		t.Fatalf("weight 6: expected ErrInvalidPicks, got %v", err)
	}
	good := PickSet{Picks: []Pick{{Asset: 0, Weight: 1}, {Asset: 1, Weight: 5}}}
	if err := r.Validate(good); err != nil {
		t.Fatalf("weights in [1,5] rejected: %v", err)
	}
}

func TestValidateRangeDomain(t *testing.T) {
	r := testRules(t, 6, 2, ScoreRangeContainment, DirectionTop)
	inverted := PickSet{Picks: []Pick{{Asset: 0, RankLo: 3, RankHi: 1}, {Asset: 1, RankLo: 0, RankHi: 2}}}
	if err := r.Validate(inverted); !errors.Is(err, ErrInvalidPicks) {
		t.Fatalf("inverted range: expected ErrInvalidPicks, got %v", err)
	}
}
