package prize

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"pick-derby/internal/draw"
	"pick-derby/internal/economics"
)

func testSchedule(t *testing.T, rateBps int64) *economics.Schedule {
	t.Helper()
	s, err := economics.NewConstant(rateBps, []economics.Tier{
		{Threshold: 6, ShareBps: 5000},
		{Threshold: 5, ShareBps: 3000},
		{Threshold: 4, ShareBps: 1500},
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	return s
}

func TestSettleTopTierFullMatch(t *testing.T) {
	d, err := NewDistributor(testSchedule(t, 1000), TieEqual)
	if err != nil {
		t.Fatalf("distributor: %v", err)
	}
	pot := Pot{Retained: 50_000, Releasable: 50_000}
	scores := []draw.TicketScore{
		{Player: "alice", Score: 6},
		{Player: "bob", Score: 4},
		{Player: "carol", Score: 1},
	}
	dist, err := d.Settle(0, 0, scores, nil, pot, time.Now())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	// releasable = 100000 * 10% = 10000
	if dist.Releasable != 10_000 {
		t.Fatalf("expected releasable 10000, got %d", dist.Releasable)
	}
	var alice, bob, carol int64 = -1, -1, -1
	for _, c := range dist.Claims {
		switch c.Player {
		case "alice":
			alice = c.Amount
		case "bob":
			bob = c.Amount
		case "carol":
			carol = c.Amount
		}
	}
	if alice != 5000 {
		t.Fatalf("alice full match: expected top tier 5000, got %d", alice)
	}
	if bob != 1500 {
		t.Fatalf("bob: expected third tier 1500, got %d", bob)
	}
	if carol != -1 {
		t.Fatalf("carol below lowest threshold must get no claim, got %d", carol)
	}
	if dist.PotAfter.Retained != pot.Retained {
		t.Fatalf("retained changed: %d -> %d", pot.Retained, dist.PotAfter.Retained)
	}
}

func TestSettleEqualTieSplit(t *testing.T) {
	d, _ := NewDistributor(testSchedule(t, 1000), TieEqual)
	pot := Pot{Retained: 0, Releasable: 100_000}
	scores := []draw.TicketScore{
		{Player: "a", Score: 6},
		{Player: "b", Score: 6},
		{Player: "c", Score: 6},
	}
	dist, err := d.Settle(0, 0, scores, nil, pot, time.Now())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	// tier alloc = 10000 * 50% = 5000, split three ways, floored
	for _, c := range dist.Claims {
		if c.Amount != 1666 {
			t.Fatalf("%s: expected 1666, got %d", c.Player, c.Amount)
		}
	}
	if dist.Paid != 3*1666 {
		t.Fatalf("expected paid 4998, got %d", dist.Paid)
	}
}

func TestSettleStakeWeightedSplit(t *testing.T) {
	d, _ := NewDistributor(testSchedule(t, 1000), TieStake)
	pot := Pot{Retained: 0, Releasable: 100_000}
	scores := []draw.TicketScore{
		{Player: "a", Score: 6},
		{Player: "b", Score: 6},
	}
	stakes := map[string]int64{"a": 300, "b": 100}
	dist, err := d.Settle(0, 0, scores, stakes, pot, time.Now())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	amounts := map[string]int64{}
	for _, c := range dist.Claims {
		amounts[c.Player] = c.Amount
	}
	if amounts["a"] != 3750 || amounts["b"] != 1250 {
		t.Fatalf("expected 3:1 split of 5000, got %+v", amounts)
	}
}

func TestSettleRefusesRetentionViolation(t *testing.T) {
	// 50% payout rate against a pot that is almost all seed.
	d, _ := NewDistributor(testSchedule(t, 5000), TieEqual)
	pot := Pot{Retained: 90_000, Releasable: 10_000}
	_, err := d.Settle(0, 0, []draw.TicketScore{{Player: "a", Score: 6}}, nil, pot, time.Now())
	if !errors.Is(err, ErrRetentionViolation) {
		t.Fatalf("expected ErrRetentionViolation, got %v", err)
	}
}

func TestSettleMergesMultiTicketClaims(t *testing.T) {
	d, _ := NewDistributor(testSchedule(t, 1000), TieEqual)
	pot := Pot{Retained: 0, Releasable: 100_000}
	scores := []draw.TicketScore{
		{Player: "a", Ticket: 0, Score: 6},
		{Player: "a", Ticket: 1, Score: 6},
		{Player: "b", Ticket: 0, Score: 6},
	}
	dist, err := d.Settle(0, 0, scores, nil, pot, time.Now())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(dist.Claims) != 2 {
		t.Fatalf("expected one claim per (player,tier), got %d", len(dist.Claims))
	}
	amounts := map[string]int64{}
	for _, c := range dist.Claims {
		amounts[c.Player] = c.Amount
	}
	// a holds two of three shares of the 5000 allocation
	if amounts["a"] != 3333 || amounts["b"] != 1666 {
		t.Fatalf("expected a=3333 b=1666, got %+v", amounts)
	}
}

// Property check: across randomized pots, rates and scores, payouts
// never exceed the period releasable and the seed never decreases.
func TestRetentionInvariantRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	now := time.Now()
	for i := 0; i < 500; i++ {
		rate := rng.Int63n(10001)
		sched := testSchedule(t, rate)
		d, _ := NewDistributor(sched, TieEqual)
		pot := Pot{Retained: rng.Int63n(1_000_000), Releasable: rng.Int63n(1_000_000)}
		n := rng.Intn(20)
		scores := make([]draw.TicketScore, n)
		for j := range scores {
			scores[j] = draw.TicketScore{Player: string(rune('a' + j%26)), Score: rng.Int63n(8)}
		}
		dist, err := d.Settle(uint64(i), 0, scores, nil, pot, now)
		if err != nil {
			if errors.Is(err, ErrRetentionViolation) {
				continue
			}
			t.Fatalf("iteration %d: %v", i, err)
		}
		if dist.Paid > dist.Releasable {
			t.Fatalf("iteration %d: paid %d > releasable %d", i, dist.Paid, dist.Releasable)
		}
		if dist.PotAfter.Retained < pot.Retained {
			t.Fatalf("iteration %d: retained decreased %d -> %d", i, pot.Retained, dist.PotAfter.Retained)
		}
		if dist.PotAfter.Releasable != pot.Releasable-dist.Paid {
			t.Fatalf("iteration %d: pot accounting off", i)
		}
	}
}

func TestSweepExpired(t *testing.T) {
	now := time.Now()
	claims := []Claim{
		{Player: "a", Amount: 100, CreatedAt: now.Add(-48 * time.Hour)},
		{Player: "b", Amount: 200, CreatedAt: now.Add(-48 * time.Hour), Claimed: true},
		{Player: "c", Amount: 300, CreatedAt: now.Add(-time.Hour)},
	}
	swept, total := SweepExpired(claims, 24*time.Hour, now)
	if len(swept) != 1 || total != 100 {
		t.Fatalf("expected only a's 100 swept, got %d claims total %d", len(swept), total)
	}
	pot := Pot{Retained: 500, Releasable: 0}.Return(total)
	if pot.Retained != 500 || pot.Releasable != 100 {
		t.Fatalf("sweep must return to releasable only, got %+v", pot)
	}
}

func TestPotAccrueEntry(t *testing.T) {
	pot := Pot{}.AccrueEntry(1000, 3000)
	if pot.Retained != 300 || pot.Releasable != 700 {
		t.Fatalf("expected 30%% to seed, got %+v", pot)
	}
}

func TestPotReleaseSeedBounds(t *testing.T) {
	pot := Pot{Retained: 100, Releasable: 0}
	if _, err := pot.ReleaseSeed(101); !errors.Is(err, ErrRetentionViolation) {
		t.Fatalf("over-release: expected ErrRetentionViolation, got %v", err)
	}
	after, err := pot.ReleaseSeed(100)
	if err != nil || after.Retained != 0 {
		t.Fatalf("full terminal release should succeed, got %+v err=%v", after, err)
	}
}
