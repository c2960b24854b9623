package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pick-derby/internal/ledger"
	"pick-derby/internal/store"
	"pick-derby/internal/testutil"
)

func seedPlayer(t *testing.T, st *store.Store, name, key string, balance int64) string {
	t.Helper()
	ctx := context.Background()
	id, err := st.CreatePlayer(ctx, name, key)
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	if err := st.EnsureAccount(ctx, id, balance); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	return id
}

func TestStorePing(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestPlayerLookupAndTransfer(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	id := seedPlayer(t, st, "alice", "pd_alice", 500)

	p, err := st.GetPlayerByAPIKey(ctx, "pd_alice")
	if err != nil || p.ID != id {
		t.Fatalf("lookup = %+v, %v", p, err)
	}
	if _, err := st.GetPlayerByAPIKey(ctx, "pd_wrong"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("wrong key err = %v", err)
	}

	bal, err := st.Debit(ctx, id, 100, "entry_fee_debit", "submission", "s1")
	if err != nil || bal != 400 {
		t.Fatalf("debit = %d, %v", bal, err)
	}
	if _, err := st.Debit(ctx, id, 1000, "entry_fee_debit", "submission", "s2"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("overdraft err = %v", err)
	}
	bal, err = st.Credit(ctx, id, 50, "prize_credit", "claim", "c1")
	if err != nil || bal != 450 {
		t.Fatalf("credit = %d, %v", bal, err)
	}

	entries, err := st.ListLedgerEntries(ctx, id, 10, 0)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	// the refused overdraft must not have left an entry
	if len(entries) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(entries))
	}
}

func TestResolutionPhaseGuard(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now().UTC()
	if err := st.UpsertPeriod(ctx, store.Period{Seq: 1, OpenAt: now, CloseAt: now.Add(time.Hour), Phase: "open"}); err != nil {
		t.Fatalf("upsert period: %v", err)
	}

	row := store.Outcome{PeriodSeq: 1, RankingJSON: []byte(`[1,0]`), TargetJSON: []byte(`[1]`), ScoresJSON: []byte(`[]`)}
	if err := st.CommitResolution(ctx, row); err != nil {
		t.Fatalf("commit resolution: %v", err)
	}
	p, err := st.GetPeriod(ctx, 1)
	if err != nil || p.Phase != "resolved" {
		t.Fatalf("period after resolution = %+v, %v", p, err)
	}

	// second writer loses the phase race
	if err := st.CommitResolution(ctx, row); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second resolution err = %v", err)
	}

	o, err := st.GetOutcome(ctx, 1)
	if err != nil || string(o.RankingJSON) != `[1, 0]` && string(o.RankingJSON) != `[1,0]` {
		t.Fatalf("outcome = %+v, %v", o, err)
	}

	list, err := st.ListOutcomes(ctx, 10, 0)
	if err != nil || len(list) != 1 || list[0].PeriodSeq != 1 {
		t.Fatalf("outcomes list = %+v, %v", list, err)
	}
}

func TestEntryFeeRefundRestoresBalance(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	id := seedPlayer(t, st, "alice", "pd_refund", 500)
	treasury := ledger.New(st)

	if _, err := treasury.DebitEntryFee(ctx, id, "sub1", 100); err != nil {
		t.Fatalf("debit: %v", err)
	}
	bal, err := treasury.RefundEntryFee(ctx, id, "sub1", 100)
	if err != nil || bal != 500 {
		t.Fatalf("refund = %d, %v", bal, err)
	}

	entries, err := st.ListLedgerEntries(ctx, id, 10, 0)
	if err != nil || len(entries) != 2 {
		t.Fatalf("ledger entries = %+v, %v", entries, err)
	}
	// both legs reference the submission that failed to book
	for _, e := range entries {
		if e.RefID != "sub1" {
			t.Fatalf("entry ref = %+v", e)
		}
	}
}

func TestSettlementCommitAndClaims(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := seedPlayer(t, st, "alice", "pd_a", 0)
	now := time.Now().UTC()
	if err := st.UpsertPeriod(ctx, store.Period{Seq: 1, OpenAt: now, CloseAt: now.Add(time.Hour), Phase: "resolved"}); err != nil {
		t.Fatalf("upsert period: %v", err)
	}
	if err := st.EnsurePot(ctx, 1000); err != nil {
		t.Fatalf("ensure pot: %v", err)
	}

	claims := []store.Claim{{ID: store.NewID(), PeriodSeq: 1, PlayerID: alice, Tier: 0, AmountUnits: 40}}
	loyalty := []store.LoyaltyRecord{{PlayerID: alice, FirstPeriod: 1, LastActive: 1, Tenure: 1, ScoreSum: 3, PeriodsScored: 1}}
	pot := store.PotState{RetainedUnits: 1000, ReleasableUnits: 60}
	if err := st.CommitSettlement(ctx, 1, claims, pot, loyalty); err != nil {
		t.Fatalf("commit settlement: %v", err)
	}

	// a retried settlement is a no-op at the phase guard
	if err := st.CommitSettlement(ctx, 1, claims, pot, loyalty); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second settlement err = %v", err)
	}

	got, err := st.GetPot(ctx)
	if err != nil || got.RetainedUnits != 1000 || got.ReleasableUnits != 60 {
		t.Fatalf("pot = %+v, %v", got, err)
	}
	rec, err := st.GetLoyalty(ctx, alice)
	if err != nil || rec.Tenure != 1 {
		t.Fatalf("loyalty = %+v, %v", rec, err)
	}

	c, err := st.MarkClaimed(ctx, 1, alice, 0)
	if err != nil || !c.Claimed || c.AmountUnits != 40 {
		t.Fatalf("mark claimed = %+v, %v", c, err)
	}
	if _, err := st.MarkClaimed(ctx, 1, alice, 0); !errors.Is(err, store.ErrClaimConflict) {
		t.Fatalf("double claim err = %v", err)
	}
	if _, err := st.MarkClaimed(ctx, 1, alice, 3); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing claim err = %v", err)
	}
}

func TestSweepExpiredClaimsReturnsToPot(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := seedPlayer(t, st, "alice", "pd_a", 0)
	now := time.Now().UTC()
	if err := st.UpsertPeriod(ctx, store.Period{Seq: 1, OpenAt: now, CloseAt: now, Phase: "resolved"}); err != nil {
		t.Fatalf("upsert period: %v", err)
	}
	if err := st.EnsurePot(ctx, 0); err != nil {
		t.Fatalf("ensure pot: %v", err)
	}
	claims := []store.Claim{
		{ID: store.NewID(), PeriodSeq: 1, PlayerID: alice, Tier: 0, AmountUnits: 25},
		{ID: store.NewID(), PeriodSeq: 1, PlayerID: alice, Tier: 1, AmountUnits: 10},
	}
	if err := st.CommitSettlement(ctx, 1, claims, store.PotState{}, nil); err != nil {
		t.Fatalf("commit settlement: %v", err)
	}
	if _, err := st.MarkClaimed(ctx, 1, alice, 1); err != nil {
		t.Fatalf("claim tier 1: %v", err)
	}

	// created_at is now(); a future cutoff expires the unclaimed one
	total, err := st.SweepExpiredClaims(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil || total != 25 {
		t.Fatalf("sweep = %d, %v", total, err)
	}
	pot, err := st.GetPot(ctx)
	if err != nil || pot.ReleasableUnits != 25 {
		t.Fatalf("pot after sweep = %+v, %v", pot, err)
	}
	if _, err := st.MarkClaimed(ctx, 1, alice, 0); !errors.Is(err, store.ErrClaimConflict) {
		t.Fatalf("claim after sweep err = %v", err)
	}
}

func TestEndgameCommitLatches(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := st.EnsurePot(ctx, 500); err != nil {
		t.Fatalf("ensure pot: %v", err)
	}
	if err := st.CommitEndgame(ctx, store.PotState{RetainedUnits: 100, ReleasableUnits: 0}); err != nil {
		t.Fatalf("commit endgame: %v", err)
	}
	pot, err := st.GetPot(ctx)
	if err != nil || !pot.EndgameRun || pot.RetainedUnits != 100 {
		t.Fatalf("pot = %+v, %v", pot, err)
	}
	if err := st.CommitEndgame(ctx, store.PotState{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second endgame err = %v", err)
	}
}

func TestSubmissionUpsertReplacesPicks(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := seedPlayer(t, st, "alice", "pd_a", 0)
	now := time.Now().UTC()
	if err := st.UpsertPeriod(ctx, store.Period{Seq: 1, OpenAt: now, CloseAt: now.Add(time.Hour), Phase: "open"}); err != nil {
		t.Fatalf("upsert period: %v", err)
	}

	sub := store.Submission{ID: store.NewID(), PeriodSeq: 1, PlayerID: alice, TicketIndex: 0, PicksJSON: []byte(`[{"asset":0}]`), StakeUnits: 100}
	if err := st.UpsertSubmission(ctx, sub); err != nil {
		t.Fatalf("insert: %v", err)
	}
	sub.PicksJSON = []byte(`[{"asset":3}]`)
	if err := st.UpsertSubmission(ctx, sub); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := st.GetSubmission(ctx, 1, alice, 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.PicksJSON) != `[{"asset": 3}]` && string(got.PicksJSON) != `[{"asset":3}]` {
		t.Fatalf("picks = %s", got.PicksJSON)
	}
	n, err := st.CountTickets(ctx, 1, alice)
	if err != nil || n != 1 {
		t.Fatalf("count = %d, %v", n, err)
	}
}
