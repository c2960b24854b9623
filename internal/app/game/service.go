// Package game is the application service of one game instance. It
// serializes every state transition behind one mutex, keeps the
// working state in memory, and writes through to the store when one
// is attached. Tests run it store-less.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pick-derby/internal/config"
	"pick-derby/internal/draw"
	"pick-derby/internal/ledger"
	"pick-derby/internal/loyalty"
	"pick-derby/internal/oracle"
	"pick-derby/internal/prize"
	"pick-derby/internal/store"
)

type submission struct {
	id     string
	player string
	ticket int
	picks  draw.PickSet
	stake  int64
}

type claimKey struct {
	period uint64
	player string
	tier   int
}

type Service struct {
	mu       sync.Mutex
	game     *config.Game
	st       *store.Store
	treasury *ledger.Ledger
	feed     oracle.Feed
	now      func() time.Time

	startAt  time.Time
	current  uint64
	periods  map[uint64]*draw.Period
	subs     map[uint64]map[string]map[int]*submission
	outcomes map[uint64]*draw.Outcome
	scores   map[uint64][]draw.TicketScore
	claims   map[claimKey]*prize.Claim
	pot      prize.Pot
}

// New builds the service and recovers its working state from the
// store when one is attached: pot, loyalty records, and the latest
// period including its submissions and, if resolved, its outcome. A
// nil store starts a fresh in-memory instance seeded from config.
func New(ctx context.Context, gameCfg *config.Game, st *store.Store, feed oracle.Feed, startAt time.Time) (*Service, error) {
	if gameCfg == nil || feed == nil {
		return nil, ErrInvalidRequest
	}
	s := &Service{
		game:     gameCfg,
		st:       st,
		feed:     feed,
		now:      time.Now,
		startAt:  startAt,
		periods:  make(map[uint64]*draw.Period),
		subs:     make(map[uint64]map[string]map[int]*submission),
		outcomes: make(map[uint64]*draw.Outcome),
		scores:   make(map[uint64][]draw.TicketScore),
		claims:   make(map[claimKey]*prize.Claim),
		pot:      prize.Pot{Retained: gameCfg.InitialSeed},
	}
	if st == nil {
		s.openPeriod(1, startAt)
		return s, nil
	}

	s.treasury = ledger.New(st)
	if err := st.EnsurePot(ctx, gameCfg.InitialSeed); err != nil {
		return nil, err
	}
	potRow, err := st.GetPot(ctx)
	if err != nil {
		return nil, err
	}
	s.pot = prize.Pot{Retained: potRow.RetainedUnits, Releasable: potRow.ReleasableUnits}

	recs, err := st.ListLoyalty(ctx)
	if err != nil {
		return nil, err
	}
	restore := make([]loyalty.Record, 0, len(recs))
	for _, r := range recs {
		restore = append(restore, loyalty.Record{
			Player:        r.PlayerID,
			FirstPeriod:   r.FirstPeriod,
			LastActive:    r.LastActive,
			Tenure:        r.Tenure,
			ScoreSum:      r.ScoreSum,
			PeriodsScored: r.PeriodsScored,
		})
	}
	gameCfg.Loyalty.Restore(restore, potRow.EndgameRun)

	latest, err := st.LatestPeriod(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := s.openPeriod(1, startAt); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		p := &draw.Period{Seq: latest.Seq, OpenAt: latest.OpenAt, CloseAt: latest.CloseAt, Phase: draw.Phase(latest.Phase)}
		s.periods[p.Seq] = p
		s.current = p.Seq
		if err := s.restoreSubmissions(ctx, p.Seq); err != nil {
			return nil, err
		}
		if p.Phase == draw.PhaseResolved {
			if err := s.restoreOutcome(ctx, p.Seq); err != nil {
				return nil, err
			}
		}
		// A crash between settlement and the successor's open leaves
		// the latest period settled with nothing after it. Reopen the
		// successor so the instance keeps taking picks.
		if p.Phase == draw.PhaseSettled && !potRow.EndgameRun {
			if err := s.openPeriod(p.Seq+1, p.CloseAt); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// SetClock overrides the service clock for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) openPeriod(seq uint64, openAt time.Time) error {
	p := draw.NewPeriod(seq, openAt, s.game.Rules.Cooldown)
	s.periods[seq] = p
	s.current = seq
	if s.st != nil {
		return s.st.UpsertPeriod(context.Background(), store.Period{
			Seq: p.Seq, OpenAt: p.OpenAt, CloseAt: p.CloseAt, Phase: string(p.Phase),
		})
	}
	return nil
}

func (s *Service) restoreSubmissions(ctx context.Context, seq uint64) error {
	rows, err := s.st.ListSubmissions(ctx, seq)
	if err != nil {
		return err
	}
	for _, row := range rows {
		ps, err := picksFromJSON(row.PicksJSON)
		if err != nil {
			return fmt.Errorf("submission %s: %w", row.ID, err)
		}
		s.putSub(seq, &submission{
			id: row.ID, player: row.PlayerID, ticket: row.TicketIndex, picks: ps, stake: row.StakeUnits,
		})
	}
	return nil
}

func (s *Service) restoreOutcome(ctx context.Context, seq uint64) error {
	row, err := s.st.GetOutcome(ctx, seq)
	if err != nil {
		return err
	}
	o := &draw.Outcome{PeriodSeq: seq}
	if err := json.Unmarshal(row.RankingJSON, &o.Ranking); err != nil {
		return err
	}
	if err := json.Unmarshal(row.TargetJSON, &o.Target); err != nil {
		return err
	}
	var items []TicketScoreItem
	if err := json.Unmarshal(row.ScoresJSON, &items); err != nil {
		return err
	}
	scores := make([]draw.TicketScore, 0, len(items))
	for _, it := range items {
		scores = append(scores, draw.TicketScore{Player: it.Player, Ticket: it.Ticket, Score: it.Score})
	}
	s.outcomes[seq] = o
	s.scores[seq] = scores
	return nil
}

func (s *Service) putSub(seq uint64, sub *submission) {
	byPlayer := s.subs[seq]
	if byPlayer == nil {
		byPlayer = make(map[string]map[int]*submission)
		s.subs[seq] = byPlayer
	}
	byTicket := byPlayer[sub.player]
	if byTicket == nil {
		byTicket = make(map[int]*submission)
		byPlayer[sub.player] = byTicket
	}
	byTicket[sub.ticket] = sub
}

// SubmitPicks validates and books one ticket for the current period.
// The first write to a slot debits the entry fee and accrues it into
// the pot; a revision under the last-write policy replaces picks for
// free, and under the first-write policy is refused.
func (s *Service) SubmitPicks(ctx context.Context, playerID string, in SubmitInput) (*SubmitResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.Loyalty.EndgameRun() {
		return nil, draw.ErrGameNotActive
	}
	now := s.now()
	p := s.periods[s.current]
	p.MarkClosed(now)
	if !p.AcceptsSubmissions(now) {
		return nil, draw.ErrSubmissionWindowClosed
	}
	if in.Ticket < 0 || in.Ticket >= s.game.Rules.MaxTickets {
		return nil, draw.ErrTicketLimit
	}
	ps := picksFromInput(in.Picks)
	if err := s.game.Rules.Validate(ps); err != nil {
		return nil, err
	}

	if existing := s.lookupSub(p.Seq, playerID, in.Ticket); existing != nil {
		if s.game.Rules.Revision == draw.ReviseFirst {
			return nil, draw.ErrPickAlreadySubmitted
		}
		existing.picks = ps
		if s.st != nil {
			picksJSON, err := picksToJSON(ps)
			if err != nil {
				return nil, err
			}
			if err := s.st.UpsertSubmission(ctx, store.Submission{
				ID: existing.id, PeriodSeq: p.Seq, PlayerID: playerID,
				TicketIndex: in.Ticket, PicksJSON: picksJSON, StakeUnits: existing.stake,
			}); err != nil {
				return nil, err
			}
		}
		return &SubmitResponse{
			SubmissionID: existing.id, PeriodSeq: p.Seq, Ticket: in.Ticket,
			Revised: true, ClosesAt: p.CloseAt,
		}, nil
	}

	fee := s.game.Rules.EntryFeeUnits
	subID := store.NewID()
	if s.st != nil {
		if fee > 0 {
			if _, err := s.treasury.DebitEntryFee(ctx, playerID, subID, fee); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return nil, ErrInsufficientBalance
				}
				return nil, err
			}
		}
		picksJSON, err := picksToJSON(ps)
		if err != nil {
			return nil, err
		}
		if err := s.st.UpsertSubmission(ctx, store.Submission{
			ID: subID, PeriodSeq: p.Seq, PlayerID: playerID,
			TicketIndex: in.Ticket, PicksJSON: picksJSON, StakeUnits: fee,
		}); err != nil {
			if fee > 0 {
				if _, rerr := s.treasury.RefundEntryFee(ctx, playerID, subID, fee); rerr != nil {
					log.Error().Err(rerr).Str("player", playerID).Str("submission", subID).
						Msg("entry fee refund failed")
				}
			}
			return nil, err
		}
	}
	s.putSub(p.Seq, &submission{id: subID, player: playerID, ticket: in.Ticket, picks: ps, stake: fee})
	s.pot = s.pot.AccrueEntry(fee, s.game.RetainBps)
	if err := s.persistPot(ctx); err != nil {
		return nil, err
	}
	return &SubmitResponse{
		SubmissionID: subID, PeriodSeq: p.Seq, Ticket: in.Ticket,
		FeeUnits: fee, ClosesAt: p.CloseAt,
	}, nil
}

func (s *Service) lookupSub(seq uint64, player string, ticket int) *submission {
	if byPlayer := s.subs[seq]; byPlayer != nil {
		if byTicket := byPlayer[player]; byTicket != nil {
			return byTicket[ticket]
		}
	}
	return nil
}

func (s *Service) persistPot(ctx context.Context) error {
	if s.st == nil {
		return nil
	}
	return s.st.UpdatePot(ctx, store.PotState{RetainedUnits: s.pot.Retained, ReleasableUnits: s.pot.Releasable})
}

// ResolveDue resolves and settles the current period if its window
// has closed. The scheduler calls this on every tick; a period that
// is not due yet is not an error.
func (s *Service) ResolveDue(ctx context.Context) (*ResolveResponse, error) {
	s.mu.Lock()
	seq := s.current
	s.mu.Unlock()
	resp, err := s.ResolvePeriod(ctx, seq)
	if errors.Is(err, draw.ErrDrawNotReady) || errors.Is(err, draw.ErrAlreadyResolved) {
		return nil, nil
	}
	return resp, err
}

// ResolvePeriod drives one period through resolution and settlement.
// A failed oracle fetch leaves the period closed for a retry; a
// retention violation leaves it resolved-but-unsettled, and calling
// again retries only the settlement.
func (s *Service) ResolvePeriod(ctx context.Context, seq uint64) (*ResolveResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.periods[seq]
	if p == nil {
		return nil, ErrPeriodNotFound
	}
	now := s.now()

	if p.Phase != draw.PhaseResolved {
		if err := p.BeginResolve(now); err != nil {
			return nil, err
		}
		v, err := s.feed.ClosedPeriodPerformance(ctx, seq)
		if err != nil {
			return nil, fmt.Errorf("period %d observation: %w", seq, err)
		}
		outcome, scores, err := s.game.Rules.Resolve(seq, v, s.ticketsFor(seq))
		if err != nil {
			return nil, err
		}
		if s.st != nil {
			row, err := outcomeRow(outcome, scores)
			if err != nil {
				return nil, err
			}
			if err := s.st.CommitResolution(ctx, row); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return nil, draw.ErrAlreadyResolved
				}
				return nil, err
			}
		}
		if err := p.MarkResolved(); err != nil {
			return nil, err
		}
		s.outcomes[seq] = outcome
		s.scores[seq] = scores
		log.Info().Uint64("period", seq).Int("tickets", len(scores)).Msg("period resolved")
	}

	return s.settleLocked(ctx, seq, now)
}

func (s *Service) ticketsFor(seq uint64) []draw.Ticket {
	var tickets []draw.Ticket
	for player, byTicket := range s.subs[seq] {
		for idx, sub := range byTicket {
			tickets = append(tickets, draw.Ticket{Player: player, Index: idx, Picks: sub.picks})
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].Player != tickets[j].Player {
			return tickets[i].Player < tickets[j].Player
		}
		return tickets[i].Index < tickets[j].Index
	})
	return tickets
}

func outcomeRow(o *draw.Outcome, scores []draw.TicketScore) (store.Outcome, error) {
	ranking, err := json.Marshal(o.Ranking)
	if err != nil {
		return store.Outcome{}, err
	}
	target, err := json.Marshal(o.Target)
	if err != nil {
		return store.Outcome{}, err
	}
	items := make([]TicketScoreItem, 0, len(scores))
	for _, sc := range scores {
		items = append(items, TicketScoreItem{Player: sc.Player, Ticket: sc.Ticket, Score: sc.Score})
	}
	scoresJSON, err := json.Marshal(items)
	if err != nil {
		return store.Outcome{}, err
	}
	return store.Outcome{PeriodSeq: o.PeriodSeq, RankingJSON: ranking, TargetJSON: target, ScoresJSON: scoresJSON}, nil
}

func (s *Service) settleLocked(ctx context.Context, seq uint64, now time.Time) (*ResolveResponse, error) {
	p := s.periods[seq]
	scores := s.scores[seq]
	age := int64(now.Sub(s.startAt) / time.Second)

	stakes := make(map[string]int64)
	var active []string
	best := make(map[string]int64)
	for player, byTicket := range s.subs[seq] {
		active = append(active, player)
		for _, sub := range byTicket {
			stakes[player] += sub.stake
		}
	}
	sort.Strings(active)
	for _, sc := range scores {
		if prev, ok := best[sc.Player]; !ok || sc.Score > prev {
			best[sc.Player] = sc.Score
		}
	}

	dist, err := s.game.Distributor.Settle(seq, age, scores, stakes, s.pot, now)
	if err != nil {
		return nil, err
	}

	s.game.Loyalty.RecordPeriod(seq, active, best)

	if s.st != nil {
		rows := make([]store.Claim, 0, len(dist.Claims))
		for _, c := range dist.Claims {
			rows = append(rows, store.Claim{
				ID: store.NewID(), PeriodSeq: c.PeriodSeq, PlayerID: c.Player,
				Tier: c.Tier, AmountUnits: c.Amount,
			})
		}
		if err := s.st.CommitSettlement(ctx, seq, rows,
			store.PotState{RetainedUnits: dist.PotAfter.Retained, ReleasableUnits: dist.PotAfter.Releasable},
			loyaltyRows(s.game.Loyalty.Records())); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, draw.ErrAlreadySettled
			}
			return nil, err
		}
	}
	if err := p.MarkSettled(); err != nil {
		return nil, err
	}
	s.pot = dist.PotAfter
	for i := range dist.Claims {
		c := dist.Claims[i]
		s.claims[claimKey{period: c.PeriodSeq, player: c.Player, tier: c.Tier}] = &c
	}
	log.Info().
		Uint64("period", seq).
		Int64("rate_bps", dist.RateBps).
		Int64("paid", dist.Paid).
		Int("claims", len(dist.Claims)).
		Msg("period settled")

	resp := &ResolveResponse{
		PeriodSeq: seq, RateBps: dist.RateBps, Releasable: dist.Releasable,
		Paid: dist.Paid, Claims: len(dist.Claims),
	}
	if endgame := s.game.Rules.EndgamePeriod; endgame != 0 && seq >= endgame {
		if _, err := s.runEndgameLocked(ctx); err != nil && !errors.Is(err, loyalty.ErrEndgameAlreadyRun) {
			return nil, err
		}
		resp.EndgameRun = true
		return resp, nil
	}
	if err := s.openPeriod(seq+1, p.CloseAt); err != nil {
		return nil, err
	}
	resp.NextSeq = s.current
	return resp, nil
}

func loyaltyRows(recs []loyalty.Record) []store.LoyaltyRecord {
	out := make([]store.LoyaltyRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, store.LoyaltyRecord{
			PlayerID: r.Player, FirstPeriod: r.FirstPeriod, LastActive: r.LastActive,
			Tenure: r.Tenure, ScoreSum: r.ScoreSum, PeriodsScored: r.PeriodsScored,
		})
	}
	return out
}

// RunEndgame triggers the terminal OG distribution by hand. The
// scheduled path runs it automatically when the configured endgame
// period settles.
func (s *Service) RunEndgame(ctx context.Context) (*EndgameResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runEndgameLocked(ctx)
}

func (s *Service) runEndgameLocked(ctx context.Context) (*EndgameResponse, error) {
	shares, potAfter, err := s.game.Loyalty.Endgame(s.pot, s.game.Rules.MaxScore())
	if err != nil {
		return nil, err
	}
	if s.st != nil {
		if err := s.st.CommitEndgame(ctx, store.PotState{
			RetainedUnits: potAfter.Retained, ReleasableUnits: potAfter.Releasable,
		}); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, loyalty.ErrEndgameAlreadyRun
			}
			return nil, err
		}
		payoutID := store.NewID()
		for _, sh := range shares {
			if _, err := s.treasury.CreditOGShare(ctx, sh.Player, payoutID, sh.Amount); err != nil {
				return nil, err
			}
		}
	}
	s.pot = potAfter
	out := make([]OGShareItem, 0, len(shares))
	for _, sh := range shares {
		out = append(out, OGShareItem{Player: sh.Player, Amount: sh.Amount})
	}
	log.Info().Int("qualifiers", len(out)).Msg("endgame distribution complete")
	return &EndgameResponse{Shares: out, PotRetained: potAfter.Retained, PotReleasable: potAfter.Releasable}, nil
}

// ClaimPrize pays one settled entitlement into the player's account.
// The pot was already debited at settlement; claiming only moves the
// fixed amount to the account.
func (s *Service) ClaimPrize(ctx context.Context, playerID string, periodSeq uint64, tier int) (*ClaimResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	if s.st != nil {
		c, err := s.st.GetClaim(ctx, periodSeq, playerID, tier)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, prize.ErrClaimNotFound
			}
			return nil, err
		}
		if c.Swept {
			return nil, ErrClaimExpired
		}
		if c.Claimed {
			return nil, prize.ErrAlreadyClaimed
		}
		if now.Sub(c.CreatedAt) >= s.game.ClaimExpiry {
			return nil, ErrClaimExpired
		}
		claimed, err := s.st.MarkClaimed(ctx, periodSeq, playerID, tier)
		if err != nil {
			if errors.Is(err, store.ErrClaimConflict) {
				return nil, prize.ErrAlreadyClaimed
			}
			if errors.Is(err, store.ErrNotFound) {
				return nil, prize.ErrClaimNotFound
			}
			return nil, err
		}
		balance, err := s.treasury.CreditPrize(ctx, playerID, claimed.ID, claimed.AmountUnits)
		if err != nil {
			return nil, err
		}
		if mem := s.claims[claimKey{period: periodSeq, player: playerID, tier: tier}]; mem != nil {
			mem.Claimed = true
		}
		return &ClaimResponse{PeriodSeq: periodSeq, Tier: tier, Amount: claimed.AmountUnits, Balance: balance}, nil
	}

	c := s.claims[claimKey{period: periodSeq, player: playerID, tier: tier}]
	if c == nil {
		return nil, prize.ErrClaimNotFound
	}
	if c.Claimed {
		return nil, prize.ErrAlreadyClaimed
	}
	if now.Sub(c.CreatedAt) >= s.game.ClaimExpiry {
		return nil, ErrClaimExpired
	}
	c.Claimed = true
	return &ClaimResponse{PeriodSeq: periodSeq, Tier: tier, Amount: c.Amount}, nil
}

// SweepExpired returns every unclaimed, expired entitlement to the
// pot's releasable balance.
func (s *Service) SweepExpired(ctx context.Context) (*SweepResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	if s.st != nil {
		total, err := s.st.SweepExpiredClaims(ctx, now.Add(-s.game.ClaimExpiry))
		if err != nil {
			return nil, err
		}
		potRow, err := s.st.GetPot(ctx)
		if err != nil {
			return nil, err
		}
		s.pot = prize.Pot{Retained: potRow.RetainedUnits, Releasable: potRow.ReleasableUnits}
		s.dropSweptClaims(now)
		return &SweepResponse{SweptUnits: total}, nil
	}

	var all []prize.Claim
	for _, c := range s.claims {
		all = append(all, *c)
	}
	swept, total := prize.SweepExpired(all, s.game.ClaimExpiry, now)
	for _, c := range swept {
		delete(s.claims, claimKey{period: c.PeriodSeq, player: c.Player, tier: c.Tier})
	}
	s.pot = s.pot.Return(total)
	return &SweepResponse{SweptUnits: total}, nil
}

func (s *Service) dropSweptClaims(now time.Time) {
	for key, c := range s.claims {
		if !c.Claimed && now.Sub(c.CreatedAt) >= s.game.ClaimExpiry {
			delete(s.claims, key)
		}
	}
}

// Status reports the audit surface of the instance: current period,
// pot split, and the effective payout rate.
func (s *Service) Status() *StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	p := s.periods[s.current]
	p.MarkClosed(now)
	age := int64(now.Sub(s.startAt) / time.Second)
	rates := s.game.Schedule.RatesForPot(s.current, age, s.pot.Balance())

	thresholds := make([]int64, 0, len(rates.Tiers))
	shares := make([]int64, 0, len(rates.Tiers))
	for _, t := range rates.Tiers {
		thresholds = append(thresholds, t.Threshold)
		shares = append(shares, t.ShareBps)
	}
	return &StatusResponse{
		PeriodSeq:      p.Seq,
		Phase:          string(p.Phase),
		OpenAt:         p.OpenAt,
		ClosesAt:       p.CloseAt,
		PotRetained:    s.pot.Retained,
		PotReleasable:  s.pot.Releasable,
		PotBalance:     s.pot.Balance(),
		PayoutRateBps:  rates.PayoutRateBps,
		EndgameRun:     s.game.Loyalty.EndgameRun(),
		EndgamePeriod:  s.game.Rules.EndgamePeriod,
		GameAgeSeconds: age,
		AcceptingPicks: p.AcceptsSubmissions(now) && !s.game.Loyalty.EndgameRun(),
		MaxTicketsEach: s.game.Rules.MaxTickets,
		EntryFeeUnits:  s.game.Rules.EntryFeeUnits,
		ClaimExpiryHrs: int64(s.game.ClaimExpiry / time.Hour),
		ScoringMode:    string(s.game.Rules.Scoring),
		Direction:      string(s.game.Rules.Direction),
		RevisionPolicy: string(s.game.Rules.Revision),
		PoolSize:       s.game.Rules.Pool.Size(),
		PickCount:      s.game.Rules.Pool.PickCount(),
		MaxTicketScore: s.game.Rules.MaxScore(),
		TierThresholds: thresholds,
		TierShareBps:   shares,
	}
}

// Pool lists the tracked assets in index order.
func (s *Service) Pool() *PoolResponse {
	assets := s.game.Rules.Pool.Assets()
	out := make([]PoolAsset, 0, len(assets))
	for _, a := range assets {
		out = append(out, PoolAsset{Index: a.Index, OracleID: a.OracleID})
	}
	return &PoolResponse{Assets: out, PickCount: s.game.Rules.Pool.PickCount()}
}

// Outcome returns a resolved period's full ranking, target set, and
// per-ticket scores.
func (s *Service) Outcome(ctx context.Context, seq uint64) (*OutcomeResponse, error) {
	s.mu.Lock()
	o := s.outcomes[seq]
	scores := s.scores[seq]
	s.mu.Unlock()

	if o == nil && s.st != nil {
		row, err := s.st.GetOutcome(ctx, seq)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, draw.ErrNotResolved
			}
			return nil, err
		}
		resp := &OutcomeResponse{PeriodSeq: seq}
		if err := json.Unmarshal(row.RankingJSON, &resp.Ranking); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(row.TargetJSON, &resp.Target); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(row.ScoresJSON, &resp.Scores); err != nil {
			return nil, err
		}
		return resp, nil
	}
	if o == nil {
		return nil, draw.ErrNotResolved
	}
	items := make([]TicketScoreItem, 0, len(scores))
	for _, sc := range scores {
		items = append(items, TicketScoreItem{Player: sc.Player, Ticket: sc.Ticket, Score: sc.Score})
	}
	return &OutcomeResponse{PeriodSeq: seq, Ranking: o.Ranking, Target: o.Target, Scores: items}, nil
}

// Outcomes lists resolved periods, newest first.
func (s *Service) Outcomes(ctx context.Context, limit, offset int) (*OutcomesResponse, error) {
	resp := &OutcomesResponse{Outcomes: []OutcomeResponse{}}
	if s.st != nil {
		rows, err := s.st.ListOutcomes(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			item := OutcomeResponse{PeriodSeq: row.PeriodSeq}
			if err := json.Unmarshal(row.RankingJSON, &item.Ranking); err != nil {
				return nil, err
			}
			if err := json.Unmarshal(row.TargetJSON, &item.Target); err != nil {
				return nil, err
			}
			if err := json.Unmarshal(row.ScoresJSON, &item.Scores); err != nil {
				return nil, err
			}
			resp.Outcomes = append(resp.Outcomes, item)
		}
		return resp, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	seqs := make([]uint64, 0, len(s.outcomes))
	for seq := range s.outcomes {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] > seqs[j] })
	for _, seq := range seqs {
		if offset > 0 {
			offset--
			continue
		}
		if len(resp.Outcomes) >= limit {
			break
		}
		o := s.outcomes[seq]
		items := make([]TicketScoreItem, 0, len(s.scores[seq]))
		for _, sc := range s.scores[seq] {
			items = append(items, TicketScoreItem{Player: sc.Player, Ticket: sc.Ticket, Score: sc.Score})
		}
		resp.Outcomes = append(resp.Outcomes, OutcomeResponse{
			PeriodSeq: seq, Ranking: o.Ranking, Target: o.Target, Scores: items,
		})
	}
	return resp, nil
}

// Claims lists a player's entitlements, newest period first.
func (s *Service) Claims(ctx context.Context, playerID string, limit, offset int) (*ClaimsResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	if s.st != nil {
		rows, err := s.st.ListClaimsByPlayer(ctx, playerID, limit, offset)
		if err != nil {
			return nil, err
		}
		out := make([]ClaimItem, 0, len(rows))
		for _, c := range rows {
			out = append(out, ClaimItem{
				PeriodSeq: c.PeriodSeq, Tier: c.Tier, Amount: c.AmountUnits,
				Claimed: c.Claimed, CreatedAt: c.CreatedAt,
			})
		}
		return &ClaimsResponse{Items: out}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ClaimItem
	for _, c := range s.claims {
		if c.Player != playerID {
			continue
		}
		out = append(out, ClaimItem{
			PeriodSeq: c.PeriodSeq, Tier: c.Tier, Amount: c.Amount,
			Claimed: c.Claimed, CreatedAt: c.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PeriodSeq != out[j].PeriodSeq {
			return out[i].PeriodSeq > out[j].PeriodSeq
		}
		return out[i].Tier < out[j].Tier
	})
	return &ClaimsResponse{Items: out}, nil
}

// Loyalty returns the full tenure ledger, player-sorted.
func (s *Service) Loyalty() *LoyaltyResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.game.Loyalty.Records()
	out := make([]LoyaltyItem, 0, len(recs))
	for _, r := range recs {
		out = append(out, LoyaltyItem{
			Player: r.Player, Tenure: r.Tenure, FirstPeriod: r.FirstPeriod,
			LastActive: r.LastActive, ScoreSum: r.ScoreSum, PeriodsScored: r.PeriodsScored,
		})
	}
	return &LoyaltyResponse{Items: out}
}

// Periods lists known periods, newest first.
func (s *Service) Periods(ctx context.Context, limit, offset int) (*PeriodsResponse, error) {
	if s.st != nil {
		rows, err := s.st.ListPeriods(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		out := make([]PeriodItem, 0, len(rows))
		for _, p := range rows {
			out = append(out, PeriodItem{Seq: p.Seq, Phase: p.Phase, OpenAt: p.OpenAt, ClosesAt: p.CloseAt})
		}
		return &PeriodsResponse{Items: out}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []PeriodItem
	for _, p := range s.periods {
		out = append(out, PeriodItem{Seq: p.Seq, Phase: string(p.Phase), OpenAt: p.OpenAt, ClosesAt: p.CloseAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	return &PeriodsResponse{Items: out}, nil
}

// CurrentSeq returns the active period sequence.
func (s *Service) CurrentSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// PotSnapshot returns the in-memory pot for tests and metrics.
func (s *Service) PotSnapshot() prize.Pot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pot
}
