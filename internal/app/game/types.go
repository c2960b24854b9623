package game

import (
	"encoding/json"
	"time"

	"pick-derby/internal/draw"
)

type PickInput struct {
	Asset  int `json:"asset"`
	Weight int `json:"weight,omitempty"`
	RankLo int `json:"rank_lo,omitempty"`
	RankHi int `json:"rank_hi,omitempty"`
}

type SubmitInput struct {
	Ticket int         `json:"ticket"`
	Picks  []PickInput `json:"picks"`
}

type SubmitResponse struct {
	SubmissionID string    `json:"submission_id"`
	PeriodSeq    uint64    `json:"period_seq"`
	Ticket       int       `json:"ticket"`
	Revised      bool      `json:"revised"`
	FeeUnits     int64     `json:"fee_units"`
	ClosesAt     time.Time `json:"closes_at"`
}

type StatusResponse struct {
	PeriodSeq       uint64    `json:"period_seq"`
	Phase           string    `json:"phase"`
	OpenAt          time.Time `json:"open_at"`
	ClosesAt        time.Time `json:"closes_at"`
	PotRetained     int64     `json:"pot_retained_units"`
	PotReleasable   int64     `json:"pot_releasable_units"`
	PotBalance      int64     `json:"pot_balance_units"`
	PayoutRateBps   int64     `json:"payout_rate_bps"`
	EndgameRun      bool      `json:"endgame_run"`
	EndgamePeriod   uint64    `json:"endgame_period,omitempty"`
	GameAgeSeconds  int64     `json:"game_age_seconds"`
	AcceptingPicks  bool      `json:"accepting_picks"`
	MaxTicketsEach  int       `json:"max_tickets"`
	EntryFeeUnits   int64     `json:"entry_fee_units"`
	ClaimExpiryHrs  int64     `json:"claim_expiry_hours"`
	ScoringMode     string    `json:"scoring_mode"`
	Direction       string    `json:"direction"`
	RevisionPolicy  string    `json:"revision_policy"`
	PoolSize        int       `json:"pool_size"`
	PickCount       int       `json:"pick_count"`
	MaxTicketScore  int64     `json:"max_ticket_score"`
	TierThresholds  []int64   `json:"tier_thresholds"`
	TierShareBps    []int64   `json:"tier_share_bps"`
}

type PoolAsset struct {
	Index    int    `json:"index"`
	OracleID string `json:"oracle_id"`
}

type PoolResponse struct {
	Assets    []PoolAsset `json:"assets"`
	PickCount int         `json:"pick_count"`
}

type PeriodItem struct {
	Seq      uint64    `json:"seq"`
	Phase    string    `json:"phase"`
	OpenAt   time.Time `json:"open_at"`
	ClosesAt time.Time `json:"closes_at"`
}

type PeriodsResponse struct {
	Items []PeriodItem `json:"items"`
}

type TicketScoreItem struct {
	Player string `json:"player"`
	Ticket int    `json:"ticket"`
	Score  int64  `json:"score"`
}

type OutcomeResponse struct {
	PeriodSeq uint64            `json:"period_seq"`
	Ranking   []int             `json:"ranking"`
	Target    []int             `json:"target"`
	Scores    []TicketScoreItem `json:"scores"`
}

type OutcomesResponse struct {
	Outcomes []OutcomeResponse `json:"outcomes"`
}

type ResolveResponse struct {
	PeriodSeq  uint64 `json:"period_seq"`
	RateBps    int64  `json:"rate_bps"`
	Releasable int64  `json:"releasable_units"`
	Paid       int64  `json:"paid_units"`
	Claims     int    `json:"claims"`
	NextSeq    uint64 `json:"next_seq,omitempty"`
	EndgameRun bool   `json:"endgame_run"`
}

type ClaimItem struct {
	PeriodSeq uint64    `json:"period_seq"`
	Tier      int       `json:"tier"`
	Amount    int64     `json:"amount_units"`
	Claimed   bool      `json:"claimed"`
	CreatedAt time.Time `json:"created_at"`
}

type ClaimsResponse struct {
	Items []ClaimItem `json:"items"`
}

type ClaimResponse struct {
	PeriodSeq uint64 `json:"period_seq"`
	Tier      int    `json:"tier"`
	Amount    int64  `json:"amount_units"`
	Balance   int64  `json:"balance_units,omitempty"`
}

type SweepResponse struct {
	SweptUnits int64 `json:"swept_units"`
}

type LoyaltyItem struct {
	Player        string `json:"player"`
	Tenure        uint64 `json:"tenure"`
	FirstPeriod   uint64 `json:"first_period"`
	LastActive    uint64 `json:"last_active"`
	ScoreSum      int64  `json:"score_sum"`
	PeriodsScored uint64 `json:"periods_scored"`
}

type LoyaltyResponse struct {
	Items []LoyaltyItem `json:"items"`
}

type OGShareItem struct {
	Player string `json:"player"`
	Amount int64  `json:"amount_units"`
}

type EndgameResponse struct {
	Shares        []OGShareItem `json:"shares"`
	PotRetained   int64         `json:"pot_retained_units"`
	PotReleasable int64         `json:"pot_releasable_units"`
}

func picksFromInput(in []PickInput) draw.PickSet {
	ps := draw.PickSet{Picks: make([]draw.Pick, 0, len(in))}
	for _, p := range in {
		ps.Picks = append(ps.Picks, draw.Pick{Asset: p.Asset, Weight: p.Weight, RankLo: p.RankLo, RankHi: p.RankHi})
	}
	return ps
}

func picksToJSON(ps draw.PickSet) ([]byte, error) {
	out := make([]PickInput, 0, len(ps.Picks))
	for _, p := range ps.Picks {
		out = append(out, PickInput{Asset: p.Asset, Weight: p.Weight, RankLo: p.RankLo, RankHi: p.RankHi})
	}
	return json.Marshal(out)
}

func picksFromJSON(b []byte) (draw.PickSet, error) {
	var in []PickInput
	if err := json.Unmarshal(b, &in); err != nil {
		return draw.PickSet{}, err
	}
	return picksFromInput(in), nil
}
