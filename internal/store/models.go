package store

import "time"

type Player struct {
	ID         string
	Name       string
	APIKeyHash string
	CreatedAt  time.Time
}

type Account struct {
	PlayerID     string
	BalanceUnits int64
	UpdatedAt    time.Time
}

type Period struct {
	Seq     uint64
	OpenAt  time.Time
	CloseAt time.Time
	Phase   string
}

type Submission struct {
	ID          string
	PeriodSeq   uint64
	PlayerID    string
	TicketIndex int
	PicksJSON   []byte
	StakeUnits  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Outcome struct {
	PeriodSeq   uint64
	RankingJSON []byte
	TargetJSON  []byte
	ScoresJSON  []byte
	ResolvedAt  time.Time
}

type Claim struct {
	ID          string
	PeriodSeq   uint64
	PlayerID    string
	Tier        int
	AmountUnits int64
	Claimed     bool
	Swept       bool
	ClaimedAt   *time.Time
	CreatedAt   time.Time
}

type LoyaltyRecord struct {
	PlayerID      string
	FirstPeriod   uint64
	LastActive    uint64
	Tenure        uint64
	ScoreSum      int64
	PeriodsScored uint64
}

type PotState struct {
	RetainedUnits   int64
	ReleasableUnits int64
	EndgameRun      bool
	UpdatedAt       time.Time
}

type LedgerEntry struct {
	ID          string
	PlayerID    string
	Type        string
	AmountUnits int64
	RefType     string
	RefID       string
	CreatedAt   time.Time
}
