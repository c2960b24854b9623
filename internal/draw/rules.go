package draw

import (
	"errors"
	"time"

	"pick-derby/internal/pool"
)

var (
	ErrInvalidPicks           = errors.New("invalid_picks")
	ErrGameNotActive          = errors.New("game_not_active")
	ErrSubmissionWindowClosed = errors.New("submission_window_closed")
	ErrPickAlreadySubmitted   = errors.New("pick_already_submitted")
	ErrTicketLimit            = errors.New("ticket_limit_reached")
	ErrDrawNotReady           = errors.New("draw_not_ready")
	ErrInvalidObservation     = errors.New("invalid_observation")
	ErrAlreadyResolved        = errors.New("already_resolved")
	ErrNotResolved            = errors.New("not_resolved")
	ErrAlreadySettled         = errors.New("already_settled")
	ErrInvalidRules           = errors.New("invalid_rules")
)

// ScoringMode selects how a pick set is scored against the outcome.
// The set is closed; the resolver dispatches on the tag.
type ScoringMode string

const (
	ScoreCount            ScoringMode = "count"
	ScoreWeighted         ScoringMode = "weighted"
	ScoreRankCorrelation  ScoringMode = "rank_correlation"
	ScoreRangeContainment ScoringMode = "range_containment"
	ScorePairWinner       ScoringMode = "pair_winner"
)

// Direction picks the end of the ranking the target set is taken from.
type Direction string

const (
	DirectionTop    Direction = "top"
	DirectionBottom Direction = "bottom"
)

// RevisionPolicy governs repeat submissions to the same ticket slot
// while the window is open.
type RevisionPolicy string

const (
	ReviseLast  RevisionPolicy = "last"
	ReviseFirst RevisionPolicy = "first"
)

const (
	MinWeight = 1
	MaxWeight = 5
)

// Rules is the immutable per-instance game configuration. Built once
// at startup; every component takes it by reference. A Rules value
// that came out of NewRules is valid for the lifetime of the game.
type Rules struct {
	Pool      *pool.Registry
	Cooldown  time.Duration
	Scoring   ScoringMode
	Direction Direction
	Revision  RevisionPolicy

	// MaxTickets is the per-player ticket cap per period. 1 disables
	// multi-ticket play.
	MaxTickets int

	// EntryFeeUnits is debited per accepted ticket.
	EntryFeeUnits int64

	// EndgamePeriod is the period sequence at which the game ends and
	// the OG distribution runs. 0 means perpetual.
	EndgamePeriod uint64
}

func NewRules(p *pool.Registry, cooldown time.Duration, scoring ScoringMode, dir Direction, revision RevisionPolicy, maxTickets int, entryFee int64, endgame uint64) (*Rules, error) {
	if p == nil || cooldown <= 0 {
		return nil, ErrInvalidRules
	}
	switch scoring {
	case ScoreCount, ScoreWeighted, ScoreRankCorrelation, ScoreRangeContainment, ScorePairWinner:
	default:
		return nil, ErrInvalidRules
	}
	switch dir {
	case DirectionTop, DirectionBottom:
	default:
		return nil, ErrInvalidRules
	}
	switch revision {
	case ReviseLast, ReviseFirst:
	default:
		return nil, ErrInvalidRules
	}
	if maxTickets < 1 || entryFee < 0 {
		return nil, ErrInvalidRules
	}
	return &Rules{
		Pool:          p,
		Cooldown:      cooldown,
		Scoring:       scoring,
		Direction:     dir,
		Revision:      revision,
		MaxTickets:    maxTickets,
		EntryFeeUnits: entryFee,
		EndgamePeriod: endgame,
	}, nil
}
