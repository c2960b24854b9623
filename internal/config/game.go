package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"pick-derby/internal/draw"
	"pick-derby/internal/economics"
	"pick-derby/internal/loyalty"
	"pick-derby/internal/pool"
	"pick-derby/internal/prize"
)

// GameConfig is the raw environment shape of one game instance. It is
// parsed once and immediately compiled into validated immutable rule
// objects by Build; a process that starts has a valid game.
type GameConfig struct {
	AssetFeeds string `env:"GAME_ASSET_FEEDS,required,notEmpty"`
	PickCount  int    `env:"GAME_PICK_COUNT" envDefault:"6"`

	// OracleSnapshotFile is the JSON file the oracle file feed reads
	// closed-period performance vectors from.
	OracleSnapshotFile string `env:"ORACLE_SNAPSHOT_FILE" envDefault:"oracle_snapshot.json"`

	CooldownHours int    `env:"GAME_COOLDOWN_HOURS" envDefault:"168"`
	ScoringMode   string `env:"GAME_SCORING_MODE" envDefault:"count"`
	Direction     string `env:"GAME_DIRECTION" envDefault:"top"`
	Revision      string `env:"GAME_PICK_REVISION" envDefault:"last"`
	MaxTickets    int    `env:"GAME_MAX_TICKETS" envDefault:"1"`

	EntryFeeUnits int64  `env:"GAME_ENTRY_FEE" envDefault:"100"`
	RetainBps     int64  `env:"GAME_RETAIN_BPS" envDefault:"3000"`
	TiePolicy     string `env:"GAME_TIE_POLICY" envDefault:"equal"`
	ClaimExpiryHr int    `env:"GAME_CLAIM_EXPIRY_HOURS" envDefault:"720"`

	ScheduleKind    string `env:"GAME_SCHEDULE" envDefault:"constant"`
	RateBps         int64  `env:"GAME_RATE_BPS" envDefault:"100"`
	CeilingBps      int64  `env:"GAME_CEILING_BPS" envDefault:"200"`
	InhalePeriods   uint64 `env:"GAME_INHALE_PERIODS" envDefault:"260"`
	RampPeriods     uint64 `env:"GAME_RAMP_PERIODS" envDefault:"52"`
	RampShape       string `env:"GAME_RAMP_SHAPE" envDefault:"linear"`
	HealthMinBps    int64  `env:"GAME_HEALTH_MIN_BPS" envDefault:"50"`
	HealthMaxBps    int64  `env:"GAME_HEALTH_MAX_BPS" envDefault:"200"`
	HealthTargetPot int64  `env:"GAME_HEALTH_TARGET_POT" envDefault:"1000000"`

	// Tiers is "threshold:shareBps" pairs, comma separated, threshold
	// descending, e.g. "6:5000,5:3000,4:1500".
	Tiers string `env:"GAME_TIERS" envDefault:"6:5000,5:3000,4:1500"`

	LoyaltyPolicy    string `env:"GAME_LOYALTY_POLICY" envDefault:"streak"`
	OGTenure         uint64 `env:"GAME_OG_TENURE" envDefault:"52"`
	OGAccuracyBps    int64  `env:"GAME_OG_ACCURACY_BPS" envDefault:"0"`
	OGShareBps       int64  `env:"GAME_OG_SHARE_BPS" envDefault:"5000"`
	OGWeighting      string `env:"GAME_OG_WEIGHTING" envDefault:"equal"`
	EndgamePeriod    uint64 `env:"GAME_ENDGAME_PERIOD" envDefault:"0"`
	InitialSeedUnits int64  `env:"GAME_INITIAL_SEED" envDefault:"0"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}

// Game is the compiled, validated configuration handed to the engine.
type Game struct {
	Rules       *draw.Rules
	Schedule    *economics.Schedule
	Distributor *prize.Distributor
	Loyalty     *loyalty.Ledger
	RetainBps   int64
	ClaimExpiry time.Duration
	InitialSeed int64
}

// Build compiles the raw config. Any malformed value fails here, at
// construction, so schedule and rule errors cannot surface mid-game.
func (c GameConfig) Build() (*Game, error) {
	feeds := splitNonEmpty(c.AssetFeeds)
	registry, err := pool.NewRegistry(feeds, c.PickCount)
	if err != nil {
		return nil, err
	}
	rules, err := draw.NewRules(
		registry,
		time.Duration(c.CooldownHours)*time.Hour,
		draw.ScoringMode(c.ScoringMode),
		draw.Direction(c.Direction),
		draw.RevisionPolicy(c.Revision),
		c.MaxTickets,
		c.EntryFeeUnits,
		c.EndgamePeriod,
	)
	if err != nil {
		return nil, err
	}

	tiers, err := parseTiers(c.Tiers)
	if err != nil {
		return nil, err
	}
	var schedule *economics.Schedule
	switch economics.CurveKind(c.ScheduleKind) {
	case economics.CurveConstant:
		schedule, err = economics.NewConstant(c.RateBps, tiers)
	case economics.CurveBreathing:
		schedule, err = economics.NewBreathing(c.RateBps, c.CeilingBps, c.InhalePeriods, c.RampPeriods, economics.RampShape(c.RampShape), tiers)
	case economics.CurveHealth:
		schedule, err = economics.NewHealthBanded(c.HealthMinBps, c.HealthMaxBps, c.HealthTargetPot, tiers)
	default:
		return nil, economics.ErrInvalidSchedule
	}
	if err != nil {
		return nil, err
	}

	distributor, err := prize.NewDistributor(schedule, prize.TiePolicy(c.TiePolicy))
	if err != nil {
		return nil, err
	}

	loyaltyLedger, err := loyalty.NewLedger(loyalty.Policy(c.LoyaltyPolicy), loyalty.OGConfig{
		TenureThreshold: c.OGTenure,
		AccuracyGateBps: c.OGAccuracyBps,
		ShareBps:        c.OGShareBps,
		Weighting:       loyalty.Weighting(c.OGWeighting),
	})
	if err != nil {
		return nil, err
	}

	if c.RetainBps < 0 || c.RetainBps > 10000 || c.ClaimExpiryHr <= 0 || c.InitialSeedUnits < 0 {
		return nil, draw.ErrInvalidRules
	}

	return &Game{
		Rules:       rules,
		Schedule:    schedule,
		Distributor: distributor,
		Loyalty:     loyaltyLedger,
		RetainBps:   c.RetainBps,
		ClaimExpiry: time.Duration(c.ClaimExpiryHr) * time.Hour,
		InitialSeed: c.InitialSeedUnits,
	}, nil
}

func splitNonEmpty(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseTiers(s string) ([]economics.Tier, error) {
	var out []economics.Tier
	for _, part := range splitNonEmpty(s) {
		thr, share, ok := strings.Cut(part, ":")
		if !ok {
			return nil, economics.ErrInvalidSchedule
		}
		t, err := strconv.ParseInt(strings.TrimSpace(thr), 10, 64)
		if err != nil {
			return nil, economics.ErrInvalidSchedule
		}
		sh, err := strconv.ParseInt(strings.TrimSpace(share), 10, 64)
		if err != nil {
			return nil, economics.ErrInvalidSchedule
		}
		out = append(out, economics.Tier{Threshold: t, ShareBps: sh})
	}
	return out, nil
}
