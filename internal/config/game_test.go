package config

import (
	"errors"
	"testing"

	"pick-derby/internal/economics"
	"pick-derby/internal/pool"
)

func validGameConfig() GameConfig {
	return GameConfig{
		AssetFeeds:    "btc-usd,eth-usd,sol-usd,ada-usd,dot-usd,link-usd,avax-usd",
		PickCount:     3,
		CooldownHours: 168,
		ScoringMode:   "count",
		Direction:     "top",
		Revision:      "last",
		MaxTickets:    1,
		EntryFeeUnits: 100,
		RetainBps:     3000,
		TiePolicy:     "equal",
		ClaimExpiryHr: 720,
		ScheduleKind:  "constant",
		RateBps:       100,
		Tiers:         "3:5000,2:3000",
		LoyaltyPolicy: "streak",
		OGTenure:      52,
		OGShareBps:    5000,
		OGWeighting:   "equal",
	}
}

func TestBuildValidConfig(t *testing.T) {
	g, err := validGameConfig().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if g.Rules.Pool.Size() != 7 || g.Rules.Pool.PickCount() != 3 {
		t.Fatalf("pool misbuilt: M=%d N=%d", g.Rules.Pool.Size(), g.Rules.Pool.PickCount())
	}
	if g.Schedule.Kind() != economics.CurveConstant {
		t.Fatalf("expected constant schedule, got %s", g.Schedule.Kind())
	}
}

func TestBuildRejectsTinyPool(t *testing.T) {
	cfg := validGameConfig()
	cfg.AssetFeeds = "btc-usd,eth-usd"
	cfg.PickCount = 1
	if _, err := cfg.Build(); !errors.Is(err, pool.ErrInvalidPoolSize) {
		t.Fatalf("expected ErrInvalidPoolSize, got %v", err)
	}
}

func TestBuildRejectsPickCountAtPoolSize(t *testing.T) {
	cfg := validGameConfig()
	cfg.PickCount = 7
	if _, err := cfg.Build(); !errors.Is(err, pool.ErrInvalidPickCount) {
		t.Fatalf("expected ErrInvalidPickCount, got %v", err)
	}
}

func TestBuildRejectsMalformedSchedule(t *testing.T) {
	cfg := validGameConfig()
	cfg.ScheduleKind = "breathing"
	cfg.RateBps = 200
	cfg.CeilingBps = 100
	if _, err := cfg.Build(); !errors.Is(err, economics.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestBuildRejectsBadTierString(t *testing.T) {
	cfg := validGameConfig()
	cfg.Tiers = "3=5000"
	if _, err := cfg.Build(); !errors.Is(err, economics.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestBuildBreathingSchedule(t *testing.T) {
	cfg := validGameConfig()
	cfg.ScheduleKind = "breathing"
	cfg.RateBps = 77
	cfg.CeilingBps = 154
	cfg.InhalePeriods = 260
	cfg.RampPeriods = 52
	cfg.RampShape = "sigmoid"
	g, err := cfg.Build()
	if err != nil {
		t.Fatalf("build breathing: %v", err)
	}
	if g.Schedule.RatesFor(0, 0).PayoutRateBps != 77 {
		t.Fatalf("inhale rate not applied")
	}
}
