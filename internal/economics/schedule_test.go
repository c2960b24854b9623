package economics

import (
	"errors"
	"testing"
)

func defaultTiers() []Tier {
	return []Tier{
		{Threshold: 6, ShareBps: 5000},
		{Threshold: 5, ShareBps: 3000},
		{Threshold: 4, ShareBps: 1500},
	}
}

func TestConstantSchedule(t *testing.T) {
	s, err := NewConstant(120, defaultTiers())
	if err != nil {
		t.Fatalf("new constant: %v", err)
	}
	for _, p := range []uint64{0, 1, 500, 100000} {
		r := s.RatesFor(p, int64(p)*604800)
		if r.PayoutRateBps != 120 {
			t.Fatalf("period %d: expected 120, got %d", p, r.PayoutRateBps)
		}
	}
}

// Five years of weekly inhale at 77 bps, then a linear ramp reaching
// 154 bps at period 311.
func TestBreathingLinearRamp(t *testing.T) {
	s, err := NewBreathing(77, 154, 260, 52, RampLinear, defaultTiers())
	if err != nil {
		t.Fatalf("new breathing: %v", err)
	}
	if got := s.RatesFor(0, 0).PayoutRateBps; got != 77 {
		t.Fatalf("period 0: expected 77, got %d", got)
	}
	if got := s.RatesFor(259, 0).PayoutRateBps; got != 77 {
		t.Fatalf("period 259: expected 77, got %d", got)
	}
	if got := s.RatesFor(311, 0).PayoutRateBps; got != 154 {
		t.Fatalf("period 311: expected 154, got %d", got)
	}
	mid := s.RatesFor(285, 0).PayoutRateBps
	if mid <= 77 || mid >= 154 {
		t.Fatalf("period 285: expected strictly between 77 and 154, got %d", mid)
	}
	if got := s.RatesFor(10000, 0).PayoutRateBps; got != 154 {
		t.Fatalf("far past ramp: expected ceiling 154, got %d", got)
	}
}

func TestBreathingShapesStayInBand(t *testing.T) {
	for _, shape := range []RampShape{RampLinear, RampExponential, RampStep, RampSigmoid} {
		s, err := NewBreathing(77, 154, 260, 52, shape, defaultTiers())
		if err != nil {
			t.Fatalf("%s: %v", shape, err)
		}
		prev := int64(-1)
		for p := uint64(0); p <= 400; p++ {
			r := s.RatesFor(p, 0).PayoutRateBps
			if r < 77 || r > 154 {
				t.Fatalf("%s period %d: rate %d out of band", shape, p, r)
			}
			if r < prev {
				t.Fatalf("%s period %d: rate decreased %d -> %d", shape, p, prev, r)
			}
			prev = r
		}
		if s.RatesFor(400, 0).PayoutRateBps != 154 {
			t.Fatalf("%s: ceiling not reached", shape)
		}
	}
}

func TestHealthBandedMonotonic(t *testing.T) {
	s, err := NewHealthBanded(50, 200, 1_000_000, defaultTiers())
	if err != nil {
		t.Fatalf("new health: %v", err)
	}
	if got := s.RatesForPot(0, 0, 0).PayoutRateBps; got != 50 {
		t.Fatalf("empty pot: expected floor 50, got %d", got)
	}
	if got := s.RatesForPot(0, 0, 10_000_000).PayoutRateBps; got != 200 {
		t.Fatalf("overflowing pot: expected ceiling 200, got %d", got)
	}
	prev := int64(-1)
	for pot := int64(0); pot <= 2_000_000; pot += 100_000 {
		r := s.RatesForPot(0, 0, pot).PayoutRateBps
		if r < prev {
			t.Fatalf("pot %d: rate decreased %d -> %d", pot, prev, r)
		}
		if r < 50 || r > 200 {
			t.Fatalf("pot %d: rate %d out of band", pot, r)
		}
		prev = r
	}
}

func TestScheduleConstructionRejectsMalformed(t *testing.T) {
	tiers := defaultTiers()
	if _, err := NewConstant(10001, tiers); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("rate > 10000: expected ErrInvalidSchedule, got %v", err)
	}
	if _, err := NewConstant(-1, tiers); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("negative rate: expected ErrInvalidSchedule, got %v", err)
	}
	if _, err := NewBreathing(154, 77, 260, 52, RampLinear, tiers); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("ceiling below inhale: expected ErrInvalidSchedule, got %v", err)
	}
	if _, err := NewBreathing(77, 154, 0, 52, RampLinear, tiers); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("zero inhale duration: expected ErrInvalidSchedule, got %v", err)
	}
	if _, err := NewBreathing(77, 154, 260, 52, RampShape("wavy"), tiers); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("unknown shape: expected ErrInvalidSchedule, got %v", err)
	}
	if _, err := NewHealthBanded(200, 50, 1000, tiers); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("inverted band: expected ErrInvalidSchedule, got %v", err)
	}
}

func TestTierTableValidation(t *testing.T) {
	if _, err := NewConstant(100, nil); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("empty tiers: expected ErrInvalidSchedule, got %v", err)
	}
	unsorted := []Tier{{Threshold: 3, ShareBps: 1000}, {Threshold: 5, ShareBps: 1000}}
	if _, err := NewConstant(100, unsorted); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("unsorted tiers: expected ErrInvalidSchedule, got %v", err)
	}
	oversubscribed := []Tier{{Threshold: 5, ShareBps: 6000}, {Threshold: 3, ShareBps: 5000}}
	if _, err := NewConstant(100, oversubscribed); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("shares > 10000: expected ErrInvalidSchedule, got %v", err)
	}
	negative := []Tier{{Threshold: 5, ShareBps: -1}}
	if _, err := NewConstant(100, negative); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("negative share: expected ErrInvalidSchedule, got %v", err)
	}
}
