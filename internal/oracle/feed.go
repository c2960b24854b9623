package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"sync"
)

// Feed errors are recoverable: the period stays open for a retry and
// no engine state is mutated when one is returned.
var (
	ErrStale           = errors.New("feed_stale")
	ErrPartialCoverage = errors.New("feed_partial_coverage")
	ErrUnavailable     = errors.New("feed_unavailable")
)

// PerformanceVector holds one signed percentage change per asset,
// expressed in basis points, indexed by asset index.
type PerformanceVector []int64

// Feed supplies the observed performance of a closed period. The live
// implementation sits outside this engine; tests and the fixture
// server use StaticFeed.
type Feed interface {
	ClosedPeriodPerformance(ctx context.Context, periodSeq uint64) (PerformanceVector, error)
}

// StaticFeed serves pre-loaded vectors keyed by period sequence.
type StaticFeed struct {
	mu      sync.RWMutex
	vectors map[uint64]PerformanceVector
}

func NewStaticFeed() *StaticFeed {
	return &StaticFeed{vectors: make(map[uint64]PerformanceVector)}
}

func (f *StaticFeed) Load(periodSeq uint64, v PerformanceVector) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make(PerformanceVector, len(v))
	copy(cp, v)
	f.vectors[periodSeq] = cp
}

func (f *StaticFeed) ClosedPeriodPerformance(_ context.Context, periodSeq uint64) (PerformanceVector, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.vectors[periodSeq]
	if !ok {
		return nil, ErrUnavailable
	}
	cp := make(PerformanceVector, len(v))
	copy(cp, v)
	return cp, nil
}

// FileFeed reads closed-period vectors from a JSON snapshot file of
// the form {"<period_seq>": [bps, ...]}. The file is re-read on every
// lookup so the upstream observation pipeline can append periods
// without a restart.
type FileFeed struct {
	path string
}

func NewFileFeed(path string) (*FileFeed, error) {
	if path == "" {
		return nil, ErrUnavailable
	}
	return &FileFeed{path: path}, nil
}

func (f *FileFeed) ClosedPeriodPerformance(_ context.Context, periodSeq uint64) (PerformanceVector, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, ErrUnavailable
	}
	var snapshot map[string][]int64
	if err := json.Unmarshal(b, &snapshot); err != nil {
		return nil, ErrUnavailable
	}
	v, ok := snapshot[strconv.FormatUint(periodSeq, 10)]
	if !ok {
		return nil, ErrUnavailable
	}
	return PerformanceVector(v), nil
}
