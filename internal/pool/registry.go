package pool

import "errors"

var (
	ErrInvalidPoolSize  = errors.New("invalid_pool_size")
	ErrInvalidPickCount = errors.New("invalid_pick_count")
	ErrDuplicateFeed    = errors.New("duplicate_feed")
	ErrUnknownAsset     = errors.New("unknown_asset")
)

const (
	MinPoolSize = 3
	MaxPoolSize = 10000
)

// Asset is one tracked entry in the pool: a stable index plus the
// oracle identifier its performance is observed under.
type Asset struct {
	Index    int
	OracleID string
}

// Registry is the immutable asset universe of one game instance. Once
// built it never changes; adding feeds is a governance action that
// means deploying a new instance.
type Registry struct {
	assets    []Asset
	pickCount int
	byOracle  map[string]int
}

// NewRegistry validates and freezes the pool. oracleIDs[i] becomes
// asset index i.
func NewRegistry(oracleIDs []string, pickCount int) (*Registry, error) {
	m := len(oracleIDs)
	if m < MinPoolSize || m > MaxPoolSize {
		return nil, ErrInvalidPoolSize
	}
	if pickCount < 1 || pickCount >= m {
		return nil, ErrInvalidPickCount
	}
	assets := make([]Asset, m)
	byOracle := make(map[string]int, m)
	for i, id := range oracleIDs {
		if id == "" {
			return nil, ErrUnknownAsset
		}
		if _, dup := byOracle[id]; dup {
			return nil, ErrDuplicateFeed
		}
		assets[i] = Asset{Index: i, OracleID: id}
		byOracle[id] = i
	}
	return &Registry{assets: assets, pickCount: pickCount, byOracle: byOracle}, nil
}

// Size returns M, the number of tracked assets.
func (r *Registry) Size() int { return len(r.assets) }

// PickCount returns N, the number of picks per submission.
func (r *Registry) PickCount() int { return r.pickCount }

func (r *Registry) Asset(index int) (Asset, error) {
	if index < 0 || index >= len(r.assets) {
		return Asset{}, ErrUnknownAsset
	}
	return r.assets[index], nil
}

func (r *Registry) IndexOf(oracleID string) (int, bool) {
	i, ok := r.byOracle[oracleID]
	return i, ok
}

// Assets returns a copy; callers cannot mutate the pool through it.
func (r *Registry) Assets() []Asset {
	out := make([]Asset, len(r.assets))
	copy(out, r.assets)
	return out
}
