package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrClaimConflict = errors.New("claim_conflict")

func (s *Store) GetClaim(ctx context.Context, periodSeq uint64, playerID string, tier int) (*Claim, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, period_seq, player_id, tier, amount_units, claimed, swept, claimed_at, created_at
		 FROM claims WHERE period_seq = $1 AND player_id = $2 AND tier = $3`,
		periodSeq, playerID, tier)
	return scanClaim(row)
}

func (s *Store) ListClaimsByPlayer(ctx context.Context, playerID string, limit, offset int) ([]Claim, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, period_seq, player_id, tier, amount_units, claimed, swept, claimed_at, created_at
		 FROM claims WHERE player_id = $1 ORDER BY period_seq DESC, tier LIMIT $2 OFFSET $3`,
		playerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// MarkClaimed flips exactly one unclaimed, unswept claim to claimed.
// A second call matches zero rows and returns ErrClaimConflict.
func (s *Store) MarkClaimed(ctx context.Context, periodSeq uint64, playerID string, tier int) (*Claim, error) {
	row := s.DB.QueryRowContext(ctx,
		`UPDATE claims SET claimed = true, claimed_at = now()
		 WHERE period_seq = $1 AND player_id = $2 AND tier = $3 AND NOT claimed AND NOT swept
		 RETURNING id, period_seq, player_id, tier, amount_units, claimed, swept, claimed_at, created_at`,
		periodSeq, playerID, tier)
	c, err := scanClaim(row)
	if errors.Is(err, ErrNotFound) {
		// distinguish missing from already-claimed for the caller
		if _, getErr := s.GetClaim(ctx, periodSeq, playerID, tier); getErr == nil {
			return nil, ErrClaimConflict
		}
		return nil, ErrNotFound
	}
	return c, err
}

// SweepExpiredClaims marks unclaimed claims created before the cutoff
// as swept and moves their total back into the pot's releasable
// balance, all in one transaction.
func (s *Store) SweepExpiredClaims(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`WITH swept AS (
			UPDATE claims SET swept = true
			WHERE NOT claimed AND NOT swept AND created_at < $1
			RETURNING amount_units
		 ) SELECT COALESCE(sum(amount_units), 0) FROM swept`,
		cutoff)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	if total > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE pot SET releasable_units = releasable_units + $1, updated_at = now()`,
			total); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*Claim, error) {
	var c Claim
	var claimedAt sql.NullTime
	if err := row.Scan(&c.ID, &c.PeriodSeq, &c.PlayerID, &c.Tier, &c.AmountUnits, &c.Claimed, &c.Swept, &claimedAt, &c.CreatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	if claimedAt.Valid {
		t := claimedAt.Time
		c.ClaimedAt = &t
	}
	return &c, nil
}
