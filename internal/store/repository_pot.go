package store

import "context"

// EnsurePot initializes the singleton pot row with the configured
// seed if no row exists yet.
func (s *Store) EnsurePot(ctx context.Context, initialSeed int64) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO pot (singleton, retained_units, releasable_units)
		 VALUES (1, $1, 0) ON CONFLICT (singleton) DO NOTHING`,
		initialSeed)
	return err
}

func (s *Store) GetPot(ctx context.Context) (*PotState, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT retained_units, releasable_units, endgame_run, updated_at FROM pot WHERE singleton = 1`)
	var p PotState
	if err := row.Scan(&p.RetainedUnits, &p.ReleasableUnits, &p.EndgameRun, &p.UpdatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (s *Store) UpdatePot(ctx context.Context, p PotState) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE pot SET retained_units = $1, releasable_units = $2, updated_at = now() WHERE singleton = 1`,
		p.RetainedUnits, p.ReleasableUnits)
	return err
}

// CommitEndgame rewrites the pot after the terminal distribution and
// latches the endgame flag. The flag guard makes a concurrent or
// retried endgame a no-op at the database.
func (s *Store) CommitEndgame(ctx context.Context, pot PotState) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE pot SET retained_units = $1, releasable_units = $2, endgame_run = true, updated_at = now()
		 WHERE singleton = 1 AND endgame_run = false`,
		pot.RetainedUnits, pot.ReleasableUnits)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetLoyalty(ctx context.Context, playerID string) (*LoyaltyRecord, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT player_id, first_period, last_active, tenure, score_sum, periods_scored
		 FROM loyalty WHERE player_id = $1`, playerID)
	var rec LoyaltyRecord
	if err := row.Scan(&rec.PlayerID, &rec.FirstPeriod, &rec.LastActive, &rec.Tenure, &rec.ScoreSum, &rec.PeriodsScored); err != nil {
		return nil, mapNotFound(err)
	}
	return &rec, nil
}

func (s *Store) ListLoyalty(ctx context.Context) ([]LoyaltyRecord, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT player_id, first_period, last_active, tenure, score_sum, periods_scored
		 FROM loyalty ORDER BY player_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LoyaltyRecord
	for rows.Next() {
		var rec LoyaltyRecord
		if err := rows.Scan(&rec.PlayerID, &rec.FirstPeriod, &rec.LastActive, &rec.Tenure, &rec.ScoreSum, &rec.PeriodsScored); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
