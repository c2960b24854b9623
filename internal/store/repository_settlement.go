package store

import "context"

// CommitSettlement atomically applies one period's settlement: all
// claims are created, the pot is rewritten, loyalty records are
// upserted, and the period flips to settled — or none of it happens.
// The phase guard keeps retried settlements single-effect.
func (s *Store) CommitSettlement(ctx context.Context, periodSeq uint64, claims []Claim, pot PotState, loyalty []LoyaltyRecord) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE periods SET phase = 'settled' WHERE seq = $1 AND phase = 'resolved'`,
		periodSeq)
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

	for _, c := range claims {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO claims (id, period_seq, player_id, tier, amount_units)
			 VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.PeriodSeq, c.PlayerID, c.Tier, c.AmountUnits); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE pot SET retained_units = $1, releasable_units = $2, updated_at = now()`,
		pot.RetainedUnits, pot.ReleasableUnits); err != nil {
		return err
	}

	for _, rec := range loyalty {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO loyalty (player_id, first_period, last_active, tenure, score_sum, periods_scored)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (player_id) DO UPDATE SET
				last_active = EXCLUDED.last_active,
				tenure = EXCLUDED.tenure,
				score_sum = EXCLUDED.score_sum,
				periods_scored = EXCLUDED.periods_scored`,
			rec.PlayerID, rec.FirstPeriod, rec.LastActive, rec.Tenure, rec.ScoreSum, rec.PeriodsScored); err != nil {
			return err
		}
	}

	return tx.Commit()
}
