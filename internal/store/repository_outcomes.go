package store

import "context"

func (s *Store) GetOutcome(ctx context.Context, periodSeq uint64) (*Outcome, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT period_seq, ranking, target, scores, resolved_at FROM outcomes WHERE period_seq = $1`,
		periodSeq)
	var o Outcome
	if err := row.Scan(&o.PeriodSeq, &o.RankingJSON, &o.TargetJSON, &o.ScoresJSON, &o.ResolvedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &o, nil
}

func (s *Store) ListOutcomes(ctx context.Context, limit, offset int) ([]Outcome, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT period_seq, ranking, target, scores, resolved_at
		 FROM outcomes ORDER BY period_seq DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Outcome
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.PeriodSeq, &o.RankingJSON, &o.TargetJSON, &o.ScoresJSON, &o.ResolvedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CommitResolution persists an outcome and flips the period to
// resolved in one transaction. The phase guard makes concurrent
// resolution attempts collapse to a single effect: the second writer
// matches zero rows and reports not-found.
func (s *Store) CommitResolution(ctx context.Context, o Outcome) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE periods SET phase = 'resolved' WHERE seq = $1 AND phase IN ('open', 'closed')`,
		o.PeriodSeq)
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
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO outcomes (period_seq, ranking, target, scores) VALUES ($1, $2, $3, $4)`,
		o.PeriodSeq, o.RankingJSON, o.TargetJSON, o.ScoresJSON); err != nil {
		return err
	}
	return tx.Commit()
}
