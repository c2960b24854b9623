package store

import (
	"context"
)

func (s *Store) UpsertPeriod(ctx context.Context, p Period) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO periods (seq, open_at, close_at, phase) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (seq) DO UPDATE SET phase = EXCLUDED.phase`,
		p.Seq, p.OpenAt, p.CloseAt, p.Phase)
	return err
}

func (s *Store) GetPeriod(ctx context.Context, seq uint64) (*Period, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT seq, open_at, close_at, phase FROM periods WHERE seq = $1`, seq)
	var p Period
	if err := row.Scan(&p.Seq, &p.OpenAt, &p.CloseAt, &p.Phase); err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

// LatestPeriod returns the highest-sequence period, the live one.
func (s *Store) LatestPeriod(ctx context.Context) (*Period, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT seq, open_at, close_at, phase FROM periods ORDER BY seq DESC LIMIT 1`)
	var p Period
	if err := row.Scan(&p.Seq, &p.OpenAt, &p.CloseAt, &p.Phase); err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (s *Store) ListPeriods(ctx context.Context, limit, offset int) ([]Period, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT seq, open_at, close_at, phase FROM periods ORDER BY seq DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.Seq, &p.OpenAt, &p.CloseAt, &p.Phase); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
