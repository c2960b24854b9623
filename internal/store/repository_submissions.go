package store

import "context"

// UpsertSubmission writes a ticket slot. Under last-write-wins picks
// revision the conflict branch replaces the stored picks; the service
// enforces first-write-wins before calling this.
func (s *Store) UpsertSubmission(ctx context.Context, sub Submission) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO submissions (id, period_seq, player_id, ticket_index, picks, stake_units)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (period_seq, player_id, ticket_index)
		 DO UPDATE SET picks = EXCLUDED.picks, updated_at = now()`,
		sub.ID, sub.PeriodSeq, sub.PlayerID, sub.TicketIndex, sub.PicksJSON, sub.StakeUnits)
	return err
}

func (s *Store) GetSubmission(ctx context.Context, periodSeq uint64, playerID string, ticketIndex int) (*Submission, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, period_seq, player_id, ticket_index, picks, stake_units, created_at, updated_at
		 FROM submissions WHERE period_seq = $1 AND player_id = $2 AND ticket_index = $3`,
		periodSeq, playerID, ticketIndex)
	var sub Submission
	if err := row.Scan(&sub.ID, &sub.PeriodSeq, &sub.PlayerID, &sub.TicketIndex, &sub.PicksJSON, &sub.StakeUnits, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &sub, nil
}

func (s *Store) CountTickets(ctx context.Context, periodSeq uint64, playerID string) (int, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM submissions WHERE period_seq = $1 AND player_id = $2`,
		periodSeq, playerID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) ListSubmissions(ctx context.Context, periodSeq uint64) ([]Submission, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, period_seq, player_id, ticket_index, picks, stake_units, created_at, updated_at
		 FROM submissions WHERE period_seq = $1
		 ORDER BY player_id, ticket_index`,
		periodSeq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.PeriodSeq, &sub.PlayerID, &sub.TicketIndex, &sub.PicksJSON, &sub.StakeUnits, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
