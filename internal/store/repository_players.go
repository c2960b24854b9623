package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *Store) CreatePlayer(ctx context.Context, name, apiKey string) (string, error) {
	id := NewID()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO players (id, name, api_key_hash) VALUES ($1, $2, $3)`,
		id, name, HashAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetPlayerByAPIKey(ctx context.Context, apiKey string) (*Player, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, name, api_key_hash, created_at FROM players WHERE api_key_hash = $1`,
		HashAPIKey(apiKey))
	var p Player
	if err := row.Scan(&p.ID, &p.Name, &p.APIKeyHash, &p.CreatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (s *Store) EnsureAccount(ctx context.Context, playerID string, initialUnits int64) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO accounts (player_id, balance_units) VALUES ($1, $2)
		 ON CONFLICT (player_id) DO NOTHING`,
		playerID, initialUnits)
	return err
}

func (s *Store) GetAccountBalance(ctx context.Context, playerID string) (int64, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT balance_units FROM accounts WHERE player_id = $1`, playerID)
	var bal int64
	if err := row.Scan(&bal); err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

// Debit atomically reduces a balance, refusing overdrafts, and books
// the ledger entry in the same transaction.
func (s *Store) Debit(ctx context.Context, playerID string, amount int64, entryType, refType, refID string) (int64, error) {
	return s.transfer(ctx, playerID, -amount, entryType, refType, refID)
}

func (s *Store) Credit(ctx context.Context, playerID string, amount int64, entryType, refType, refID string) (int64, error) {
	return s.transfer(ctx, playerID, amount, entryType, refType, refID)
}

func (s *Store) transfer(ctx context.Context, playerID string, delta int64, entryType, refType, refID string) (int64, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`UPDATE accounts SET balance_units = balance_units + $2, updated_at = now()
		 WHERE player_id = $1 AND balance_units + $2 >= 0
		 RETURNING balance_units`,
		playerID, delta)
	var bal int64
	if err := row.Scan(&bal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("insufficient_balance: %w", ErrNotFound)
		}
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (id, player_id, type, amount_units, ref_type, ref_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		NewID(), playerID, entryType, delta, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return bal, nil
}

func (s *Store) ListLedgerEntries(ctx context.Context, playerID string, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, player_id, type, amount_units, ref_type, ref_id, created_at
		 FROM ledger_entries
		 WHERE ($1 = '' OR player_id = $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		playerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.Type, &e.AmountUnits, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
