// Package ledger is the treasury boundary: entry fees go out of
// player accounts at submission time, prizes come back only at claim
// time, never automatically.
package ledger

import (
	"context"

	"pick-derby/internal/store"
)

type Ledger struct {
	Store *store.Store
}

func New(s *store.Store) *Ledger {
	return &Ledger{Store: s}
}

func (l *Ledger) DebitEntryFee(ctx context.Context, playerID, submissionID string, amount int64) (int64, error) {
	return l.Store.Debit(ctx, playerID, amount, "entry_fee_debit", "submission", submissionID)
}

// RefundEntryFee compensates a debit whose submission never made it
// to the store.
func (l *Ledger) RefundEntryFee(ctx context.Context, playerID, submissionID string, amount int64) (int64, error) {
	return l.Store.Credit(ctx, playerID, amount, "entry_fee_refund", "submission", submissionID)
}

func (l *Ledger) CreditPrize(ctx context.Context, playerID, claimID string, amount int64) (int64, error) {
	return l.Store.Credit(ctx, playerID, amount, "prize_credit", "claim", claimID)
}

func (l *Ledger) CreditOGShare(ctx context.Context, playerID, payoutID string, amount int64) (int64, error) {
	return l.Store.Credit(ctx, playerID, amount, "og_credit", "endgame", payoutID)
}
