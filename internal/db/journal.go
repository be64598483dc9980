package db

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/susu3304/warikan/internal/ledger"
)

// RecordParticipant stores a registered participant.
func (db *DB) RecordParticipant(ctx context.Context, groupID string, p ledger.Participant) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO warikan_participants (group_id, participant_id, name, email, phone)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (group_id, participant_id) DO NOTHING`,
		groupID, p.ID, p.Name, p.Email, p.Phone,
	)
	return err
}

// RecordExpense inserts an expense and its splits in one transaction.
func (db *DB) RecordExpense(ctx context.Context, groupID string, e *ledger.Expense) error {
	if e == nil {
		return fmt.Errorf("expense is nil")
	}
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO warikan_expenses (id, group_id, kind, amount, paid_by, created_at)
         VALUES ($1, $2, $3, $4::numeric, $5, $6)`,
		e.ID.String(), groupID, e.Kind.String(), e.Amount.String(), e.PaidBy, e.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, s := range e.Splits {
		if _, err := tx.Exec(ctx,
			`INSERT INTO warikan_expense_splits (expense_id, position, participant_id, amount, percent)
             VALUES ($1, $2, $3, $4::numeric, $5::numeric)`,
			e.ID.String(), i, s.ParticipantID, s.Amount.String(), percentParam(s.Percent),
		); err != nil {
			return fmt.Errorf("failed to insert split %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

// RecordPayment stores a direct payment.
func (db *DB) RecordPayment(ctx context.Context, groupID string, p ledger.Payment) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO warikan_payments (id, group_id, paid_by, paid_to, amount, settled, created_at)
         VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`,
		p.ID.String(), groupID, p.PaidBy, p.PaidTo, p.Amount.String(), p.Settled, p.CreatedAt,
	)
	return err
}

func percentParam(p *decimal.Decimal) *string {
	if p == nil {
		return nil
	}
	s := p.String()
	return &s
}
