package postgres

import (
	"context"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	"github.com/pratik-mahalle/tasknest/internal/pkg/metrics"
)

// PaymentEventRepository records processed payment confirmations so that
// webhook redeliveries upgrade an account only once
type PaymentEventRepository struct {
	db *DB
}

// NewPaymentEventRepository creates a new payment event repository
func NewPaymentEventRepository(db *DB) *PaymentEventRepository {
	return &PaymentEventRepository{db: db}
}

// MarkProcessed stores the confirmation and reports whether it was new
func (r *PaymentEventRepository) MarkProcessed(ctx context.Context, evt account.PaymentConfirmation) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "payment_events", time.Since(start)) }()

	query := `
		INSERT INTO payment_events (payment_reference, account_id, plan_type, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (payment_reference) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		evt.PaymentReference, evt.AccountID, string(evt.PlanType), time.Now().Unix(),
	)
	if err != nil {
		return false, errors.DatabaseError("Failed to record payment event", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.DatabaseError("Failed to get affected rows", err)
	}

	return rows == 1, nil
}

// Release forgets a confirmation so a redelivery is processed again
func (r *PaymentEventRepository) Release(ctx context.Context, paymentRef string) error {
	query := `DELETE FROM payment_events WHERE payment_reference = ?`

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), paymentRef); err != nil {
		return errors.DatabaseError("Failed to release payment event", err)
	}
	return nil
}
