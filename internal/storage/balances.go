package storage

import (
	"context"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// GetTotals sums a customer's debits and payments in the database. A customer
// without transactions, or one that does not exist, yields zero totals.
func (s *SQLiteStorage) GetTotals(ctx context.Context, customerID int64) (model.Totals, error) {
	if err := validateContext(ctx); err != nil {
		return model.Totals{}, err
	}
	if err := validateID(customerID, "customerID"); err != nil {
		return model.Totals{}, err
	}

	var debitCents, paymentCents int64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(amount_cents), 0) FROM debits WHERE customer_id = ?),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE customer_id = ?)`,
		customerID, customerID,
	).Scan(&debitCents, &paymentCents)
	if err != nil {
		return model.Totals{}, common.StoreError("sum customer totals", err)
	}

	return model.Totals{
		Debits:   model.FromCents(debitCents),
		Payments: model.FromCents(paymentCents),
	}, nil
}
