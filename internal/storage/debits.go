package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// CreateDebit inserts a debit for an existing customer. The existence check and
// the insert share one transaction. ID and CreatedAt are set on d.
func (s *SQLiteStorage) CreateDebit(ctx context.Context, d *model.Debit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDebit(d); err != nil {
		return err
	}

	now := time.Now().UTC()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureCustomer(ctx, tx, d.CustomerID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO debits (customer_id, description, category, amount_cents, date, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			d.CustomerID, d.Description, string(d.Category), model.ToCents(d.Amount),
			d.Date.Format(model.DateLayout), now,
		)
		if err != nil {
			return common.StoreError("insert debit", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return common.StoreError("get debit ID", err)
		}
		d.ID = id
		return nil
	})
	if err != nil {
		return err
	}

	d.CreatedAt = now
	d.Amount = d.Amount.Round(model.AmountPlaces)
	slog.Info("recorded debit",
		"customer_id", d.CustomerID,
		"debit_id", d.ID,
		"amount", model.FormatAmount(d.Amount),
		"category", d.Category)
	return nil
}

// ListDebits returns a customer's debits, newest date first.
func (s *SQLiteStorage) ListDebits(ctx context.Context, customerID int64) ([]model.Debit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(customerID, "customerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, description, category, amount_cents, date, created_at
		FROM debits
		WHERE customer_id = ?
		ORDER BY date DESC, created_at DESC, id DESC`,
		customerID,
	)
	if err != nil {
		return nil, common.StoreError("query debits", err)
	}
	defer rows.Close()

	debits := []model.Debit{}
	for rows.Next() {
		var (
			d        model.Debit
			category string
			cents    int64
			date     string
		)
		if err := rows.Scan(&d.ID, &d.CustomerID, &d.Description, &category, &cents, &date, &d.CreatedAt); err != nil {
			return nil, common.StoreError("scan debit", err)
		}
		d.Category = model.Category(category)
		d.Amount = model.FromCents(cents)
		if d.Date, err = model.ParseDate(date); err != nil {
			return nil, err
		}
		debits = append(debits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreError("iterate debits", err)
	}
	return debits, nil
}

// DeleteDebit removes a debit only if it belongs to customerID. A debit that
// does not exist and one owned by another customer are both reported as not found.
func (s *SQLiteStorage) DeleteDebit(ctx context.Context, customerID, debitID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(customerID, "customerID"); err != nil {
		return err
	}
	if err := validateID(debitID, "debitID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM debits WHERE id = ? AND customer_id = ?`, debitID, customerID)
	if err != nil {
		return common.StoreError("delete debit", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return common.StoreError("check deleted debit", err)
	}
	if n == 0 {
		return common.NotFound("debit", debitID)
	}

	slog.Info("deleted debit", "customer_id", customerID, "debit_id", debitID)
	return nil
}

// ensureCustomer fails with a not-found error unless the customer row exists.
func ensureCustomer(ctx context.Context, q queryable, customerID int64) error {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE id = ?)`, customerID).Scan(&exists)
	if err != nil {
		return common.StoreError("check customer", err)
	}
	if !exists {
		return common.NotFound("customer", customerID)
	}
	return nil
}
