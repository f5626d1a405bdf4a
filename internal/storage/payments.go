package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// CreatePayment inserts a payment for an existing customer in one transaction.
// ID and CreatedAt are set on p.
func (s *SQLiteStorage) CreatePayment(ctx context.Context, p *model.Payment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePayment(p); err != nil {
		return err
	}

	now := time.Now().UTC()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureCustomer(ctx, tx, p.CustomerID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO payments (customer_id, description, amount_cents, date, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			p.CustomerID, nullString(p.Description), model.ToCents(p.Amount),
			p.Date.Format(model.DateLayout), now,
		)
		if err != nil {
			return common.StoreError("insert payment", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return common.StoreError("get payment ID", err)
		}
		p.ID = id
		return nil
	})
	if err != nil {
		return err
	}

	p.CreatedAt = now
	p.Amount = p.Amount.Round(model.AmountPlaces)
	slog.Info("recorded payment",
		"customer_id", p.CustomerID,
		"payment_id", p.ID,
		"amount", model.FormatAmount(p.Amount))
	return nil
}

// ListPayments returns a customer's payments, newest date first.
func (s *SQLiteStorage) ListPayments(ctx context.Context, customerID int64) ([]model.Payment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(customerID, "customerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, description, amount_cents, date, created_at
		FROM payments
		WHERE customer_id = ?
		ORDER BY date DESC, created_at DESC, id DESC`,
		customerID,
	)
	if err != nil {
		return nil, common.StoreError("query payments", err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		var (
			p           model.Payment
			description sql.NullString
			cents       int64
			date        string
		)
		if err := rows.Scan(&p.ID, &p.CustomerID, &description, &cents, &date, &p.CreatedAt); err != nil {
			return nil, common.StoreError("scan payment", err)
		}
		p.Description = description.String
		p.Amount = model.FromCents(cents)
		if p.Date, err = model.ParseDate(date); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreError("iterate payments", err)
	}
	return payments, nil
}

// DeletePayment removes a payment only if it belongs to customerID.
func (s *SQLiteStorage) DeletePayment(ctx context.Context, customerID, paymentID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(customerID, "customerID"); err != nil {
		return err
	}
	if err := validateID(paymentID, "paymentID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM payments WHERE id = ? AND customer_id = ?`, paymentID, customerID)
	if err != nil {
		return common.StoreError("delete payment", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return common.StoreError("check deleted payment", err)
	}
	if n == 0 {
		return common.NotFound("payment", paymentID)
	}

	slog.Info("deleted payment", "customer_id", customerID, "payment_id", paymentID)
	return nil
}
