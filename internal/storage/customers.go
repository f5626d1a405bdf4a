package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

const customerColumns = `c.id, c.name, c.phone, c.address, c.created_at, c.updated_at`

// totalsColumns sums both child tables per customer row without loading them.
const totalsColumns = `
	(SELECT COALESCE(SUM(d.amount_cents), 0) FROM debits d WHERE d.customer_id = c.id),
	(SELECT COALESCE(SUM(p.amount_cents), 0) FROM payments p WHERE p.customer_id = c.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner, extra ...any) (model.Customer, error) {
	var (
		c              model.Customer
		phone, address sql.NullString
	)
	dest := append([]any{&c.ID, &c.Name, &phone, &address, &c.CreatedAt, &c.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return c, err
	}
	c.Phone = phone.String
	c.Address = address.String
	return c, nil
}

// CreateCustomer inserts a customer and returns the stored row.
func (s *SQLiteStorage) CreateCustomer(ctx context.Context, in model.CustomerInput) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCustomerInput(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (name, phone, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.Name, nullString(in.Phone), nullString(in.Address), now, now,
	)
	if err != nil {
		return nil, common.StoreError("create customer", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, common.StoreError("get customer ID", err)
	}

	slog.Info("created customer", "id", id, "name", in.Name)
	return &model.Customer{
		ID:        id,
		Name:      in.Name,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetCustomer returns a customer by ID.
func (s *SQLiteStorage) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return getCustomer(ctx, s.db, id)
}

func getCustomer(ctx context.Context, q queryable, id int64) (*model.Customer, error) {
	row := q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers c WHERE c.id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("customer", id)
	}
	if err != nil {
		return nil, common.StoreError("query customer", err)
	}
	return &c, nil
}

// UpdateCustomer overwrites the mutable fields of a customer.
func (s *SQLiteStorage) UpdateCustomer(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	if err := validateCustomerInput(in); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = ?, phone = ?, address = ?, updated_at = ?
		WHERE id = ?`,
		in.Name, nullString(in.Phone), nullString(in.Address), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, common.StoreError("update customer", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, common.StoreError("check updated customer", err)
	} else if n == 0 {
		return nil, common.NotFound("customer", id)
	}

	slog.Info("updated customer", "id", id)
	return getCustomer(ctx, s.db, id)
}

// DeleteCustomer removes a customer together with all of its debits and payments.
func (s *SQLiteStorage) DeleteCustomer(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	var debits, payments int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		// Children go first so the cascade holds even if foreign keys are disabled.
		res, err := tx.ExecContext(ctx, `DELETE FROM debits WHERE customer_id = ?`, id)
		if err != nil {
			return common.StoreError("delete customer debits", err)
		}
		debits, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, `DELETE FROM payments WHERE customer_id = ?`, id)
		if err != nil {
			return common.StoreError("delete customer payments", err)
		}
		payments, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
		if err != nil {
			return common.StoreError("delete customer", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return common.StoreError("check deleted customer", err)
		} else if n == 0 {
			return common.NotFound("customer", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("deleted customer", "id", id, "debits", debits, "payments", payments)
	return nil
}

// ListCustomers returns customers whose name or phone contains search, ignoring
// case, each decorated with its totals. An empty search returns every customer.
func (s *SQLiteStorage) ListCustomers(ctx context.Context, search string) ([]model.CustomerSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	search = strings.TrimSpace(search)
	pattern := "%" + escapeLike(strings.ToLower(search)) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`,`+totalsColumns+`
		FROM customers c
		WHERE ? = ''
			OR ulower(c.name) LIKE ? ESCAPE '\'
			OR ulower(COALESCE(c.phone, '')) LIKE ? ESCAPE '\'
		ORDER BY ulower(c.name), c.id`,
		search, pattern, pattern,
	)
	if err != nil {
		return nil, common.StoreError("query customers", err)
	}
	defer rows.Close()

	customers := []model.CustomerSummary{}
	for rows.Next() {
		var debitCents, paymentCents int64
		c, err := scanCustomer(rows, &debitCents, &paymentCents)
		if err != nil {
			return nil, common.StoreError("scan customer", err)
		}
		customers = append(customers, model.CustomerSummary{
			Customer: c,
			Totals: model.Totals{
				Debits:   model.FromCents(debitCents),
				Payments: model.FromCents(paymentCents),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreError("iterate customers", err)
	}

	slog.Debug("listed customers", "search", search, "count", len(customers))
	return customers, nil
}

// escapeLike escapes LIKE wildcards so search text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// CountCustomers returns the number of stored customers.
func (s *SQLiteStorage) CountCustomers(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}
