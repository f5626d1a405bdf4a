// Package testutil provides database setup and ledger fixtures for tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/shopspring/decimal"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new migrated in-memory database that is closed when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustCreateCustomer stores a customer with the given name or fails the test.
func (db *TestDB) MustCreateCustomer(name string) *model.Customer {
	db.t.Helper()
	c, err := db.Storage.CreateCustomer(context.Background(), model.CustomerInput{Name: name})
	if err != nil {
		db.t.Fatalf("failed to create customer %q: %v", name, err)
	}
	return c
}

// MustAddDebit records a debit or fails the test. amount and date use the wire formats.
func (db *TestDB) MustAddDebit(customerID int64, description string, category model.Category, amount, date string) *model.Debit {
	db.t.Helper()
	d := &model.Debit{
		CustomerID:  customerID,
		Description: description,
		Category:    category,
		Amount:      decimal.RequireFromString(amount),
		Date:        db.mustDate(date),
	}
	if err := db.Storage.CreateDebit(context.Background(), d); err != nil {
		db.t.Fatalf("failed to add debit: %v", err)
	}
	return d
}

// MustAddPayment records a payment or fails the test.
func (db *TestDB) MustAddPayment(customerID int64, amount, date string) *model.Payment {
	db.t.Helper()
	p := &model.Payment{
		CustomerID: customerID,
		Amount:     decimal.RequireFromString(amount),
		Date:       db.mustDate(date),
	}
	if err := db.Storage.CreatePayment(context.Background(), p); err != nil {
		db.t.Fatalf("failed to add payment: %v", err)
	}
	return p
}

func (db *TestDB) mustDate(s string) time.Time {
	db.t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		db.t.Fatalf("bad fixture date: %v", err)
	}
	return d
}
