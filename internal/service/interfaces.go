// Package service defines the interfaces shared between the ledger, auth and API layers.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// CustomerStore persists customers.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, in model.CustomerInput) (*model.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	ListCustomers(ctx context.Context, search string) ([]model.CustomerSummary, error)
	CountCustomers(ctx context.Context) (int, error)
}

// LedgerStore persists debits and payments and aggregates them.
type LedgerStore interface {
	CreateDebit(ctx context.Context, d *model.Debit) error
	ListDebits(ctx context.Context, customerID int64) ([]model.Debit, error)
	DeleteDebit(ctx context.Context, customerID, debitID int64) error

	CreatePayment(ctx context.Context, p *model.Payment) error
	ListPayments(ctx context.Context, customerID int64) ([]model.Payment, error)
	DeletePayment(ctx context.Context, customerID, paymentID int64) error

	GetTotals(ctx context.Context, customerID int64) (model.Totals, error)
}

// AuthStore persists administrators and their sessions.
type AuthStore interface {
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
	GetAdmin(ctx context.Context, id int64) (*model.Admin, error)
	SaveAdmin(ctx context.Context, name, email string, passwordHash []byte) (*model.Admin, error)

	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	RevokeSession(ctx context.Context, id string) error
	PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	CustomerStore
	LedgerStore
	AuthStore

	// Database management
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}
