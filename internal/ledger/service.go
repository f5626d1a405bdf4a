// Package ledger implements the running-tab operations: customers, debits,
// payments, balances and the merged movement history.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/shopspring/decimal"
)

// Store is the persistence the ledger needs.
type Store interface {
	service.CustomerStore
	service.LedgerStore
}

// Service validates ledger requests and delegates them to the store.
type Service struct {
	store Store
}

// New creates a ledger service backed by store.
func New(store Store) *Service {
	return &Service{store: store}
}

// ListCustomers returns customers matching search, decorated with their totals.
func (s *Service) ListCustomers(ctx context.Context, search string) ([]model.CustomerSummary, error) {
	customers, err := s.store.ListCustomers(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// CreateCustomer validates and stores a new customer.
func (s *Service) CreateCustomer(ctx context.Context, in model.CustomerInput) (*model.CustomerDetail, error) {
	in, err := cleanCustomerInput(in)
	if err != nil {
		return nil, err
	}

	c, err := s.store.CreateCustomer(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &model.CustomerDetail{
		CustomerSummary: model.CustomerSummary{
			Customer: *c,
			Totals:   model.Totals{Debits: decimal.Zero, Payments: decimal.Zero},
		},
		Debits:   []model.Debit{},
		Payments: []model.Payment{},
	}, nil
}

// GetCustomer returns a customer with its totals and full debit and payment lists.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*model.CustomerDetail, error) {
	c, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, c)
}

// UpdateCustomer validates and overwrites a customer's fields.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, in model.CustomerInput) (*model.CustomerDetail, error) {
	in, err := cleanCustomerInput(in)
	if err != nil {
		return nil, err
	}

	c, err := s.store.UpdateCustomer(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, c)
}

// DeleteCustomer removes a customer together with its debits and payments.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.store.DeleteCustomer(ctx, id)
}

// Balance returns the totals of an existing customer.
func (s *Service) Balance(ctx context.Context, customerID int64) (model.Totals, error) {
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return model.Totals{}, err
	}
	return s.store.GetTotals(ctx, customerID)
}

// ListMovements returns a customer's balance and merged movement history.
func (s *Service) ListMovements(ctx context.Context, customerID int64) (*model.MovementHistory, error) {
	c, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	detail, err := s.detail(ctx, c)
	if err != nil {
		return nil, err
	}

	return &model.MovementHistory{
		CustomerID: c.ID,
		Name:       c.Name,
		Balance:    detail.Totals.Balance(),
		Movements:  MergeMovements(detail.Debits, detail.Payments),
	}, nil
}

// CreateDebit validates and records a debit. The category is normalized and
// must be one of the accepted categories.
func (s *Service) CreateDebit(ctx context.Context, customerID int64, in model.DebitInput) (*model.Debit, error) {
	d, err := parseDebitInput(customerID, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateDebit(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// CreatePayment validates and records a payment.
func (s *Service) CreatePayment(ctx context.Context, customerID int64, in model.PaymentInput) (*model.Payment, error) {
	p, err := parsePaymentInput(customerID, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteDebit removes a debit owned by customerID.
func (s *Service) DeleteDebit(ctx context.Context, customerID, debitID int64) error {
	return s.store.DeleteDebit(ctx, customerID, debitID)
}

// DeletePayment removes a payment owned by customerID.
func (s *Service) DeletePayment(ctx context.Context, customerID, paymentID int64) error {
	return s.store.DeletePayment(ctx, customerID, paymentID)
}

// Categories returns the accepted debit categories.
func (s *Service) Categories() []model.Category {
	return model.Categories()
}

func (s *Service) detail(ctx context.Context, c *model.Customer) (*model.CustomerDetail, error) {
	totals, err := s.store.GetTotals(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load totals: %w", err)
	}
	debits, err := s.store.ListDebits(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load debits: %w", err)
	}
	payments, err := s.store.ListPayments(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	slog.Debug("loaded customer detail",
		"customer_id", c.ID,
		"debits", len(debits),
		"payments", len(payments))
	return &model.CustomerDetail{
		CustomerSummary: model.CustomerSummary{Customer: *c, Totals: totals},
		Debits:          debits,
		Payments:        payments,
	}, nil
}
