// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidID      = errors.New("id must be positive")
	ErrInvalidDebit   = errors.New("invalid debit")
	ErrInvalidPayment = errors.New("invalid payment")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier refers to a stored row.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s=%d", ErrInvalidID, paramName, id)
	}
	return nil
}

// validateCustomerInput checks the columns the schema requires.
func validateCustomerInput(in model.CustomerInput) error {
	return validateString(in.Name, "name")
}

// validateDebit validates a debit before insert.
func validateDebit(d *model.Debit) error {
	if d == nil {
		return fmt.Errorf("%w: debit", ErrNilParameter)
	}
	if err := validateID(d.CustomerID, "customerID"); err != nil {
		return err
	}
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidDebit)
	}
	if !d.Category.IsKnown() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidDebit, d.Category)
	}
	if !d.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidDebit)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidDebit)
	}
	return nil
}

// validatePayment validates a payment before insert.
func validatePayment(p *model.Payment) error {
	if p == nil {
		return fmt.Errorf("%w: payment", ErrNilParameter)
	}
	if err := validateID(p.CustomerID, "customerID"); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidPayment)
	}
	return nil
}
