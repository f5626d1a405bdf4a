// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a person who runs a tab.
type Customer struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Phone     string // optional
	Address   string // optional
	ID        int64
}

// Totals holds the aggregated amounts of a customer's ledger.
type Totals struct {
	Debits   decimal.Decimal
	Payments decimal.Decimal
}

// Balance is total debits minus total payments.
func (t Totals) Balance() decimal.Decimal {
	return t.Debits.Sub(t.Payments)
}

// CustomerSummary is a customer decorated with its totals.
type CustomerSummary struct {
	Totals Totals
	Customer
}

// CustomerDetail is a customer with totals and its full debit and payment lists.
type CustomerDetail struct {
	Debits   []Debit
	Payments []Payment
	CustomerSummary
}

// CustomerInput carries the mutable customer fields for create and update.
type CustomerInput struct {
	Name    string
	Phone   string
	Address string
}
