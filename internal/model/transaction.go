package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debit is a charge added to a customer's running balance.
type Debit struct {
	Date        time.Time
	CreatedAt   time.Time
	Amount      decimal.Decimal
	Description string
	Category    Category
	ID          int64
	CustomerID  int64
}

// Payment reduces a customer's running balance.
type Payment struct {
	Date        time.Time
	CreatedAt   time.Time
	Amount      decimal.Decimal
	Description string // optional
	ID          int64
	CustomerID  int64
}

// DebitInput is the raw request to record a debit.
type DebitInput struct {
	Description string
	Category    string
	Amount      string
	Date        string
}

// PaymentInput is the raw request to record a payment.
type PaymentInput struct {
	Description string
	Amount      string
	Date        string
}
