package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tells debits and payments apart in a merged history.
type MovementKind string

// Movement kinds.
const (
	KindDebit   MovementKind = "debit"
	KindPayment MovementKind = "payment"
)

// Movement is a debit or a payment in one uniform shape.
type Movement struct {
	Date        time.Time
	CreatedAt   time.Time
	Category    *Category // nil for payments
	Amount      decimal.Decimal
	Kind        MovementKind
	Description string
	ID          int64
}

// MovementHistory is a customer's balance together with its merged movements.
type MovementHistory struct {
	Name       string
	Movements  []Movement
	Balance    decimal.Decimal
	CustomerID int64
}

// DebitMovement converts a debit to a movement.
func DebitMovement(d Debit) Movement {
	category := d.Category
	return Movement{
		ID:          d.ID,
		Kind:        KindDebit,
		Description: d.Description,
		Category:    &category,
		Amount:      d.Amount,
		Date:        d.Date,
		CreatedAt:   d.CreatedAt,
	}
}

// PaymentMovement converts a payment to a movement.
func PaymentMovement(p Payment) Movement {
	return Movement{
		ID:          p.ID,
		Kind:        KindPayment,
		Description: p.Description,
		Amount:      p.Amount,
		Date:        p.Date,
		CreatedAt:   p.CreatedAt,
	}
}
