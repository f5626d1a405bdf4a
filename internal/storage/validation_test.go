package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateDebit(t *testing.T) {
	valid := func() *model.Debit {
		return &model.Debit{
			CustomerID:  1,
			Description: "Paint",
			Category:    model.CategoryHardware,
			Amount:      decimal.RequireFromString("1.00"),
			Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	tests := []struct {
		name    string
		mutate  func(d *model.Debit)
		wantErr error
	}{
		{name: "valid", mutate: func(*model.Debit) {}},
		{name: "missing customer", mutate: func(d *model.Debit) { d.CustomerID = 0 }, wantErr: ErrInvalidID},
		{name: "blank description", mutate: func(d *model.Debit) { d.Description = " " }, wantErr: ErrInvalidDebit},
		{name: "unknown category", mutate: func(d *model.Debit) { d.Category = "Groceries" }, wantErr: ErrInvalidDebit},
		{name: "zero amount", mutate: func(d *model.Debit) { d.Amount = decimal.Zero }, wantErr: ErrInvalidDebit},
		{name: "negative amount", mutate: func(d *model.Debit) { d.Amount = decimal.NewFromInt(-1) }, wantErr: ErrInvalidDebit},
		{name: "missing date", mutate: func(d *model.Debit) { d.Date = time.Time{} }, wantErr: ErrInvalidDebit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(d)
			err := validateDebit(d)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.ErrorIs(t, validateDebit(nil), ErrNilParameter)
}

func TestValidatePayment(t *testing.T) {
	p := &model.Payment{CustomerID: 1, Amount: decimal.NewFromInt(5), Date: time.Now()}
	assert.NoError(t, validatePayment(p))

	p.Amount = decimal.Zero
	assert.ErrorIs(t, validatePayment(p), ErrInvalidPayment)

	assert.ErrorIs(t, validatePayment(nil), ErrNilParameter)
}

func TestValidateContext(t *testing.T) {
	//nolint:staticcheck // exercising the nil guard
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
	assert.NoError(t, validateContext(context.Background()))
}
