package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_DebitLifecycle(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	ana := createTestCustomer(t, store, "Ana")

	d := &model.Debit{
		CustomerID:  ana.ID,
		Description: "Paint",
		Category:    model.CategoryHardware,
		Amount:      amount("45.5"),
		Date:        mustDate(t, "2024-01-10"),
	}
	require.NoError(t, store.CreateDebit(ctx, d))
	assert.Positive(t, d.ID)
	assert.False(t, d.CreatedAt.IsZero())

	debits, err := store.ListDebits(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, debits, 1)
	assert.Equal(t, "Paint", debits[0].Description)
	assert.Equal(t, model.CategoryHardware, debits[0].Category)
	assert.Equal(t, "45.50", model.FormatAmount(debits[0].Amount))
	assert.Equal(t, "2024-01-10", debits[0].Date.Format(model.DateLayout))

	require.NoError(t, store.DeleteDebit(ctx, ana.ID, d.ID))
	debits, err = store.ListDebits(ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, debits)

	totals, err := store.GetTotals(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, totals.Balance().IsZero())
}

func TestSQLiteStorage_PaymentLifecycle(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	ana := createTestCustomer(t, store, "Ana")

	withNote := &model.Payment{CustomerID: ana.ID, Description: "cash", Amount: amount("20"), Date: mustDate(t, "2024-01-15")}
	bare := &model.Payment{CustomerID: ana.ID, Amount: amount("1.25"), Date: mustDate(t, "2024-01-16")}
	require.NoError(t, store.CreatePayment(ctx, withNote))
	require.NoError(t, store.CreatePayment(ctx, bare))

	payments, err := store.ListPayments(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, bare.ID, payments[0].ID, "newest date first")
	assert.Equal(t, "", payments[0].Description)
	assert.Equal(t, "cash", payments[1].Description)

	totals, err := store.GetTotals(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "21.25", model.FormatAmount(totals.Payments))
	assert.Equal(t, "-21.25", model.FormatAmount(totals.Balance()))

	require.NoError(t, store.DeletePayment(ctx, ana.ID, withNote.ID))
	assert.ErrorIs(t, store.DeletePayment(ctx, ana.ID, withNote.ID), common.ErrNotFound)
}

func TestSQLiteStorage_CreateForMissingCustomer(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	err := store.CreateDebit(ctx, &model.Debit{
		CustomerID: 77, Description: "Diesel", Category: model.CategoryFuel,
		Amount: amount("10"), Date: mustDate(t, "2024-01-01"),
	})
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.CreatePayment(ctx, &model.Payment{CustomerID: 77, Amount: amount("10"), Date: mustDate(t, "2024-01-01")})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_DeleteRequiresOwnership(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	ana := createTestCustomer(t, store, "Ana")
	bia := createTestCustomer(t, store, "Bia")

	d := &model.Debit{CustomerID: ana.ID, Description: "Oil", Category: model.CategoryMerchandise, Amount: amount("3"), Date: mustDate(t, "2024-03-01")}
	p := &model.Payment{CustomerID: ana.ID, Amount: amount("2"), Date: mustDate(t, "2024-03-02")}
	require.NoError(t, store.CreateDebit(ctx, d))
	require.NoError(t, store.CreatePayment(ctx, p))

	assert.ErrorIs(t, store.DeleteDebit(ctx, bia.ID, d.ID), common.ErrNotFound)
	assert.ErrorIs(t, store.DeletePayment(ctx, bia.ID, p.ID), common.ErrNotFound)

	debits, err := store.ListDebits(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, debits, 1, "foreign delete must leave the debit in place")
	payments, err := store.ListPayments(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestSQLiteStorage_ListDebitsOrdering(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	ana := createTestCustomer(t, store, "Ana")

	var ids []int64
	for _, date := range []string{"2024-01-01", "2024-03-01", "2024-03-01", "2024-02-01"} {
		d := &model.Debit{CustomerID: ana.ID, Description: "x", Category: model.CategoryFees, Amount: amount("1"), Date: mustDate(t, date)}
		require.NoError(t, store.CreateDebit(ctx, d))
		ids = append(ids, d.ID)
	}

	debits, err := store.ListDebits(ctx, ana.ID)
	require.NoError(t, err)
	got := make([]int64, 0, len(debits))
	for _, d := range debits {
		got = append(got, d.ID)
	}
	assert.Equal(t, []int64{ids[2], ids[1], ids[3], ids[0]}, got)
}

func TestSQLiteStorage_GetTotalsUnknownCustomer(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	totals, err := store.GetTotals(context.Background(), 12345)
	require.NoError(t, err)
	assert.True(t, totals.Debits.IsZero())
	assert.True(t, totals.Payments.IsZero())
}

func TestSQLiteStorage_AmountsStayExact(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	ana := createTestCustomer(t, store, "Ana")

	for i := 0; i < 10; i++ {
		require.NoError(t, store.CreateDebit(ctx, &model.Debit{
			CustomerID: ana.ID, Description: "gum", Category: model.CategoryMerchandise,
			Amount: amount("0.10"), Date: mustDate(t, "2024-04-01"),
		}))
	}

	totals, err := store.GetTotals(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, totals.Debits.Equal(amount("1.00")), "got %s", totals.Debits)
}
