package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return New(db.Storage), db
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *common.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.Fields
}

func TestService_DebitThenPaymentScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ana, err := svc.CreateCustomer(ctx, model.CustomerInput{Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "0.00", model.FormatAmount(ana.Totals.Balance()))
	assert.Empty(t, ana.Debits)
	assert.Empty(t, ana.Payments)

	debit, err := svc.CreateDebit(ctx, ana.ID, model.DebitInput{
		Description: "Paint",
		Category:    "hardware",
		Amount:      "45.50",
		Date:        "2024-01-10",
	})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryHardware, debit.Category)

	totals, err := svc.Balance(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "45.50", model.FormatAmount(totals.Balance()))

	_, err = svc.CreatePayment(ctx, ana.ID, model.PaymentInput{Amount: "20.00", Date: "2024-01-15"})
	require.NoError(t, err)

	history, err := svc.ListMovements(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", history.Name)
	assert.Equal(t, "25.50", model.FormatAmount(history.Balance))
	require.Len(t, history.Movements, 2)
	assert.Equal(t, model.KindPayment, history.Movements[0].Kind)
	assert.Equal(t, model.KindDebit, history.Movements[1].Kind)
}

func TestService_ListCustomersSearch(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	db.MustCreateCustomer("Carlos")
	db.MustCreateCustomer("Ana")
	db.MustCreateCustomer("bruno")

	matched, err := svc.ListCustomers(ctx, "an")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Ana", matched[0].Name)

	all, err := svc.ListCustomers(ctx, "")
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name)
		assert.True(t, c.Totals.Balance().IsZero())
	}
	assert.Equal(t, []string{"Ana", "bruno", "Carlos"}, names)
}

func TestService_BalanceMatchesFixtureSums(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	c := db.MustCreateCustomer("Ana")

	debitAmounts := []string{"0.10", "0.20", "19.99", "100.01"}
	paymentAmounts := []string{"0.30", "50.00"}

	wantDebits := decimal.Zero
	for _, a := range debitAmounts {
		db.MustAddDebit(c.ID, "item", model.CategoryMerchandise, a, "2024-05-01")
		wantDebits = wantDebits.Add(decimal.RequireFromString(a))
	}
	wantPayments := decimal.Zero
	for _, a := range paymentAmounts {
		db.MustAddPayment(c.ID, a, "2024-05-02")
		wantPayments = wantPayments.Add(decimal.RequireFromString(a))
	}

	detail, err := svc.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, detail.Totals.Debits.Equal(wantDebits))
	assert.True(t, detail.Totals.Payments.Equal(wantPayments))
	assert.True(t, detail.Totals.Balance().Equal(wantDebits.Sub(wantPayments)))
	assert.Len(t, detail.Debits, len(debitAmounts))
	assert.Len(t, detail.Payments, len(paymentAmounts))
}

func TestService_DebitRoundTripRestoresBalance(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	c := db.MustCreateCustomer("Ana")
	db.MustAddDebit(c.ID, "Diesel", model.CategoryFuel, "30.00", "2024-01-01")

	before, err := svc.Balance(ctx, c.ID)
	require.NoError(t, err)

	d, err := svc.CreateDebit(ctx, c.ID, model.DebitInput{Description: "Bolt", Category: "Hardware", Amount: "2.35", Date: "2024-01-02"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteDebit(ctx, c.ID, d.ID))

	after, err := svc.Balance(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, before.Balance().Equal(after.Balance()))
}

func TestService_CrossCustomerDeleteIsNotFound(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	ana := db.MustCreateCustomer("Ana")
	bia := db.MustCreateCustomer("Bia")
	d := db.MustAddDebit(ana.ID, "Paint", model.CategoryHardware, "10", "2024-01-01")
	p := db.MustAddPayment(ana.ID, "5", "2024-01-02")

	assert.ErrorIs(t, svc.DeleteDebit(ctx, bia.ID, d.ID), common.ErrNotFound)
	assert.ErrorIs(t, svc.DeletePayment(ctx, bia.ID, p.ID), common.ErrNotFound)

	totals, err := svc.Balance(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.00", model.FormatAmount(totals.Balance()))
}

func TestService_DeleteCustomerCascades(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	c := db.MustCreateCustomer("Ana")
	d := db.MustAddDebit(c.ID, "Paint", model.CategoryHardware, "10", "2024-01-01")

	require.NoError(t, svc.DeleteCustomer(ctx, c.ID))

	_, err := svc.GetCustomer(ctx, c.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteDebit(ctx, c.ID, d.ID), common.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteCustomer(ctx, c.ID), common.ErrNotFound)
}

func TestService_MissingCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetCustomer(ctx, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.ListMovements(ctx, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.Balance(ctx, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.UpdateCustomer(ctx, 99, model.CustomerInput{Name: "Ghost"})
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.CreateDebit(ctx, 99, model.DebitInput{Description: "x", Category: "Fees", Amount: "1", Date: "2024-01-01"})
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.CreatePayment(ctx, 99, model.PaymentInput{Amount: "1", Date: "2024-01-01"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestService_CustomerValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		in         model.CustomerInput
		wantFields []string
	}{
		{name: "missing name", in: model.CustomerInput{Name: "   "}, wantFields: []string{"name"}},
		{name: "name too long", in: model.CustomerInput{Name: strings.Repeat("a", 256)}, wantFields: []string{"name"}},
		{name: "phone too long", in: model.CustomerInput{Name: "Ana", Phone: strings.Repeat("9", 51)}, wantFields: []string{"phone"}},
		{name: "address too long", in: model.CustomerInput{Name: "Ana", Address: strings.Repeat("x", 256)}, wantFields: []string{"address"}},
		{name: "several at once", in: model.CustomerInput{Phone: strings.Repeat("9", 51)}, wantFields: []string{"name", "phone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCustomer(ctx, tt.in)
			require.ErrorIs(t, err, common.ErrValidation)
			fields := fieldErrors(t, err)
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
			assert.Len(t, fields, len(tt.wantFields))
		})
	}
}

func TestService_CustomerInputIsTrimmed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, model.CustomerInput{Name: "  Ana  ", Phone: " 555 "})
	require.NoError(t, err)
	assert.Equal(t, "Ana", created.Name)
	assert.Equal(t, "555", created.Phone)

	updated, err := svc.UpdateCustomer(ctx, created.ID, model.CustomerInput{Name: "Ana B", Address: " Rua 2 "})
	require.NoError(t, err)
	assert.Equal(t, "Ana B", updated.Name)
	assert.Equal(t, "", updated.Phone)
	assert.Equal(t, "Rua 2", updated.Address)
}

func TestService_DebitValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	c := db.MustCreateCustomer("Ana")

	valid := model.DebitInput{Description: "Paint", Category: "Hardware", Amount: "1.00", Date: "2024-01-10"}

	tests := []struct {
		name   string
		mutate func(in *model.DebitInput)
		field  string
	}{
		{name: "missing description", mutate: func(in *model.DebitInput) { in.Description = "" }, field: "description"},
		{name: "long description", mutate: func(in *model.DebitInput) { in.Description = strings.Repeat("d", 256) }, field: "description"},
		{name: "missing category", mutate: func(in *model.DebitInput) { in.Category = "  " }, field: "category"},
		{name: "unknown category", mutate: func(in *model.DebitInput) { in.Category = "Groceries" }, field: "category"},
		{name: "missing amount", mutate: func(in *model.DebitInput) { in.Amount = "" }, field: "amount"},
		{name: "non-numeric amount", mutate: func(in *model.DebitInput) { in.Amount = "ten" }, field: "amount"},
		{name: "zero amount", mutate: func(in *model.DebitInput) { in.Amount = "0" }, field: "amount"},
		{name: "negative amount", mutate: func(in *model.DebitInput) { in.Amount = "-5" }, field: "amount"},
		{name: "three decimals", mutate: func(in *model.DebitInput) { in.Amount = "1.005" }, field: "amount"},
		{name: "too large", mutate: func(in *model.DebitInput) { in.Amount = "100000000" }, field: "amount"},
		{name: "missing date", mutate: func(in *model.DebitInput) { in.Date = "" }, field: "date"},
		{name: "bad date", mutate: func(in *model.DebitInput) { in.Date = "2024-13-01" }, field: "date"},
		{name: "date with time", mutate: func(in *model.DebitInput) { in.Date = "2024-01-10T10:00:00Z" }, field: "date"},
		{name: "year one", mutate: func(in *model.DebitInput) { in.Date = "0001-01-01" }, field: "date"},
		{name: "before 1900", mutate: func(in *model.DebitInput) { in.Date = "1899-12-31" }, field: "date"},
		{name: "huge exponent", mutate: func(in *model.DebitInput) { in.Amount = "1e20000000" }, field: "amount"},
		{name: "tiny exponent", mutate: func(in *model.DebitInput) { in.Amount = "1e-20000000" }, field: "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.CreateDebit(ctx, c.ID, in)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, fieldErrors(t, err), tt.field)
		})
	}

	debits, err := db.Storage.ListDebits(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, debits, "rejected debits must not be stored")
}

func TestService_UnknownCategoryListsAccepted(t *testing.T) {
	svc, db := newTestService(t)
	c := db.MustCreateCustomer("Ana")

	_, err := svc.CreateDebit(context.Background(), c.ID, model.DebitInput{
		Description: "Milk", Category: "dairy", Amount: "2", Date: "2024-01-01",
	})
	fields := fieldErrors(t, err)
	for _, cat := range model.Categories() {
		assert.Contains(t, fields["category"], cat.String())
	}
}

func TestService_PaymentValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	c := db.MustCreateCustomer("Ana")

	p, err := svc.CreatePayment(ctx, c.ID, model.PaymentInput{Description: "  ", Amount: "5", Date: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "", p.Description)
	assert.Equal(t, "5.00", model.FormatAmount(p.Amount))

	_, err = svc.CreatePayment(ctx, c.ID, model.PaymentInput{Amount: "0.001", Date: "nope"})
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "amount")
	assert.Contains(t, fields, "date")
}

func TestService_PaymentEdgeInputs(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	c := db.MustCreateCustomer("Ana")

	tests := []struct {
		name  string
		in    model.PaymentInput
		field string
		msg   string
	}{
		{name: "year one", in: model.PaymentInput{Amount: "5", Date: "0001-01-01"}, field: "date", msg: "before 1900"},
		{name: "exponent above max", in: model.PaymentInput{Amount: "1e20000000", Date: "2024-01-01"}, field: "amount", msg: "greater than"},
		{name: "exponent below a cent", in: model.PaymentInput{Amount: "1e-20000000", Date: "2024-01-01"}, field: "amount", msg: "decimal places"},
		{name: "nine integer digits", in: model.PaymentInput{Amount: "123456789", Date: "2024-01-01"}, field: "amount", msg: "greater than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			_, err := svc.CreatePayment(ctx, c.ID, tt.in)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, fieldErrors(t, err)[tt.field], tt.msg)
			assert.Less(t, time.Since(start), time.Second)
		})
	}

	p, err := svc.CreatePayment(ctx, c.ID, model.PaymentInput{Amount: "1e2", Date: "1900-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "100.00", model.FormatAmount(p.Amount))
}

func TestService_Categories(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Equal(t, model.Categories(), svc.Categories())
}
