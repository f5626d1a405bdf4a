package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

type customerFields struct {
	Name    string `json:"name" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=255"`
}

type debitFields struct {
	Description string `json:"description" validate:"required,max=255"`
}

type paymentFields struct {
	Description string `json:"description" validate:"max=255"`
}

// checkFields runs the tag rules on v and returns the collected failures so
// callers can add the checks tags cannot express.
func checkFields(v any) (*common.ValidationError, error) {
	err := common.ValidateStruct(v)
	if err == nil {
		return &common.ValidationError{}, nil
	}
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		return verr, nil
	}
	return nil, err
}

func cleanCustomerInput(in model.CustomerInput) (model.CustomerInput, error) {
	out := model.CustomerInput{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	}

	verr, err := checkFields(customerFields(out))
	if err != nil {
		return out, err
	}
	return out, verr.OrNil()
}

func parseDebitInput(customerID int64, in model.DebitInput) (*model.Debit, error) {
	description := strings.TrimSpace(in.Description)
	verr, err := checkFields(debitFields{Description: description})
	if err != nil {
		return nil, err
	}

	category := model.NormalizeCategory(in.Category)
	switch {
	case category == model.NoCategory:
		verr.Add("category", "category is required")
	case !category.IsKnown():
		verr.Add("category", fmt.Sprintf("category must be one of: %s", acceptedCategories()))
	}

	amount := parseAmount(verr, in.Amount)
	date := parseDate(verr, in.Date)

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return &model.Debit{
		CustomerID:  customerID,
		Description: description,
		Category:    category,
		Amount:      amount,
		Date:        date,
	}, nil
}

func parsePaymentInput(customerID int64, in model.PaymentInput) (*model.Payment, error) {
	description := strings.TrimSpace(in.Description)
	verr, err := checkFields(paymentFields{Description: description})
	if err != nil {
		return nil, err
	}

	amount := parseAmount(verr, in.Amount)
	date := parseDate(verr, in.Date)

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return &model.Payment{
		CustomerID:  customerID,
		Description: description,
		Amount:      amount,
		Date:        date,
	}, nil
}

func parseAmount(verr *common.ValidationError, raw string) decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		verr.Add("amount", "amount is required")
		return decimal.Zero
	}
	amount, err := model.ParseAmount(raw)
	switch {
	case err != nil:
		verr.Add("amount", "amount must be a number")
	case !amount.IsPositive():
		verr.Add("amount", "amount must be at least 0.01")
	case model.IntegerDigits(amount) > model.MaxIntegerDigits:
		verr.Add("amount", "amount may not be greater than "+model.FormatAmount(model.MaxAmount))
	case !model.HasValidPrecision(amount):
		verr.Add("amount", "amount may not have more than 2 decimal places")
	case amount.GreaterThan(model.MaxAmount):
		verr.Add("amount", "amount may not be greater than "+model.FormatAmount(model.MaxAmount))
	}
	return amount
}

func parseDate(verr *common.ValidationError, raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		verr.Add("date", "date is required")
		return time.Time{}
	}
	date, err := model.ParseDate(raw)
	switch {
	case err != nil:
		verr.Add("date", "date must be a valid date (YYYY-MM-DD)")
	case date.Year() < model.MinYear:
		verr.Add("date", fmt.Sprintf("date may not be before %d-01-01", model.MinYear))
	}
	return date
}

func acceptedCategories() string {
	names := make([]string, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}
