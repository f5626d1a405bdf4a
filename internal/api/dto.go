package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// flexString accepts a JSON string or number and keeps its text. Other JSON
// values keep their raw text so validation can reject them by field.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(data)
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type customerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r customerRequest) input() model.CustomerInput {
	return model.CustomerInput{Name: r.Name, Phone: r.Phone, Address: r.Address}
}

type debitRequest struct {
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Amount      flexString `json:"amount"`
	Date        string     `json:"date"`
}

type paymentRequest struct {
	Description string     `json:"description"`
	Amount      flexString `json:"amount"`
	Date        string     `json:"date"`
}

type adminResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	ID    int64  `json:"id"`
}

type loginResponse struct {
	ExpiresAt time.Time     `json:"expires_at"`
	Token     string        `json:"token"`
	Admin     adminResponse `json:"admin"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message"`
}

type customerResponse struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Phone         *string   `json:"phone"`
	Address       *string   `json:"address"`
	Name          string    `json:"name"`
	TotalDebits   string    `json:"total_debits"`
	TotalPayments string    `json:"total_payments"`
	Balance       string    `json:"balance"`
	ID            int64     `json:"id"`
}

type customerDetailResponse struct {
	Debits   []debitResponse   `json:"debits"`
	Payments []paymentResponse `json:"payments"`
	customerResponse
}

type debitResponse struct {
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
	ID          int64     `json:"id"`
}

type paymentResponse struct {
	CreatedAt   time.Time `json:"created_at"`
	Description *string   `json:"description"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
	ID          int64     `json:"id"`
}

type movementResponse struct {
	CreatedAt   time.Time `json:"created_at"`
	Category    *string   `json:"category"`
	Description *string   `json:"description"`
	Kind        string    `json:"kind"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
	ID          int64     `json:"id"`
}

type movementsResponse struct {
	Name       string             `json:"name"`
	Balance    string             `json:"balance"`
	Movements  []movementResponse `json:"movements"`
	CustomerID int64              `json:"customer_id"`
}

type debitCreatedResponse struct {
	Message string        `json:"message"`
	Debit   debitResponse `json:"debit"`
}

type paymentCreatedResponse struct {
	Message string          `json:"message"`
	Payment paymentResponse `json:"payment"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newAdminResponse(a *model.Admin) adminResponse {
	return adminResponse{ID: a.ID, Name: a.Name, Email: a.Email}
}

func newCustomerResponse(c model.CustomerSummary) customerResponse {
	return customerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         optional(c.Phone),
		Address:       optional(c.Address),
		TotalDebits:   model.FormatAmount(c.Totals.Debits),
		TotalPayments: model.FormatAmount(c.Totals.Payments),
		Balance:       model.FormatAmount(c.Totals.Balance()),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func newCustomerDetailResponse(d *model.CustomerDetail) customerDetailResponse {
	out := customerDetailResponse{
		customerResponse: newCustomerResponse(d.CustomerSummary),
		Debits:           make([]debitResponse, 0, len(d.Debits)),
		Payments:         make([]paymentResponse, 0, len(d.Payments)),
	}
	for _, debit := range d.Debits {
		out.Debits = append(out.Debits, newDebitResponse(debit))
	}
	for _, payment := range d.Payments {
		out.Payments = append(out.Payments, newPaymentResponse(payment))
	}
	return out
}

func newDebitResponse(d model.Debit) debitResponse {
	return debitResponse{
		ID:          d.ID,
		Description: d.Description,
		Category:    d.Category.String(),
		Amount:      model.FormatAmount(d.Amount),
		Date:        d.Date.Format(model.DateLayout),
		CreatedAt:   d.CreatedAt,
	}
}

func newPaymentResponse(p model.Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		Description: optional(p.Description),
		Amount:      model.FormatAmount(p.Amount),
		Date:        p.Date.Format(model.DateLayout),
		CreatedAt:   p.CreatedAt,
	}
}

func newMovementsResponse(h *model.MovementHistory) movementsResponse {
	out := movementsResponse{
		CustomerID: h.CustomerID,
		Name:       h.Name,
		Balance:    model.FormatAmount(h.Balance),
		Movements:  make([]movementResponse, 0, len(h.Movements)),
	}
	for _, m := range h.Movements {
		var category *string
		if m.Category != nil {
			category = optional(m.Category.String())
		}
		out.Movements = append(out.Movements, movementResponse{
			ID:          m.ID,
			Kind:        string(m.Kind),
			Description: optional(m.Description),
			Category:    category,
			Amount:      model.FormatAmount(m.Amount),
			Date:        m.Date.Format(model.DateLayout),
			CreatedAt:   m.CreatedAt,
		})
	}
	return out
}
