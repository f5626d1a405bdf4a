package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/gin-gonic/gin"
)

var errMalformedBody = errors.New("malformed JSON body")

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		common.LogError(c.Request.Context(), err, "health check failed", nil)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Admin:     newAdminResponse(result.Admin),
	})
}

func (s *Server) logout(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.auth.Logout(c.Request.Context(), session); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Logged out."})
}

func (s *Server) me(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}
	admin, err := s.auth.Admin(c.Request.Context(), session)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAdminResponse(admin))
}

func (s *Server) listCustomers(c *gin.Context) {
	customers, err := s.ledger.ListCustomers(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for _, customer := range customers {
		out = append(out, newCustomerResponse(customer))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createCustomer(c *gin.Context) {
	var req customerRequest
	if !bindJSON(c, &req) {
		return
	}
	detail, err := s.ledger.CreateCustomer(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCustomerDetailResponse(detail))
}

func (s *Server) getCustomer(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}
	detail, err := s.ledger.GetCustomer(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerDetailResponse(detail))
}

func (s *Server) updateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}
	var req customerRequest
	if !bindJSON(c, &req) {
		return
	}
	detail, err := s.ledger.UpdateCustomer(c.Request.Context(), id, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerDetailResponse(detail))
}

func (s *Server) deleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}
	if err := s.ledger.DeleteCustomer(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listMovements(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}
	history, err := s.ledger.ListMovements(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMovementsResponse(history))
}

func (s *Server) createDebit(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}
	var req debitRequest
	if !bindJSON(c, &req) {
		return
	}
	debit, err := s.ledger.CreateDebit(c.Request.Context(), id, model.DebitInput{
		Description: req.Description,
		Category:    req.Category,
		Amount:      string(req.Amount),
		Date:        req.Date,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, debitCreatedResponse{
		Message: "Debit recorded.",
		Debit:   newDebitResponse(*debit),
	})
}

func (s *Server) createPayment(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}
	var req paymentRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := s.ledger.CreatePayment(c.Request.Context(), id, model.PaymentInput{
		Description: req.Description,
		Amount:      string(req.Amount),
		Date:        req.Date,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, paymentCreatedResponse{
		Message: "Payment recorded.",
		Payment: newPaymentResponse(*payment),
	})
}

func (s *Server) deleteDebit(c *gin.Context) {
	customerID, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}
	debitID, ok := pathID(c, "debitId", "debit")
	if !ok {
		return
	}
	if err := s.ledger.DeleteDebit(c.Request.Context(), customerID, debitID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deletePayment(c *gin.Context) {
	customerID, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}
	paymentID, ok := pathID(c, "paymentId", "payment")
	if !ok {
		return
	}
	if err := s.ledger.DeletePayment(c.Request.Context(), customerID, paymentID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) categories(c *gin.Context) {
	cats := s.ledger.Categories()
	out := categoriesResponse{Categories: make([]string, 0, len(cats))}
	for _, cat := range cats {
		out.Categories = append(out.Categories, cat.String())
	}
	c.JSON(http.StatusOK, out)
}

// pathID parses a positive integer path parameter. Anything else cannot name a
// stored row and is answered with 404.
func pathID(c *gin.Context, param, kind string) (int64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(c, common.NotFound(kind, 0))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: errMalformedBody.Error()})
		return false
	}
	return true
}
