// Package api exposes the ledger as a JSON API over gin.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/Veraticus/tally/internal/auth"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/model"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Ledger is the set of ledger operations the API serves.
type Ledger interface {
	ListCustomers(ctx context.Context, search string) ([]model.CustomerSummary, error)
	CreateCustomer(ctx context.Context, in model.CustomerInput) (*model.CustomerDetail, error)
	GetCustomer(ctx context.Context, id int64) (*model.CustomerDetail, error)
	UpdateCustomer(ctx context.Context, id int64, in model.CustomerInput) (*model.CustomerDetail, error)
	DeleteCustomer(ctx context.Context, id int64) error
	ListMovements(ctx context.Context, customerID int64) (*model.MovementHistory, error)
	CreateDebit(ctx context.Context, customerID int64, in model.DebitInput) (*model.Debit, error)
	CreatePayment(ctx context.Context, customerID int64, in model.PaymentInput) (*model.Payment, error)
	DeleteDebit(ctx context.Context, customerID, debitID int64) error
	DeletePayment(ctx context.Context, customerID, paymentID int64) error
	Categories() []model.Category
}

// Authenticator signs administrators in and out.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*model.Session, error)
	Logout(ctx context.Context, session *model.Session) error
	Admin(ctx context.Context, session *model.Session) (*model.Admin, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP front of the ledger.
type Server struct {
	ledger Ledger
	auth   Authenticator
	store  Pinger
	engine *gin.Engine
	cfg    config.ServerConfig
}

// NewServer wires the routes. It does not start listening.
func NewServer(cfg config.ServerConfig, ledger Ledger, authn Authenticator, store Pinger) *Server {
	s := &Server{
		ledger: ledger,
		auth:   authn,
		store:  store,
		cfg:    cfg,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	if corsMiddleware := newCORS(cfg.AllowedOrigins); corsMiddleware != nil {
		s.engine.Use(corsMiddleware)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group(s.cfg.APIPrefix)
	api.GET("/health", s.health)
	api.POST("/login", s.login)

	authed := api.Group("", requireAuth(s.auth))
	authed.POST("/logout", s.logout)
	authed.GET("/me", s.me)
	authed.GET("/categories", s.categories)

	customers := authed.Group("/customers")
	customers.GET("", s.listCustomers)
	customers.POST("", s.createCustomer)
	customers.GET("/:id", s.getCustomer)
	customers.PUT("/:id", s.updateCustomer)
	customers.DELETE("/:id", s.deleteCustomer)
	customers.GET("/:id/movements", s.listMovements)
	customers.POST("/:id/debit", s.createDebit)
	customers.POST("/:id/payment", s.createPayment)
	customers.DELETE("/:id/debit/:debitId", s.deleteDebit)
	customers.DELETE("/:id/payment/:paymentId", s.deletePayment)
}

func newCORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API listening", "addr", s.cfg.Addr, "prefix", s.cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
