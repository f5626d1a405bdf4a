// Package auth signs administrators in and out and authenticates bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the shortest signing secret accepted.
const MinSecretLength = 16

const issuer = "tally"

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminFields struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
}

// Service issues and verifies session tokens.
type Service struct {
	store  service.AuthStore
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	ExpiresAt time.Time
	Admin     *model.Admin
	Token     string
}

// New creates an auth service signing tokens with secret.
func New(store service.AuthStore, secret string, ttl time.Duration) (*Service, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: jwt secret must be at least %d characters", common.ErrInvalidConfig, MinSecretLength)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: token ttl must be positive", common.ErrInvalidConfig)
	}
	return &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Login checks the credentials and opens a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if err := common.ValidateStruct(credentials{Email: email, Password: password}); err != nil {
		return nil, err
	}

	admin, err := s.store.GetAdminByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		// Spend the same bcrypt work as a real check so unknown emails are not distinguishable by timing.
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		slog.Info("login rejected", "email", email, "reason", "unknown email")
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)); err != nil {
		slog.Info("login rejected", "email", email, "reason", "wrong password")
		return nil, common.ErrInvalidCredentials
	}

	now := s.now().UTC().Truncate(time.Second)
	session := &model.Session{
		ID:        uuid.NewString(),
		AdminID:   admin.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.sign(session)
	if err != nil {
		return nil, err
	}

	slog.Info("admin logged in", "admin_id", admin.ID, "session_id", session.ID)
	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, Admin: admin}, nil
}

// Authenticate verifies a bearer token and returns its live session.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, common.ErrUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		slog.Debug("rejected token", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}

	session, err := s.store.GetSession(ctx, claims.ID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown session", common.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if strconv.FormatInt(session.AdminID, 10) != claims.Subject {
		return nil, fmt.Errorf("%w: subject mismatch", common.ErrUnauthorized)
	}
	if !session.Active(s.now()) {
		return nil, fmt.Errorf("%w: session ended", common.ErrUnauthorized)
	}
	return session, nil
}

// Logout revokes the session so its token stops authenticating.
func (s *Service) Logout(ctx context.Context, session *model.Session) error {
	if session == nil {
		return common.ErrUnauthorized
	}
	if err := s.store.RevokeSession(ctx, session.ID); err != nil {
		return err
	}
	slog.Info("admin logged out", "admin_id", session.AdminID, "session_id", session.ID)
	return nil
}

// Admin returns the administrator a session belongs to.
func (s *Service) Admin(ctx context.Context, session *model.Session) (*model.Admin, error) {
	return s.store.GetAdmin(ctx, session.AdminID)
}

// PurgeExpired deletes sessions that have expired.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.PurgeSessions(ctx, s.now())
}

func (s *Service) sign(session *model.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(session.AdminID, 10),
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// EnsureAdmin creates the administrator or resets its name and password.
// It needs no signing secret, so it is usable from the CLI before serve is configured.
func EnsureAdmin(ctx context.Context, store service.AuthStore, name, email, password string) (*model.Admin, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if err := common.ValidateStruct(adminFields{Name: name, Email: email, Password: password}); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return store.SaveAdmin(ctx, name, email, hash)
}

// HashPassword hashes a password with bcrypt's default cost.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

var (
	dummyOnce sync.Once
	dummy     []byte
)

func dummyHash() []byte {
	dummyOnce.Do(func() {
		dummy, _ = bcrypt.GenerateFromPassword([]byte("tally-dummy-password"), bcrypt.DefaultCost)
	})
	return dummy
}
