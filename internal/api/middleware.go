package api

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/auth"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/gin-gonic/gin"
)

// requestLogger logs one line per request through slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP())
	}
}

// requireAuth rejects requests without a live bearer token and stores the
// session in the request context.
func requireAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			writeError(c, common.ErrUnauthorized)
			return
		}

		session, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func sessionFrom(c *gin.Context) (*model.Session, error) {
	session, ok := auth.SessionFrom(c.Request.Context())
	if !ok {
		return nil, common.ErrUnauthorized
	}
	return session, nil
}
