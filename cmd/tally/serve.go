package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/tally/internal/api"
	"github.com/Veraticus/tally/internal/auth"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Start the HTTP API used by the web client.

The signing secret must be configured through auth.jwt_secret
(TALLY_AUTH_JWT_SECRET). When auth.admin_password is set, the
administrator account is created or reset on startup.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if cfg.Auth.AdminPassword != "" {
		admin, err := auth.EnsureAdmin(ctx, store, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to seed administrator: %w", err)
		}
		slog.Info("administrator ready", "email", admin.Email)
	}

	authSvc, err := auth.New(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	if purged, err := authSvc.PurgeExpired(ctx); err != nil {
		slog.Warn("failed to purge expired sessions", "error", err)
	} else if purged > 0 {
		slog.Info("purged expired sessions", "count", purged)
	}

	if !strings.EqualFold(cfg.Logging.Level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.NewServer(cfg.Server, ledger.New(store), authSvc, store)
	return server.Run(ctx)
}
