package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has all the required
tables and indexes for the application to function properly.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.Debug("Starting database migration", "database", cfg.Database.Path, "status_only", status)

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if status {
		var summary string
		if current < storage.ExpectedSchemaVersion {
			summary = cli.FormatWarning(fmt.Sprintf("%d migration(s) pending", storage.ExpectedSchemaVersion-current))
		} else {
			summary = cli.FormatSuccess("Schema is up to date")
		}
		fmt.Fprintln(out, cli.RenderBox("Database Migration Status", strings.Join([]string{
			fmt.Sprintf("Database:        %s", cfg.Database.Path),
			fmt.Sprintf("Current version: %d", current),
			fmt.Sprintf("Latest version:  %d", storage.ExpectedSchemaVersion),
			"",
			summary,
		}, "\n")))
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database migrated from version %d to %d", current, storage.ExpectedSchemaVersion)))
	return nil
}
