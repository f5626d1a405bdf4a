package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Veraticus/tally/internal/auth"
	"github.com/Veraticus/tally/internal/cli"
	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	cmd.AddCommand(adminSetCmd())

	return cmd
}

func adminSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create an administrator or reset its password",
		Long: `Create an administrator account, or update the name and password of an
existing account with the same email.

The password may also be supplied through TALLY_ADMIN_PASSWORD so it
does not end up in shell history.`,
		RunE: runAdminSet,
	}

	cmd.Flags().String("email", "", "Administrator email (required)")
	cmd.Flags().String("name", "Administrator", "Display name")
	cmd.Flags().String("password", "", "Password (default: $TALLY_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runAdminSet(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("TALLY_ADMIN_PASSWORD")
	}
	if password == "" {
		return errors.New("a password is required: pass --password or set TALLY_ADMIN_PASSWORD")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	admin, err := auth.EnsureAdmin(ctx, store, name, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Administrator %s <%s> saved", admin.Name, admin.Email)))
	return nil
}
