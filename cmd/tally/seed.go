package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo customers",
		Long: `Create demo customers, each with a handful of debits from the last
three months and payments from the last two. Useful for trying out
the web client against a fresh database.`,
		RunE: runSeed,
	}

	cmd.Flags().IntP("customers", "n", 8, "Number of customers to create")
	cmd.Flags().Bool("force", false, "Seed even if the database already has customers")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	count, _ := cmd.Flags().GetInt("customers")
	force, _ := cmd.Flags().GetBool("force")
	if count <= 0 {
		return errors.New("--customers must be positive")
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

	existing, err := store.CountCustomers(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if existing > 0 && !force {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Database already has %d customer(s); use --force to seed anyway", existing)))
		return nil
	}

	progress := cli.NewProgress(cmd.ErrOrStderr(), count, "Seeding customers")
	created, err := ledger.New(store).Seed(ctx, ledger.SeedOptions{
		Customers: count,
		OnCreated: progress.Step,
	})
	progress.Finish()
	if err != nil {
		return fmt.Errorf("seeding stopped after %d customer(s): %w", created, err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created %d demo customer(s)", created)))
	return nil
}
