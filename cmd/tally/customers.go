package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/spf13/cobra"
)

func customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"c"},
		Short:   "Inspect customer tabs",
	}

	cmd.AddCommand(customersListCmd())
	cmd.AddCommand(customersShowCmd())
	cmd.AddCommand(customersBalanceCmd())

	return cmd
}

func customersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers with their balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			search, _ := cmd.Flags().GetString("search")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			customers, err := ledger.New(store).ListCustomers(ctx, search)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(customers) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No customers found"))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle("Customers"))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, cli.TableHeaderStyle.Render("ID\tNAME\tPHONE\tDEBITS\tPAYMENTS\tBALANCE"))

			owed := model.Totals{}
			for _, c := range customers {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					c.ID,
					c.Name,
					orDash(c.Phone),
					model.FormatAmount(c.Totals.Debits),
					model.FormatAmount(c.Totals.Payments),
					cli.FormatBalance(c.Totals.Balance()),
				)
				owed.Debits = owed.Debits.Add(c.Totals.Debits)
				owed.Payments = owed.Payments.Add(c.Totals.Payments)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "%d customer(s), outstanding %s\n", len(customers), cli.FormatBalance(owed.Balance()))
			return nil
		},
	}

	cmd.Flags().StringP("search", "q", "", "Filter by name or phone (case-insensitive)")

	return cmd
}

func customersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a customer's movement history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseCustomerID(args[0])
			if err != nil {
				return err
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

			history, err := ledger.New(store).ListMovements(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(history.Name))
			if len(history.Movements) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No movements recorded"))
			} else {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, cli.TableHeaderStyle.Render("DATE\tKIND\tCATEGORY\tAMOUNT\tDESCRIPTION"))
				for _, m := range history.Movements {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						m.Date.Format(model.DateLayout),
						m.Kind,
						categoryName(m.Category),
						model.FormatAmount(m.Amount),
						orDash(m.Description),
					)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "Balance: %s\n", cli.FormatBalance(history.Balance))
			return nil
		},
	}
}

func customersBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <id>",
		Short: "Show what a customer owes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseCustomerID(args[0])
			if err != nil {
				return err
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

			totals, err := ledger.New(store).Balance(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Debits:   %s\n", model.FormatAmount(totals.Debits))
			fmt.Fprintf(out, "Payments: %s\n", model.FormatAmount(totals.Payments))
			fmt.Fprintf(out, "Balance:  %s\n", cli.FormatBalance(totals.Balance()))
			return nil
		},
	}
}

func parseCustomerID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid customer ID %q", raw)
	}
	return id, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func categoryName(c *model.Category) string {
	if c == nil {
		return "-"
	}
	return c.String()
}
