package main

import (
	"fmt"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the accepted debit categories",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Debit categories"))
			for _, c := range model.Categories() {
				fmt.Fprintf(out, "  • %s\n", c)
			}
		},
	}
}
