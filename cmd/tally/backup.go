package main

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/spf13/cobra"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups",
		Long: `Create, list, restore, and delete database backups.

Backups are consistent copies of the database written next to it in a
backups/ directory. Take one before bulk changes and restore it if
something goes wrong.`,
		Example: `  # Back up before cleaning out old customers
  tally backup create --tag pre-cleanup

  # List all backups
  tally backup list

  # Restore a backup
  tally backup restore pre-cleanup`,
	}

	cmd.AddCommand(createBackupCmd())
	cmd.AddCommand(listBackupsCmd())
	cmd.AddCommand(restoreBackupCmd())
	cmd.AddCommand(deleteBackupCmd())

	return cmd
}

// withBackups opens the configured database and hands its backup manager to fn.
func withBackups(cmd *cobra.Command, fn func(*storage.BackupManager) error) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manager, err := store.NewBackupManager()
	if err != nil {
		return fmt.Errorf("failed to create backup manager: %w", err)
	}
	return fn(manager)
}

func createBackupCmd() *cobra.Command {
	var tag string
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new backup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackups(cmd, func(manager *storage.BackupManager) error {
				info, err := manager.Create(cmd.Context(), tag, description)
				if err != nil {
					return fmt.Errorf("failed to create backup: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s Created backup %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.ID),
					cli.FormatFileSize(info.FileSize))
				if info.Description != "" {
					fmt.Fprintf(out, "  Description: %s\n", info.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Backup name (generated from the clock if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the backup")

	return cmd
}

func listBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all backups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackups(cmd, func(manager *storage.BackupManager) error {
				backups, err := manager.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list backups: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(backups) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No backups found."))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, strings.Join([]string{
					cli.TableHeaderStyle.Render("NAME"),
					cli.TableHeaderStyle.Render("CREATED"),
					cli.TableHeaderStyle.Render("SIZE"),
					cli.TableHeaderStyle.Render("CUSTOMERS"),
					cli.TableHeaderStyle.Render("DEBITS"),
					cli.TableHeaderStyle.Render("PAYMENTS"),
				}, "\t"))

				now := time.Now()
				for _, b := range backups {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
						cli.InfoStyle.Render(b.ID),
						cli.FormatRelativeTime(b.CreatedAt, now),
						cli.FormatFileSize(b.FileSize),
						b.RowCounts["customers"],
						b.RowCounts["debits"],
						b.RowCounts["payments"],
					)
				}
				return w.Flush()
			})
		},
	}
}

func restoreBackupCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Restore the database from a backup",
		Long:  `Replace the current database with a backup. Stop any running server first.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			out := cmd.OutOrStdout()

			return withBackups(cmd, func(manager *storage.BackupManager) error {
				if !force {
					fmt.Fprintf(out, "%s This will replace your current database with backup %s.\n",
						cli.WarningStyle.Render(cli.WarningIcon),
						cli.InfoStyle.Render(id))
					fmt.Fprint(out, "\nContinue? (y/N) ")

					response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "y") {
						fmt.Fprintln(out, cli.SubtitleStyle.Render("Restore cancelled."))
						return nil
					}
				}

				if err := manager.Restore(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to restore backup: %w", err)
				}

				fmt.Fprintf(out, "%s Restored database from backup %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func deleteBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <backup-id>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackups(cmd, func(manager *storage.BackupManager) error {
				if err := manager.Delete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete backup: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted backup %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(args[0]))
				return nil
			})
		},
	}
}
