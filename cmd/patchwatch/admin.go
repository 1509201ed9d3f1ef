package main

import (
	"context"
	"fmt"

	"github.com/kapheine/patchwatch/db"
	"github.com/spf13/cobra"
)

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <username> <password>",
			Short: "Create an administrator account",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTransaction(cmd, func(ctx context.Context, tx db.Transaction) error {
					_, err := tx.CreateAdmin(ctx, args[0], args[1])

					return err
				})
			},
		},
		&cobra.Command{
			Use:   "rm <username>",
			Short: "Delete an administrator account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTransaction(cmd, func(ctx context.Context, tx db.Transaction) error {
					if err := tx.DeleteAdmin(ctx, args[0]); err != nil {
						return fmt.Errorf("no match found for %v: %w", args[0], err)
					}

					return nil
				})
			},
		},
	)

	return cmd
}

// withTransaction opens the database and runs op in a single write
// transaction, shared by the small administrative commands.
func withTransaction(cmd *cobra.Command, op func(context.Context, db.Transaction) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := openClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	defer closeClient(client)

	return client.Write(cmd.Context(), op)
}
