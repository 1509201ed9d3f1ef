package main

import (
	"context"
	"fmt"

	"github.com/kapheine/patchwatch/db"
	"github.com/spf13/cobra"
)

func newBranchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "Manage branches patches can be assigned to",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Create a branch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTransaction(cmd, func(ctx context.Context, tx db.Transaction) error {
					_, err := tx.CreateBranch(ctx, args[0])

					return err
				})
			},
		},
		&cobra.Command{
			Use:   "rm <name>",
			Short: "Delete a branch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTransaction(cmd, func(ctx context.Context, tx db.Transaction) error {
					if err := tx.DeleteBranch(ctx, args[0]); err != nil {
						return fmt.Errorf("no match found for %v: %w", args[0], err)
					}

					return nil
				})
			},
		},
	)

	return cmd
}
