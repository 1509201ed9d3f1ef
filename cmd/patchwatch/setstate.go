package main

import (
	"context"
	"fmt"

	"github.com/kapheine/patchwatch/db"
	"github.com/spf13/cobra"
)

func newSetStateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setstate <altid> <state>",
		Short: "Set the review state of a patch",
		Long: "Moves the patch identified by altid into the named state: New,\n" +
			"Under Review, Changes Requested, Superseded, Accepted or Rejected.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := openClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			defer closeClient(client)

			return client.Write(cmd.Context(), func(ctx context.Context, tx db.Transaction) error {
				state, err := tx.StateByName(ctx, args[1])
				if err != nil {
					return fmt.Errorf("invalid state %v: %w", args[1], err)
				}

				if err := tx.SetPatchStateByAltID(ctx, args[0], state.ID); err != nil {
					return fmt.Errorf("invalid patch id %v: %w", args[0], err)
				}

				return nil
			})
		},
	}
}
