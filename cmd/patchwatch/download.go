package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kapheine/patchwatch/db"
	"github.com/spf13/cobra"
)

func newDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download <altid>",
		Short: "Write a patch's downloadable content to standard output",
		Long: "Prints the full bundle text for bundle-extracted patches, the diff\n" +
			"body otherwise.",
		Args: cobra.ExactArgs(1),
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

			return client.Read(cmd.Context(), func(ctx context.Context, ops db.ReadOnly) error {
				patch, err := ops.PatchByAltID(ctx, args[0])
				if err != nil {
					return fmt.Errorf("invalid patch id %v: %w", args[0], err)
				}

				_, err = os.Stdout.WriteString(patch.DownloadContent())

				return err
			})
		},
	}
}
