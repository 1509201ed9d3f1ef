package main

import (
	"io"
	"os"

	"github.com/kapheine/patchwatch/internal/ingest"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newIngestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [mbox-file]",
		Short: "Ingest a mailbox archive into the patch database",
		Long: "Reads an mbox-format archive from the given file, or from standard\n" +
			"input when the argument is omitted or '-', and records every patch\n" +
			"submission and review comment it contains. Re-running over the same\n" +
			"or an overlapping archive is safe.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var in io.Reader = os.Stdin

			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}

				defer func() {
					if err := f.Close(); err != nil {
						logrus.WithError(err).Error("Failed to close mbox file")
					}
				}()

				in = f
			}

			client, err := openClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			defer closeClient(client)

			stats, err := ingest.NewPipeline(cfg, client).Run(cmd.Context(), in)
			if err != nil {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"messages": stats.Messages,
				"skipped":  stats.Skipped,
				"patches":  stats.Patches,
				"comments": stats.Comments,
				"failed":   stats.Failed,
			}).Info("Ingestion finished")

			return nil
		},
	}
}
