package main

import (
	"context"

	"github.com/kapheine/patchwatch/db"
	"github.com/kapheine/patchwatch/internal/config"
	"github.com/kapheine/patchwatch/internal/db_impl/sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagDBDir  string
	flagDebug  bool
)

func main() {
	root := &cobra.Command{
		Use:           "patchwatch",
		Short:         "Track patches submitted to a mailing list",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVar(&flagDBDir, "db", "", "database directory (overrides config)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	root.AddCommand(
		newIngestCommand(),
		newListCommand(),
		newDownloadCommand(),
		newSetStateCommand(),
		newAdminCommand(),
		newBranchCommand(),
	)

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("Command failed")
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if flagDBDir != "" {
		cfg.DatabaseDir = flagDBDir
	}

	if flagDebug {
		cfg.Debug = true

		logrus.SetLevel(logrus.DebugLevel)
	}

	return cfg, nil
}

// openClient opens and migrates the database. Failure here is the only fatal
// condition of any command.
func openClient(ctx context.Context, cfg *config.Config) (db.Client, error) {
	var opts []sqlite3.Option

	if cfg.Debug {
		opts = append(opts, sqlite3.Debug())
	}

	client, isNew, err := sqlite3.NewBuilder(opts...).New(cfg.DatabaseDir)
	if err != nil {
		return nil, err
	}

	if isNew {
		logrus.WithField("dir", cfg.DatabaseDir).Info("Creating new database")
	}

	if err := client.Init(ctx); err != nil {
		if cerr := client.Close(); cerr != nil {
			logrus.WithError(cerr).Error("Failed to close database")
		}

		return nil, err
	}

	return client, nil
}

func closeClient(client db.Client) {
	if err := client.Close(); err != nil {
		logrus.WithError(err).Error("Failed to close database")
	}
}
