package main

import (
	"github.com/spf13/cobra"

	"trackshare/internal/config"
	"trackshare/internal/logging"
)

// cli carries state shared by every subcommand once the root has loaded it.
type cli struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "trackshare",
		Short:        "trackshare serves a music sharing API with tracks, likes and comments.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg

			logging.SetGlobalLogger(logging.New(logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				File:   cfg.Logging.File,
			}))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML config file (defaults to $TRACKSHARE_CONFIG)")

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newSeedCmd(c),
	)
	return root
}
