package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trackshare/internal/store"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		ValidArgs: []string{store.MigrateUp, store.MigrateDown},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Database
			if cfg.Driver == store.DriverMemory {
				return errors.New("the memory driver has no schema to migrate")
			}

			db, err := store.Open(cmd.Context(), cfg.Driver, cfg.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.Migrate(db, cfg.Driver, args[0]); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.Driver).Str("direction", args[0]).Msg("migrations applied")
			return nil
		},
	}
}
