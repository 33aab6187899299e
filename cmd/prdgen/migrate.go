package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adolfohrq/prdgen/internal/infra/sqlite"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			db, applied, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			for _, name := range applied {
				fmt.Fprintf(c.out, "applied %s\n", name) //nolint:errcheck
			}
			v, err := sqlite.MigrationVersion(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s at schema version %d\n", cfg.DBPath, v) //nolint:errcheck
			return nil
		},
	}
}
