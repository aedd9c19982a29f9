package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgo/petzadopt/internal/database"
)

func migrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		Long: `Apply every migrations/*.surql file in name order.

Schema statements use IF NOT EXISTS, so running migrate twice is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			db, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			applied, err := database.Migrate(ctx, db, dir)
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "./migrations", "Migrations directory")

	return cmd
}
