package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := openPostgres(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if dryRun {
				pending, err := store.PendingMigrations(ctx)
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations.")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Pending migrations:")
				for _, name := range pending {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
				}
				return nil
			}

			applied, err := store.Migrate(ctx)
			if err != nil {
				return err
			}
			log.Info().Strs("applied", applied).Msg("migrations applied")
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "List pending migrations without applying them")

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := openPostgres(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			applied, err := store.AppliedMigrations(ctx)
			if err != nil {
				return err
			}
			pending, err := store.PendingMigrations(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range applied {
				fmt.Fprintf(out, "applied  %s  %s\n", m.Filename, m.AppliedAt.Format("2006-01-02 15:04:05"))
			}
			for _, name := range pending {
				fmt.Fprintf(out, "pending  %s\n", name)
			}
			return nil
		},
	})

	return cmd
}
