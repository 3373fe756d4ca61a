package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/kubeinventory/schema"
	"github.com/kubeinventory/schema/migrations"
	"github.com/spf13/cobra"
)

func createUpCmd(man configManager) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, man)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			if err := env.ensureTrackingTable(); err != nil {
				return err
			}
			pending, err := env.migrator.Pending(env.db, migrations.All())
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				env.logger.Info("schema is up to date")
				return nil
			}
			if err := env.migrator.Apply(env.db, migrations.All()); err != nil {
				return err
			}
			env.logger.WithField("count", len(pending)).Info("migrations applied")
			return nil
		},
	}
}

func createDownCmd(man configManager) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Revert the most recently applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, man)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			err = env.migrator.Revert(env.db, migrations.All())
			if errors.Is(err, schema.ErrNothingToRevert) {
				env.logger.Info("no migration to revert")
				return nil
			}
			return err
		},
	}
}

func createStatusCmd(man configManager) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, man)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			if err := env.ensureTrackingTable(); err != nil {
				return err
			}
			statuses, err := env.migrator.Status(env.db, migrations.All())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tAPPLIED AT")
			for _, status := range statuses {
				switch {
				case status.Applied == nil:
					fmt.Fprintf(w, "%s\tpending\t\n", status.ID)
				case status.Changed():
					fmt.Fprintf(w, "%s\tchanged\t%s\n", status.ID, status.Applied.AppliedAt.UTC().Format(time.DateTime))
				default:
					fmt.Fprintf(w, "%s\tapplied\t%s\n", status.ID, status.Applied.AppliedAt.UTC().Format(time.DateTime))
				}
			}
			return w.Flush()
		},
	}
}
