package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	var dir string

	open := func() (*migrate.Migrate, error) {
		m, err := migrate.New("file://"+dir, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("initialize migrations: %w", err)
		}
		return m, nil
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "path", "migrations", "path to migration files")

	cmd.AddCommand(&cobra.Command{
		Use:   "up [steps]",
		Short: "Apply all pending migrations, or only the given number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			if err := runSteps(m, args, 1); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrated up successfully")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back all migrations, or only the given number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			if err := runSteps(m, args, -1); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrated down successfully")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			version, dirty, err := m.Version()
			if err != nil {
				return fmt.Errorf("read version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %d, Dirty: %t\n", version, dirty)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			if err := m.Force(v); err != nil {
				return fmt.Errorf("force: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forced version to %d\n", v)
			return nil
		},
	})

	return cmd
}

// runSteps migrates all the way in direction (1 up, -1 down) or by the step
// count given as the only argument.
func runSteps(m *migrate.Migrate, args []string, direction int) error {
	var err error
	switch {
	case len(args) == 1:
		n, convErr := strconv.Atoi(args[0])
		if convErr != nil || n <= 0 {
			return fmt.Errorf("steps must be a positive number, got %q", args[0])
		}
		err = m.Steps(n * direction)
	case direction > 0:
		err = m.Up()
	default:
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
