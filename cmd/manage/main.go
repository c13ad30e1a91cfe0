package main

import (
	"context"
	"fmt"
	"os"

	"github.com/autogestion/autogestion-backend/internal/config"
	"github.com/autogestion/autogestion-backend/internal/database"
	"github.com/autogestion/autogestion-backend/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func (a *app) connect(ctx context.Context) (*pgxpool.Pool, error) {
	return database.NewPostgresPool(ctx, a.cfg, a.log)
}

// newRootCommand creates the root command for the maintenance CLI.
func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "manage",
		Short:         "Autogestión maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.Setup(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	cmd.AddCommand(newMigrateCommand(a))
	cmd.AddCommand(newCreateAdminCommand(a))
	cmd.AddCommand(newSeedStudentsCommand(a))
	cmd.AddCommand(newSyncPermissionsCommand(a))

	return cmd
}
