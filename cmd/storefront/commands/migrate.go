package commands

import (
	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/pkg/factory"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	appFactory, err := factory.NewFactory(ctx, cfg)
	if err != nil {
		return err
	}
	defer appFactory.Close(ctx)

	migrator := appFactory.GetMigrationService()
	if err := migrator.RunMigrations(ctx); err != nil {
		return err
	}

	applied, err := migrator.Applied(ctx)
	if err != nil {
		return err
	}

	names := make([]string, len(applied))
	for i, m := range applied {
		names[i] = m.Name
	}
	appFactory.GetLogger().Info("Migrationlar güncel", map[string]interface{}{"applied": names})
	return nil
}
