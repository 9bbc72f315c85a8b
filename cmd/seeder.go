package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/projecthub/internal/core/store"
	"github.com/frahmantamala/projecthub/internal/seed"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

var (
	adminEmail    string
	adminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with reference data and an administrator",
	Long:  `Seed permissions, roles, positions, departments and the first administrator. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		lg := logger.LoggerWrapper()

		db, err := store.Open(cfg.Database, lg)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()

		adminID, err := seed.Run(cmd.Context(), db, seed.Options{
			AdminName:     "Administrator",
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
			BCryptCost:    cfg.Security.BCryptCost,
			Clear:         clearData,
		}, lg)
		if err != nil {
			return err
		}

		fmt.Printf("Seeded administrator %s (id %d)\n", adminEmail, adminID)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&adminEmail, "admin-email", "admin@projecthub.local", "administrator email")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "password", "administrator password")
}
