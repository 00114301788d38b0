package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campus-mts/mts/internal/persistence"
	"github.com/campus-mts/mts/internal/repository"
	"github.com/campus-mts/mts/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the bootstrap administrator",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		if cfg.Seed.AdminPassword == "" {
			return errors.New("SEED_ADMIN_PASSWORD is required")
		}

		ctx := cmd.Context()
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return err
		}
		defer pg.Close()

		users := service.NewUserService(service.UserDependencies{
			UserRepo:   repository.NewUserRepository(pg.PoolHandle()),
			BcryptCost: cfg.Auth.BcryptCost,
			Logger:     logger,
		})
		created, err := users.EnsureAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminPassword)
		if err != nil {
			return err
		}
		logger.Info("seed finished", zap.String("admin", cfg.Seed.AdminName), zap.Bool("created", created))
		return nil
	},
}
