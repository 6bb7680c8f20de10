package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// ShouldAutoRun reports whether the api process applies migrations itself:
// dev environments with STOREFRONT_AUTO_MIGRATE on and a postgres database.
func ShouldAutoRun(cfg *config.Config) bool {
	return cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate && !cfg.FeatureFlags.UseSQLite
}

// MaybeRunDev applies pending goose migrations at boot when ShouldAutoRun
// allows it. The sqlite schema comes from the gorm models instead.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !ShouldAutoRun(cfg) {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "migrate.autorun.start")
	runner, err := NewRunner(sqlDB, DefaultDir, logg)
	if err != nil {
		return err
	}
	if err := runner.Run(ctx, "up"); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.autorun.done")
	return nil
}
