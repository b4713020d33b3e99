package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blupr/internal/catalog"
	"blupr/internal/db"
	"blupr/internal/domain"
	"blupr/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the demo population into the profile store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool, eng.Catalog.Len()); err != nil {
			return err
		}

		profiles := repository.NewPgProfileRepository(pool)
		now := time.Now().UTC()
		for _, d := range catalog.DemoProfiles() {
			p := domain.Profile{
				ID:          d.Identity,
				Identity:    d.Identity,
				DisplayName: d.Name,
				Responses:   d.Responses,
				Vector:      eng.Encoder.Encode(d.Responses),
				CreatedAt:   now,
			}
			if err := profiles.Upsert(ctx, p); err != nil {
				return fmt.Errorf("seed %s: %w", d.Identity, err)
			}
			logger.Info("seeded profile", zap.String("identity", d.Identity))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d demo profiles\n", len(catalog.DemoProfiles()))
		return nil
	},
}
