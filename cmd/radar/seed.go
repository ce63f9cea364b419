package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/domain/repository"
	"github.com/rock-radar/internal/repository/file"
	"github.com/rock-radar/internal/repository/postgres"
)

func newSeedCmd(global *globalOptions) *cobra.Command {
	var regions []string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy region JSON files into PostgreSQL",
		Long: `seed reads regions from the data directory and replaces their records in PostgreSQL.
Existing regions are overwritten, other regions are left as is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := global.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := openDB(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			src := file.NewRouteRepository(cfg.Radar.DataDir, log)
			dst := postgres.NewRouteRepository(db, log)

			saved, err := seed(cmd, src, dst, regions, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s seeded %d routes from %s\n",
				okStyle.Render("✓"), saved, cfg.Radar.DataDir)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&regions, "regions", nil, "Regions to seed (default: all files)")
	return cmd
}

// seed копирует регионы из src в dst и возвращает число сохраненных маршрутов
func seed(cmd *cobra.Command, src repository.RouteRepository, dst repository.RouteStore, regions []string, log *zap.Logger) (int, error) {
	ctx := cmd.Context()
	if len(regions) == 0 {
		available, err := src.ListRegions(ctx)
		if err != nil {
			return 0, err
		}
		for _, r := range available {
			regions = append(regions, r.Name)
		}
	}

	total := 0
	for _, region := range regions {
		records, err := src.GetRegionRecords(ctx, region)
		if err != nil {
			return total, err
		}
		n, err := dst.SaveRegionRecords(ctx, region, records)
		if err != nil {
			return total, fmt.Errorf("seed region %s: %w", region, err)
		}
		total += n
		log.Info("region seeded", zap.String("region", region), zap.Int("routes", n))
		fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %s\n", region, dimStyle.Render(fmt.Sprintf("%d routes", n)))
	}
	return total, nil
}
