package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/domain"
	"github.com/rock-radar/internal/usecase"
	"github.com/rock-radar/internal/usecase/dto"
)

type rankOptions struct {
	regions     []string
	path        string
	lower       string
	upper       string
	minLength   int
	minPitches  int
	types       []string
	model       string
	params      []float64
	sortArea    []string
	sortRoute   []string
	areaMetric  string
	routeMetric string
}

func newRankCmd(global *globalOptions) *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print one level of the ranked area tree",
		Example: `  radar rank --lower 5.10a --upper 5.12d --model logarithmic --sort-area "average score"
  radar rank --path "USA/California/Joshua Tree" --sort-route score --route-metric score`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, global, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.regions, "regions", nil, "Regions to load (default: RADAR_REGIONS or all)")
	f.StringVar(&opts.path, "path", "", "Area path from the root, separated by /")
	f.StringVar(&opts.lower, "lower", "", "Lowest grade to include")
	f.StringVar(&opts.upper, "upper", "", "Highest grade to include")
	f.IntVar(&opts.minLength, "min-length", 0, "Minimum route length")
	f.IntVar(&opts.minPitches, "min-pitches", 0, "Minimum number of pitches")
	f.StringSliceVar(&opts.types, "types", nil, "Route types to include (default: all)")
	f.StringVar(&opts.model, "model", "", "Ranking model: raw|logarithmic|logistic")
	f.Float64SliceVar(&opts.params, "params", nil, "Logistic model parameters: target popularity, trust")
	f.StringSliceVar(&opts.sortArea, "sort-area", []string{"name"}, "Area sort keys: primary[,secondary]")
	f.StringSliceVar(&opts.sortRoute, "sort-route", []string{"name"}, "Route sort keys: primary[,secondary]")
	f.StringVar(&opts.areaMetric, "area-metric", "", "Area field shown next to sub-areas")
	f.StringVar(&opts.routeMetric, "route-metric", "", "Route field shown next to routes")

	return cmd
}

func runRank(cmd *cobra.Command, global *globalOptions, opts *rankOptions) error {
	ctx := cmd.Context()
	e, err := global.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	regions := opts.regions
	if len(regions) == 0 {
		regions = e.cfg.Radar.Regions
	}

	builder := usecase.NewTreeBuilder(e.repo, e.cfg.Radar.BuildWorkers, e.log)
	tree, report, err := builder.BuildRegions(ctx, e.cfg.Radar.RootName, regions)
	if err != nil {
		return err
	}
	if report.Skipped > 0 {
		e.log.Warn("records skipped", zap.Int("skipped", report.Skipped), zap.Int("added", report.Added))
	}

	stats := domain.NewStatsContext()
	if err := stats.Model.SetModel(e.cfg.Radar.DefaultModel); err != nil {
		return err
	}
	radar := usecase.NewRadarUseCase(tree, stats, nil, 0, e.log)

	if err := applyRankOptions(cmd, radar, opts); err != nil {
		return err
	}

	var view *dto.AreaView
	if p := strings.Trim(opts.path, "/"); p != "" {
		view, err = radar.GetAreaByPath(ctx, strings.Split(p, "/"))
	} else {
		view, err = radar.GetArea(ctx, radar.RootID())
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderArea(view, radar.Settings(ctx)))
	return nil
}

// applyRankOptions переносит флаги в настройки; незаданные флаги не меняют значения по умолчанию
func applyRankOptions(cmd *cobra.Command, radar *usecase.RadarUseCase, opts *rankOptions) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	filter := dto.FilterRequest{}
	changed := false
	if flags.Changed("lower") {
		filter.LowerGrade = &opts.lower
		changed = true
	}
	if flags.Changed("upper") {
		filter.UpperGrade = &opts.upper
		changed = true
	}
	if flags.Changed("min-length") {
		filter.MinLength = &opts.minLength
		changed = true
	}
	if flags.Changed("min-pitches") {
		filter.MinPitches = &opts.minPitches
		changed = true
	}
	if flags.Changed("types") {
		filter.RouteTypes = append([]string{}, opts.types...)
		changed = true
	}
	if changed {
		if _, err := radar.SetFilter(ctx, filter); err != nil {
			return err
		}
	}

	if flags.Changed("model") {
		if _, err := radar.SetRankingModel(ctx, dto.ModelRequest{Model: opts.model, Params: opts.params}); err != nil {
			return err
		}
	}

	sortReq, err := sortRequest(opts.sortArea, opts.sortRoute)
	if err != nil {
		return err
	}
	if _, err := radar.SetSortKeys(ctx, sortReq); err != nil {
		return err
	}

	if opts.areaMetric != "" || opts.routeMetric != "" {
		if _, err := radar.SetMetrics(ctx, dto.MetricsRequest{
			AreaMetric:  opts.areaMetric,
			RouteMetric: opts.routeMetric,
		}); err != nil {
			return err
		}
	}
	return nil
}

func sortRequest(area, route []string) (dto.SortRequest, error) {
	if len(area) == 0 || len(area) > 2 || len(route) == 0 || len(route) > 2 {
		return dto.SortRequest{}, fmt.Errorf("sort keys take one or two fields: primary[,secondary]")
	}
	req := dto.SortRequest{NodePrimary: area[0], LeafPrimary: route[0]}
	if len(area) == 2 {
		req.NodeSecondary = area[1]
	}
	if len(route) == 2 {
		req.LeafSecondary = route[1]
	}
	return req, nil
}
