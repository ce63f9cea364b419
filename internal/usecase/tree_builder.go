package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rock-radar/internal/domain"
	"github.com/rock-radar/internal/domain/repository"
	"github.com/rock-radar/internal/pkg/utils"
	"github.com/rock-radar/internal/pkg/validator"
)

// maxReportedErrors - сколько ошибок записей сохраняется в отчете
const maxReportedErrors = 20

// BuildReport - итог построения дерева из записей
type BuildReport struct {
	Records int      `json:"records"`
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

func (r *BuildReport) skip(rec domain.RouteRecord, err error) {
	r.Skipped++
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("record %s (%s): %v", rec.ID, rec.Name, err))
	}
}

func (r *BuildReport) merge(other BuildReport) {
	r.Records += other.Records
	r.Added += other.Added
	r.Skipped += other.Skipped
	for _, e := range other.Errors {
		if len(r.Errors) >= maxReportedErrors {
			break
		}
		r.Errors = append(r.Errors, e)
	}
}

// TreeBuilder строит дерево районов из записей источника
type TreeBuilder struct {
	routeRepo repository.RouteRepository
	workers   int
	logger    *zap.Logger
}

// NewTreeBuilder создает новый экземпляр TreeBuilder
func NewTreeBuilder(routeRepo repository.RouteRepository, workers int, logger *zap.Logger) *TreeBuilder {
	if workers < 1 {
		workers = 1
	}
	return &TreeBuilder{
		routeRepo: routeRepo,
		workers:   workers,
		logger:    logger,
	}
}

// AddRecord валидирует запись и добавляет маршрут в crag по пути записи.
// Недостающие районы создаются только для новых веток, поэтому ошибка не оставляет пустых районов.
func (b *TreeBuilder) AddRecord(tree *domain.Tree, rec domain.RouteRecord) error {
	if err := validator.ValidateRequest(rec); err != nil {
		return err
	}

	route, err := domain.NewRoute(
		rec.ID, rec.Name, rec.URL, rec.Grade, rec.RouteTypes,
		rec.Pitches, rec.Length, rec.Rating, rec.Popularity,
	)
	if err != nil {
		return err
	}

	crag, err := tree.FindOrCreatePath(rec.AreaPath)
	if err != nil {
		return err
	}
	if _, err := tree.AddRoute(crag, route); err != nil {
		return err
	}

	if c := rec.Coordinates; c != nil && utils.ValidateCoordinates(c.Lat, c.Lon) {
		area, _ := tree.Area(crag)
		area.SetCoordinates(*c)
	}
	return nil
}

// BuildTree строит дерево с корнем rootName. Некорректные записи пропускаются и попадают в отчет.
func (b *TreeBuilder) BuildTree(rootName string, records []domain.RouteRecord) (*domain.Tree, BuildReport) {
	tree := domain.NewTree(rootName)
	report := BuildReport{Records: len(records)}

	for _, rec := range records {
		if err := b.AddRecord(tree, rec); err != nil {
			b.logger.Debug("record skipped",
				zap.String("id", rec.ID),
				zap.String("name", rec.Name),
				zap.Error(err))
			report.skip(rec, err)
			continue
		}
		report.Added++
	}

	if report.Skipped > 0 {
		b.logger.Warn("some records were skipped",
			zap.String("root", rootName),
			zap.Int("skipped", report.Skipped),
			zap.Int("added", report.Added))
	}
	return tree, report
}

// BuildSubtree строит поддерево для последующего Graft
func (b *TreeBuilder) BuildSubtree(records []domain.RouteRecord) (*domain.Tree, BuildReport) {
	return b.BuildTree("", records)
}

// LoadRegion читает записи региона из источника и строит поддерево
func (b *TreeBuilder) LoadRegion(ctx context.Context, region string) (*domain.Tree, BuildReport, error) {
	records, err := b.routeRepo.GetRegionRecords(ctx, region)
	if err != nil {
		return nil, BuildReport{}, fmt.Errorf("load region %s: %w", region, err)
	}
	sub, report := b.BuildSubtree(records)

	b.logger.Info("region loaded",
		zap.String("region", region),
		zap.Int("routes", report.Added),
		zap.Int("skipped", report.Skipped))
	return sub, report, nil
}

// BuildRegions строит регионы параллельно (не более workers одновременно)
// и сливает их в одно дерево в порядке regions. Пустой список - все регионы источника.
func (b *TreeBuilder) BuildRegions(ctx context.Context, rootName string, regions []string) (*domain.Tree, BuildReport, error) {
	if len(regions) == 0 {
		available, err := b.routeRepo.ListRegions(ctx)
		if err != nil {
			return nil, BuildReport{}, fmt.Errorf("list regions: %w", err)
		}
		for _, r := range available {
			regions = append(regions, r.Name)
		}
	}

	subtrees := make([]*domain.Tree, len(regions))
	reports := make([]BuildReport, len(regions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, region := range regions {
		i, region := i, region
		g.Go(func() error {
			sub, report, err := b.LoadRegion(gctx, region)
			if err != nil {
				return err
			}
			subtrees[i] = sub
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, BuildReport{}, err
	}

	tree := domain.NewTree(rootName)
	var total BuildReport
	for i, sub := range subtrees {
		if err := tree.Graft(tree.RootID(), sub); err != nil {
			return nil, BuildReport{}, fmt.Errorf("merge region %s: %w", regions[i], err)
		}
		total.merge(reports[i])
	}

	b.logger.Info("tree built",
		zap.String("root", rootName),
		zap.Int("regions", len(regions)),
		zap.Int("routes", tree.NumRoutes()),
		zap.Int("areas", tree.NumAreas()),
		zap.Int("skipped", total.Skipped))
	return tree, total, nil
}

// Regions возвращает регионы источника
func (b *TreeBuilder) Regions(ctx context.Context) ([]domain.Region, error) {
	return b.routeRepo.ListRegions(ctx)
}
