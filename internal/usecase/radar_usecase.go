package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/domain"
	"github.com/rock-radar/internal/domain/repository"
	apperrors "github.com/rock-radar/internal/pkg/errors"
	"github.com/rock-radar/internal/usecase/dto"
)

const viewCachePrefix = "radar:view:"

// RadarUseCase владеет деревом и настройками ранжирования.
// Все изменения и пересчеты сериализуются одним мьютексом; неудачное изменение
// не меняет текущее состояние.
type RadarUseCase struct {
	mu          sync.RWMutex
	tree        *domain.Tree
	stats       domain.StatsContext
	keys        domain.SortKeys
	areaMetric  domain.AreaField
	routeMetric domain.RouteField
	snapshot    uuid.UUID

	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewRadarUseCase создает use case и выполняет первый расчет статистики и сортировку.
// cacheRepo может быть nil - тогда представления не кешируются.
func NewRadarUseCase(
	tree *domain.Tree,
	stats domain.StatsContext,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *RadarUseCase {
	uc := &RadarUseCase{
		tree:        tree,
		stats:       stats,
		keys:        domain.DefaultSortKeys(),
		areaMetric:  domain.AreaMatchingRoutes,
		routeMetric: domain.RouteGrade,
		cacheRepo:   cacheRepo,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
	uc.tree.InitStats(uc.stats)
	uc.tree.Sort(uc.keys)
	uc.snapshot = uuid.New()
	return uc
}

// SetFilter применяет изменения фильтра и пересчитывает статистику
func (uc *RadarUseCase) SetFilter(ctx context.Context, req dto.FilterRequest) (*dto.SettingsResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	filter := uc.stats.Filter.Clone()
	if req.LowerGrade != nil {
		if err := filter.SetLowerGrade(*req.LowerGrade); err != nil {
			return nil, err
		}
	}
	if req.UpperGrade != nil {
		if err := filter.SetUpperGrade(*req.UpperGrade); err != nil {
			return nil, err
		}
	}
	if req.MinLength != nil {
		filter.SetMinLength(*req.MinLength)
	}
	if req.MinPitches != nil {
		filter.SetMinPitches(*req.MinPitches)
	}
	switch {
	case req.AllRouteTypes:
		filter.SetRouteTypes(nil)
	case req.RouteTypes != nil:
		filter.SetRouteTypes(req.RouteTypes)
	}

	uc.stats.Filter = filter
	uc.logger.Info("filter updated", zap.String("filter", filter.String()))
	uc.recalculate(ctx)
	return uc.settings(), nil
}

// SetRankingModel выбирает модель ранжирования и пересчитывает статистику
func (uc *RadarUseCase) SetRankingModel(ctx context.Context, req dto.ModelRequest) (*dto.SettingsResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	model := uc.stats.Model.Clone()
	if err := model.SetModel(req.Model, req.Params...); err != nil {
		return nil, err
	}

	uc.stats.Model = model
	uc.logger.Info("ranking model updated",
		zap.String("model", string(model.Model())),
		zap.Float64s("params", req.Params))
	uc.recalculate(ctx)
	return uc.settings(), nil
}

// SetSortKeys меняет ключи сортировки и пересортировывает дерево
func (uc *RadarUseCase) SetSortKeys(ctx context.Context, req dto.SortRequest) (*dto.SettingsResponse, error) {
	keys, err := domain.ParseSortKeys(req.NodePrimary, req.NodeSecondary, req.LeafPrimary, req.LeafSecondary)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.keys = keys
	uc.tree.Sort(keys)
	uc.rotateSnapshot(ctx)
	return uc.settings(), nil
}

// SetMetrics меняет отображаемые метрики; пустое имя оставляет текущую
func (uc *RadarUseCase) SetMetrics(ctx context.Context, req dto.MetricsRequest) (*dto.SettingsResponse, error) {
	var (
		areaMetric  *domain.AreaField
		routeMetric *domain.RouteField
	)
	if req.AreaMetric != "" {
		f, err := domain.ParseAreaField(req.AreaMetric)
		if err != nil {
			return nil, err
		}
		areaMetric = &f
	}
	if req.RouteMetric != "" {
		f, err := domain.ParseRouteField(req.RouteMetric)
		if err != nil {
			return nil, err
		}
		routeMetric = &f
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if areaMetric != nil {
		uc.areaMetric = *areaMetric
	}
	if routeMetric != nil {
		uc.routeMetric = *routeMetric
	}
	uc.rotateSnapshot(ctx)
	return uc.settings(), nil
}

// Refresh пересчитывает статистику и сортировку с текущими настройками и
// возвращает корень того же snapshot, что и настройки
func (uc *RadarUseCase) Refresh(ctx context.Context) *dto.RefreshResponse {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.recalculate(ctx)
	root := uc.areaView(uc.tree.Root())
	uc.cacheSet(ctx, uc.areaKey(root.ID), root)
	return &dto.RefreshResponse{
		Settings: uc.settings(),
		Root:     root,
	}
}

// Merge вливает поддерево в корень, затем заново считает статистику и сортирует
func (uc *RadarUseCase) Merge(ctx context.Context, sub *domain.Tree) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	before := uc.tree.NumRoutes()
	if err := uc.tree.Graft(uc.tree.RootID(), sub); err != nil {
		return err
	}
	uc.tree.InitStats(uc.stats)
	uc.tree.Sort(uc.keys)
	uc.rotateSnapshot(ctx)

	uc.logger.Info("subtree merged",
		zap.Int("new_routes", uc.tree.NumRoutes()-before),
		zap.Int("total_routes", uc.tree.NumRoutes()))
	return nil
}

// MoveArea переносит район под другого родителя и возвращает нового родителя.
// При ошибке дерево не меняется.
func (uc *RadarUseCase) MoveArea(ctx context.Context, id, parent domain.AreaID) (*dto.AreaView, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.tree.Reparent(id, parent); err != nil {
		return nil, err
	}
	uc.tree.InitStats(uc.stats)
	uc.tree.Sort(uc.keys)
	uc.rotateSnapshot(ctx)

	uc.logger.Info("area moved",
		zap.Int("area_id", int(id)),
		zap.Int("parent_id", int(parent)))

	area, _ := uc.tree.Area(parent)
	return uc.areaView(area), nil
}

// recalculate - вызывается под uc.mu
func (uc *RadarUseCase) recalculate(ctx context.Context) {
	start := time.Now()
	uc.tree.CalculateStats(uc.stats)
	uc.tree.Sort(uc.keys)
	uc.rotateSnapshot(ctx)

	root := uc.tree.Root()
	uc.logger.Debug("stats recalculated",
		zap.Int("matching_routes", root.Stats.MatchingRoutes),
		zap.Int("unscored", root.Stats.Unscored),
		zap.Duration("took", time.Since(start)))
}

// rotateSnapshot - вызывается под uc.mu. Новый snapshot делает старые ключи кеша недостижимыми.
func (uc *RadarUseCase) rotateSnapshot(ctx context.Context) {
	old := uc.snapshot
	uc.snapshot = uuid.New()

	if uc.cacheRepo == nil {
		return
	}
	if _, err := uc.cacheRepo.DeleteByPrefix(ctx, viewCachePrefix+old.String()); err != nil {
		uc.logger.Warn("Failed to invalidate view cache", zap.Error(err))
	}
}

// Settings возвращает текущие настройки
func (uc *RadarUseCase) Settings(ctx context.Context) *dto.SettingsResponse {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.settings()
}

func (uc *RadarUseCase) settings() *dto.SettingsResponse {
	f := uc.stats.Filter
	m := uc.stats.Model
	return &dto.SettingsResponse{
		Filter: dto.FilterView{
			LowerGrade: f.LowerGrade().String(),
			UpperGrade: f.UpperGrade().String(),
			MinLength:  f.MinLength(),
			MinPitches: f.MinPitches(),
			RouteTypes: f.RouteTypes(),
		},
		Model: dto.ModelView{
			Model:            string(m.Model()),
			TargetPopularity: m.TargetPopularity(),
			Trust:            m.Trust(),
		},
		Sort:        uc.keys,
		AreaMetric:  uc.areaMetric.String(),
		RouteMetric: uc.routeMetric.String(),
		Snapshot:    uc.snapshot.String(),
	}
}

// Options возвращает допустимые значения настроек
func (uc *RadarUseCase) Options(ctx context.Context) *dto.OptionsResponse {
	uc.mu.RLock()
	routeTypes := uc.tree.RouteTypes()
	uc.mu.RUnlock()

	models := make([]string, 0, len(domain.Models()))
	for _, m := range domain.Models() {
		models = append(models, string(m))
	}

	grades := make([]string, 0)
	for _, g := range domain.AllCommonGrades() {
		grades = append(grades, g.String())
	}

	return &dto.OptionsResponse{
		NodeSortKeys: domain.AreaFieldTitles(),
		LeafSortKeys: domain.RouteFieldTitles(),
		Models:       models,
		RouteTypes:   routeTypes,
		Grades:       grades,
	}
}

// GetArea возвращает представление района; id корня - RootID
func (uc *RadarUseCase) GetArea(ctx context.Context, id domain.AreaID) (*dto.AreaView, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	key := uc.areaKey(int(id))
	var view dto.AreaView
	if uc.cacheGet(ctx, key, &view) {
		return &view, nil
	}

	area, ok := uc.tree.Area(id)
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrAreaNotFound, "area %d not found", id)
	}
	built := uc.areaView(area)
	uc.cacheSet(ctx, key, built)
	return built, nil
}

// GetAreaByPath ищет район по пути от корня
func (uc *RadarUseCase) GetAreaByPath(ctx context.Context, path []string) (*dto.AreaView, error) {
	uc.mu.RLock()
	id, ok := uc.tree.FindPath(path)
	uc.mu.RUnlock()
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrAreaNotFound, "area %v not found", path)
	}
	return uc.GetArea(ctx, id)
}

// RootID возвращает индекс корня дерева
func (uc *RadarUseCase) RootID() domain.AreaID {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.tree.RootID()
}

// areaKey - ключ кеша представления района в текущем snapshot
func (uc *RadarUseCase) areaKey(id int) string {
	return fmt.Sprintf("%s%s:area:%d", viewCachePrefix, uc.snapshot, id)
}

func (uc *RadarUseCase) areaView(area *domain.Area) *dto.AreaView {
	view := &dto.AreaView{
		ID:          int(area.ID),
		Name:        area.Name,
		Path:        uc.tree.Path(area.ID),
		IsCrag:      area.IsLeafParent(),
		TotalRoutes: area.TotalRoutes,
		Stats:       area.Stats,
		Coordinates: area.Coordinates(),
	}
	if parent, ok := uc.tree.Parent(area.ID); ok {
		pid := int(parent.ID)
		view.ParentID = &pid
	}

	if area.IsLeafParent() {
		view.Metric = uc.routeMetric.String()
		for _, r := range uc.tree.Routes(area.ID) {
			view.Routes = append(view.Routes, dto.RouteChild{
				ID:      int(r.ID),
				Label:   r.Label(),
				Grade:   r.Grade.String(),
				Matches: r.Matches,
				Value:   uc.routeMetric.Value(r),
			})
		}
		return view
	}

	view.Metric = uc.areaMetric.String()
	for _, sub := range uc.tree.SubAreas(area.ID) {
		view.SubAreas = append(view.SubAreas, dto.AreaChild{
			ID:             int(sub.ID),
			Name:           sub.Name,
			TotalRoutes:    sub.TotalRoutes,
			MatchingRoutes: sub.Stats.MatchingRoutes,
			Value:          uc.areaMetric.Value(sub),
		})
	}
	return view
}

// GetRoute возвращает подробности маршрута
func (uc *RadarUseCase) GetRoute(ctx context.Context, id domain.RouteID) (*dto.RouteView, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	r, ok := uc.tree.Route(id)
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrRouteNotFound, "route %d not found", id)
	}
	return &dto.RouteView{
		ID:         int(r.ID),
		SourceID:   r.SourceID,
		Name:       r.Name,
		Label:      r.Label(),
		URL:        r.URL,
		Grade:      r.Grade.String(),
		RouteTypes: r.RouteTypes,
		Pitches:    r.Pitches,
		Length:     r.Length,
		Rating:     r.Rating,
		Popularity: r.Popularity,
		Matches:    r.Matches,
		Scored:     r.Scored,
		Score:      r.Score,
		CragID:     int(r.Crag),
		Path:       uc.tree.Path(r.Crag),
	}, nil
}

func (uc *RadarUseCase) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if uc.cacheRepo == nil {
		return false
	}
	data, err := uc.cacheRepo.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("Failed to get view from cache", zap.String("key", key), zap.Error(err))
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		uc.logger.Warn("Failed to unmarshal cached view", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (uc *RadarUseCase) cacheSet(ctx context.Context, key string, value interface{}) {
	if uc.cacheRepo == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		uc.logger.Warn("Failed to marshal view", zap.Error(err))
		return
	}
	if err := uc.cacheRepo.Set(ctx, key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache view", zap.String("key", key), zap.Error(err))
	}
}

// TotalRoutes возвращает число маршрутов в дереве
func (uc *RadarUseCase) TotalRoutes() int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.tree.NumRoutes()
}
