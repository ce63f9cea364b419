package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/domain"
	"github.com/rock-radar/internal/domain/repository"
	apperrors "github.com/rock-radar/internal/pkg/errors"
	"github.com/rock-radar/internal/usecase/dto"
)

// RegionUseCase загружает регионы источника в дерево во время работы
type RegionUseCase struct {
	builder    *TreeBuilder
	radar      *RadarUseCase
	streamRepo repository.StreamRepository
	logger     *zap.Logger

	mu     sync.Mutex
	loaded map[string]bool
}

// NewRegionUseCase создает новый экземпляр RegionUseCase.
// streamRepo может быть nil - тогда асинхронная загрузка недоступна.
func NewRegionUseCase(
	builder *TreeBuilder,
	radar *RadarUseCase,
	streamRepo repository.StreamRepository,
	logger *zap.Logger,
) *RegionUseCase {
	return &RegionUseCase{
		builder:    builder,
		radar:      radar,
		streamRepo: streamRepo,
		logger:     logger,
		loaded:     make(map[string]bool),
	}
}

// MarkLoaded отмечает регионы, уже входящие в дерево
func (uc *RegionUseCase) MarkLoaded(regions ...string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for _, r := range regions {
		uc.loaded[r] = true
	}
}

func (uc *RegionUseCase) isLoaded(region string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.loaded[region]
}

// List возвращает все регионы источника с признаком загрузки
func (uc *RegionUseCase) List(ctx context.Context) ([]dto.RegionView, error) {
	regions, err := uc.builder.Regions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}

	views := make([]dto.RegionView, 0, len(regions))
	for _, r := range regions {
		views = append(views, dto.RegionView{
			Name:   r.Name,
			Routes: r.Routes,
			Loaded: uc.isLoaded(r.Name),
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views, nil
}

// Available возвращает регионы источника, еще не загруженные в дерево
func (uc *RegionUseCase) Available(ctx context.Context) ([]dto.RegionView, error) {
	all, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]dto.RegionView, 0, len(all))
	for _, r := range all {
		if !r.Loaded {
			available = append(available, r)
		}
	}
	return available, nil
}

// Import строит поддерево региона и вливает его в дерево.
// Повторная загрузка безопасна: районы объединяются по имени, известные маршруты пропускаются.
func (uc *RegionUseCase) Import(ctx context.Context, region string) (*dto.ImportResponse, error) {
	sub, report, err := uc.builder.LoadRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	before := uc.radar.TotalRoutes()
	if err := uc.radar.Merge(ctx, sub); err != nil {
		return nil, fmt.Errorf("merge region %s: %w", region, err)
	}
	total := uc.radar.TotalRoutes()
	uc.MarkLoaded(region)

	uc.logger.Info("region imported",
		zap.String("region", region),
		zap.Int("new_routes", total-before),
		zap.Int("skipped", report.Skipped))

	return &dto.ImportResponse{
		Region:      region,
		Routes:      total - before,
		Skipped:     report.Skipped,
		TotalRoutes: total,
	}, nil
}

// RequestImport ставит загрузку региона в очередь через стрим
func (uc *RegionUseCase) RequestImport(ctx context.Context, region string) (*dto.ImportResponse, error) {
	if uc.streamRepo == nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidRequest, "asynchronous import is disabled")
	}

	event := domain.RegionImportEvent{
		EventID:     uuid.New(),
		Region:      region,
		RequestedAt: time.Now().UTC(),
	}
	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamRegionImport, event); err != nil {
		return nil, fmt.Errorf("queue region import: %w", err)
	}

	uc.logger.Info("region import queued",
		zap.String("region", region),
		zap.String("event_id", event.EventID.String()))

	return &dto.ImportResponse{
		Region:  region,
		Queued:  true,
		EventID: event.EventID.String(),
	}, nil
}
