package repository

import (
	"context"

	"github.com/rock-radar/internal/domain"
)

// RouteRepository - источник записей маршрутов, сгруппированных по регионам
type RouteRepository interface {
	// ListRegions возвращает регионы источника с количеством маршрутов
	ListRegions(ctx context.Context) ([]domain.Region, error)

	// GetRegionRecords возвращает записи маршрутов региона.
	// Для неизвестного региона возвращается ErrRegionNotFound.
	GetRegionRecords(ctx context.Context, region string) ([]domain.RouteRecord, error)
}

// RouteStore - источник, в который можно записывать регионы (используется при загрузке данных)
type RouteStore interface {
	RouteRepository

	// SaveRegionRecords заменяет записи региона
	SaveRegionRecords(ctx context.Context, region string, records []domain.RouteRecord) (int, error)
}
