package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/domain"
	"github.com/rock-radar/internal/domain/repository"
	apperrors "github.com/rock-radar/internal/pkg/errors"
)

type routeRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRouteRepository создает новый экземпляр route repository
func NewRouteRepository(db *DB, logger *zap.Logger) repository.RouteStore {
	return &routeRepository{
		db:     db,
		logger: logger,
	}
}

// routeRow - строка таблицы routes; массивы передаются через pq.StringArray
type routeRow struct {
	Region     string          `db:"region"`
	ID         string          `db:"id"`
	Name       string          `db:"name"`
	URL        string          `db:"url"`
	Grade      string          `db:"grade"`
	RouteTypes pq.StringArray  `db:"route_types"`
	Pitches    int             `db:"num_pitches"`
	Length     int             `db:"length"`
	Rating     float64         `db:"rating"`
	Popularity int             `db:"num_reviewers"`
	AreaPath   pq.StringArray  `db:"area_path"`
	Lat        sql.NullFloat64 `db:"lat"`
	Lon        sql.NullFloat64 `db:"lon"`
}

func newRouteRow(region string, rec domain.RouteRecord) routeRow {
	row := routeRow{
		Region:     region,
		ID:         rec.ID,
		Name:       rec.Name,
		URL:        rec.URL,
		Grade:      rec.Grade,
		RouteTypes: pq.StringArray(rec.RouteTypes),
		Pitches:    rec.Pitches,
		Length:     rec.Length,
		Rating:     rec.Rating,
		Popularity: rec.Popularity,
		AreaPath:   pq.StringArray(rec.AreaPath),
	}
	if row.RouteTypes == nil {
		row.RouteTypes = pq.StringArray{}
	}
	if rec.Coordinates != nil {
		row.Lat = nullFloat(&rec.Coordinates.Lat)
		row.Lon = nullFloat(&rec.Coordinates.Lon)
	}
	return row
}

func (r routeRow) record() domain.RouteRecord {
	rec := domain.RouteRecord{
		ID:         r.ID,
		Name:       r.Name,
		URL:        r.URL,
		Grade:      r.Grade,
		RouteTypes: []string(r.RouteTypes),
		Pitches:    r.Pitches,
		Length:     r.Length,
		Rating:     r.Rating,
		Popularity: r.Popularity,
		AreaPath:   []string(r.AreaPath),
	}
	if r.Lat.Valid && r.Lon.Valid {
		rec.Coordinates = &domain.LatLon{Lat: r.Lat.Float64, Lon: r.Lon.Float64}
	}
	return rec
}

// ListRegions возвращает регионы с количеством маршрутов
func (r *routeRepository) ListRegions(ctx context.Context) ([]domain.Region, error) {
	query := `
		SELECT g.name, COUNT(t.id) AS routes
		FROM regions g
		LEFT JOIN routes t ON t.region = g.name
		GROUP BY g.name
		ORDER BY g.name
	`

	var regions []domain.Region
	if err := r.db.SelectContext(ctx, &regions, query); err != nil {
		r.logger.Error("failed to list regions", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Errorf("list regions: %w", err))
	}
	return regions, nil
}

// GetRegionRecords возвращает записи маршрутов региона в порядке area_path, id
func (r *routeRepository) GetRegionRecords(ctx context.Context, region string) ([]domain.RouteRecord, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT true FROM regions WHERE name = $1`, region)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.ErrRegionNotFound, "region %q not found", region)
	}
	if err != nil {
		r.logger.Error("failed to check region", zap.String("region", region), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Errorf("check region: %w", err))
	}

	query := `
		SELECT region, id, name, url, grade, route_types, num_pitches, length,
		       rating, num_reviewers, area_path, lat, lon
		FROM routes
		WHERE region = $1
		ORDER BY area_path, id
	`

	var rows []routeRow
	if err := r.db.SelectContext(ctx, &rows, query, region); err != nil {
		r.logger.Error("failed to get region records", zap.String("region", region), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Errorf("get region records: %w", err))
	}

	records := make([]domain.RouteRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}

	r.logger.Debug("loaded region records",
		zap.String("region", region),
		zap.Int("count", len(records)))
	return records, nil
}

// SaveRegionRecords заменяет записи региона в одной транзакции
func (r *routeRepository) SaveRegionRecords(ctx context.Context, region string, records []domain.RouteRecord) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO regions (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET imported_at = now()
	`, region); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Errorf("upsert region: %w", err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM routes WHERE region = $1`, region); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Errorf("clear region: %w", err))
	}

	insert := `
		INSERT INTO routes (region, id, name, url, grade, route_types, num_pitches, length,
		                    rating, num_reviewers, area_path, lat, lon)
		VALUES (:region, :id, :name, :url, :grade, :route_types, :num_pitches, :length,
		        :rating, :num_reviewers, :area_path, :lat, :lon)
		ON CONFLICT (region, id) DO NOTHING
	`

	saved := 0
	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := make([]routeRow, 0, end-start)
		for _, rec := range records[start:end] {
			batch = append(batch, newRouteRow(region, rec))
		}

		res, err := tx.NamedExecContext(ctx, insert, batch)
		if err != nil {
			r.logger.Error("failed to insert routes",
				zap.String("region", region),
				zap.Int("batch_start", start),
				zap.Error(err))
			return 0, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Errorf("insert routes: %w", err))
		}
		n, _ := res.RowsAffected()
		saved += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabaseError, fmt.Errorf("commit: %w", err))
	}

	r.logger.Info("saved region records",
		zap.String("region", region),
		zap.Int("count", saved))
	return saved, nil
}
