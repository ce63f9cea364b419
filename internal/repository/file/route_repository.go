package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/domain"
	"github.com/rock-radar/internal/domain/repository"
	apperrors "github.com/rock-radar/internal/pkg/errors"
)

// DefaultPattern - файлы регионов в любом подкаталоге: data/us/Nevada.json
const DefaultPattern = "**/*.json"

type routeRepository struct {
	fsys    fs.FS
	pattern string
	logger  *zap.Logger
}

// NewRouteRepository создает репозиторий, читающий регионы из JSON-файлов каталога dir.
// Имя региона - имя файла без расширения.
func NewRouteRepository(dir string, logger *zap.Logger) repository.RouteRepository {
	return NewRouteRepositoryFS(os.DirFS(dir), DefaultPattern, logger)
}

// NewRouteRepositoryFS создает репозиторий поверх произвольной файловой системы
func NewRouteRepositoryFS(fsys fs.FS, pattern string, logger *zap.Logger) repository.RouteRepository {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &routeRepository{
		fsys:    fsys,
		pattern: pattern,
		logger:  logger,
	}
}

// regionFiles возвращает соответствие регион -> путь; при совпадении имен побеждает первый путь
func (r *routeRepository) regionFiles() (map[string]string, error) {
	matches, err := doublestar.Glob(r.fsys, r.pattern)
	if err != nil {
		return nil, fmt.Errorf("error evaluating pattern %s: %w", r.pattern, err)
	}
	sort.Strings(matches)

	files := make(map[string]string, len(matches))
	for _, match := range matches {
		name := strings.TrimSuffix(path.Base(match), path.Ext(match))
		if existing, ok := files[name]; ok {
			r.logger.Warn("duplicate region file ignored",
				zap.String("region", name),
				zap.String("used", existing),
				zap.String("ignored", match))
			continue
		}
		files[name] = match
	}
	return files, nil
}

func (r *routeRepository) ListRegions(ctx context.Context) ([]domain.Region, error) {
	files, err := r.regionFiles()
	if err != nil {
		return nil, err
	}

	regions := make([]domain.Region, 0, len(files))
	for name, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := r.readFile(file)
		if err != nil {
			return nil, err
		}
		regions = append(regions, domain.Region{Name: name, Routes: len(records)})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Name < regions[j].Name })
	return regions, nil
}

func (r *routeRepository) GetRegionRecords(ctx context.Context, region string) ([]domain.RouteRecord, error) {
	files, err := r.regionFiles()
	if err != nil {
		return nil, err
	}
	file, ok := files[region]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrRegionNotFound, "region %q not found", region)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := r.readFile(file)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded region records",
		zap.String("region", region),
		zap.String("file", file),
		zap.Int("count", len(records)))
	return records, nil
}

func (r *routeRepository) readFile(name string) ([]domain.RouteRecord, error) {
	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read region file %s: %w", name, err)
	}
	var records []domain.RouteRecord
	if err := json.Unmarshal(data, &records); err != nil {
		r.logger.Error("malformed region file", zap.String("file", name), zap.Error(err))
		return nil, fmt.Errorf("decode region file %s: %w", name, err)
	}
	return records, nil
}
