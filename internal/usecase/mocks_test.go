package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rock-radar/internal/domain"
)

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

// MockRouteRepository is a mock of RouteRepository
type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) ListRegions(ctx context.Context) ([]domain.Region, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Region), args.Error(1)
}

func (m *MockRouteRepository) GetRegionRecords(ctx context.Context, region string) ([]domain.RouteRecord, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RouteRecord), args.Error(1)
}

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

func record(id, name, grade string, types []string, pitches, length int, rating float64, pop int, path ...string) domain.RouteRecord {
	return domain.RouteRecord{
		ID:         id,
		Name:       name,
		Grade:      grade,
		RouteTypes: types,
		Pitches:    pitches,
		Length:     length,
		Rating:     rating,
		Popularity: pop,
		AreaPath:   path,
	}
}

// usaRecords и canadaRecords: шесть маршрутов в трех crag
func usaRecords() []domain.RouteRecord {
	return []domain.RouteRecord{
		record("A", "A", "5.9", []string{"Trad"}, 1, 60, 3.5, 100, "USA", "California", "Joshua Tree"),
		record("B", "B", "5.10a", []string{"Sport"}, 1, 80, 2.0, 50, "USA", "California", "Joshua Tree"),
		record("C", "C", "5.11b", []string{"Sport", "Trad"}, 1, 100, 4.0, 10, "USA", "California", "Joshua Tree"),
		record("D", "D", "5.10b/c", []string{"Sport"}, 1, 90, 3.0, 200, "USA", "Nevada", "Red Rock"),
		record("E", "E", "5.12a", []string{"Top Rope"}, 1, 40, 0, 0, "USA", "Nevada", "Red Rock"),
	}
}

func canadaRecords() []domain.RouteRecord {
	return []domain.RouteRecord{
		record("F", "F", "5.10d", []string{"Trad"}, 3, 300, 3.8, 30, "Canada", "Squamish"),
	}
}
