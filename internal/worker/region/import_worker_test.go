package region_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/domain"
	apperrors "github.com/rock-radar/internal/pkg/errors"
	"github.com/rock-radar/internal/usecase/dto"
	"github.com/rock-radar/internal/worker/region"
)

const group = "radar-workers"

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

// MockImporter is a mock of region Importer
type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Import(ctx context.Context, name string) (*dto.ImportResponse, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ImportResponse), args.Error(1)
}

// feed возвращает закрытый канал с заданными сообщениями
func feed(msgs ...domain.StreamMessage) <-chan domain.StreamMessage {
	ch := make(chan domain.StreamMessage, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	close(ch)
	return ch
}

func importMessage(t *testing.T, id string, event domain.RegionImportEvent) domain.StreamMessage {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

func doneEvent(fn func(domain.RegionDoneEvent) bool) interface{} {
	return mock.MatchedBy(func(data interface{}) bool {
		ev, ok := data.(domain.RegionDoneEvent)
		return ok && fn(ev)
	})
}

func TestImportWorker_Name(t *testing.T) {
	w := region.NewImportWorker(&MockStreamRepository{}, &MockImporter{}, group, 3, zap.NewNop())
	assert.Equal(t, "region-import", w.Name())
	assert.Equal(t, group, w.ConsumerGroup())
}

func TestImportWorker_ImportsRegion(t *testing.T) {
	stream := &MockStreamRepository{}
	importer := &MockImporter{}
	event := domain.RegionImportEvent{EventID: uuid.New(), Region: "canada", RequestedAt: time.Now()}

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamRegionImport, group).Return(nil)
	stream.On("ConsumeStream", mock.Anything, domain.StreamRegionImport, group, mock.Anything).
		Return(feed(importMessage(t, "1-0", event)), nil)
	importer.On("Import", mock.Anything, "canada").
		Return(&dto.ImportResponse{Region: "canada", Routes: 1, TotalRoutes: 6}, nil).Once()
	stream.On("PublishToStream", mock.Anything, domain.StreamRegionDone, doneEvent(func(ev domain.RegionDoneEvent) bool {
		return ev.EventID == event.EventID && ev.Region == "canada" &&
			ev.Routes == 1 && ev.TotalRoutes == 6 && ev.Error == ""
	})).Return(nil).Once()
	stream.On("AckMessage", mock.Anything, domain.StreamRegionImport, group, "1-0").Return(nil).Once()

	w := region.NewImportWorker(stream, importer, group, 3, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))

	stream.AssertExpectations(t)
	importer.AssertExpectations(t)
}

func TestImportWorker_InvalidMessageIsAcked(t *testing.T) {
	stream := &MockStreamRepository{}
	importer := &MockImporter{}

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamRegionImport, group).Return(nil)
	stream.On("ConsumeStream", mock.Anything, domain.StreamRegionImport, group, mock.Anything).
		Return(feed(
			domain.StreamMessage{ID: "1-0", Data: "not json"},
			domain.StreamMessage{ID: "2-0", Data: `{"region":""}`},
		), nil)
	stream.On("AckMessage", mock.Anything, domain.StreamRegionImport, group, "1-0").Return(nil).Once()
	stream.On("AckMessage", mock.Anything, domain.StreamRegionImport, group, "2-0").Return(nil).Once()

	w := region.NewImportWorker(stream, importer, group, 3, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))

	stream.AssertExpectations(t)
	stream.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	importer.AssertNotCalled(t, "Import", mock.Anything, mock.Anything)
}

func TestImportWorker_ClientErrorIsNotRetried(t *testing.T) {
	stream := &MockStreamRepository{}
	importer := &MockImporter{}
	event := domain.RegionImportEvent{EventID: uuid.New(), Region: "atlantis"}

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamRegionImport, group).Return(nil)
	stream.On("ConsumeStream", mock.Anything, domain.StreamRegionImport, group, mock.Anything).
		Return(feed(importMessage(t, "1-0", event)), nil)
	importer.On("Import", mock.Anything, "atlantis").
		Return(nil, apperrors.Newf(apperrors.ErrRegionNotFound, "region %s", "atlantis")).Once()
	stream.On("PublishToStream", mock.Anything, domain.StreamRegionDone, doneEvent(func(ev domain.RegionDoneEvent) bool {
		return ev.Region == "atlantis" && ev.Error != ""
	})).Return(nil).Once()
	stream.On("AckMessage", mock.Anything, domain.StreamRegionImport, group, "1-0").Return(nil).Once()

	w := region.NewImportWorker(stream, importer, group, 3, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))

	stream.AssertExpectations(t)
	importer.AssertNumberOfCalls(t, "Import", 1)
}

func TestImportWorker_TransientErrorIsRetried(t *testing.T) {
	stream := &MockStreamRepository{}
	importer := &MockImporter{}
	event := domain.RegionImportEvent{EventID: uuid.New(), Region: "usa"}

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamRegionImport, group).Return(nil)
	stream.On("ConsumeStream", mock.Anything, domain.StreamRegionImport, group, mock.Anything).
		Return(feed(importMessage(t, "1-0", event)), nil)
	importer.On("Import", mock.Anything, "usa").
		Return(nil, errors.New("connection reset")).Once()
	importer.On("Import", mock.Anything, "usa").
		Return(&dto.ImportResponse{Region: "usa", Routes: 5, TotalRoutes: 5}, nil).Once()
	stream.On("PublishToStream", mock.Anything, domain.StreamRegionDone, doneEvent(func(ev domain.RegionDoneEvent) bool {
		return ev.Routes == 5 && ev.Error == ""
	})).Return(nil).Once()
	stream.On("AckMessage", mock.Anything, domain.StreamRegionImport, group, "1-0").Return(nil).Once()

	w := region.NewImportWorker(stream, importer, group, 2, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))

	stream.AssertExpectations(t)
	importer.AssertNumberOfCalls(t, "Import", 2)
}

func TestImportWorker_ConsumerGroupError(t *testing.T) {
	stream := &MockStreamRepository{}
	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamRegionImport, group).
		Return(errors.New("redis down"))

	w := region.NewImportWorker(stream, &MockImporter{}, group, 1, zap.NewNop())
	err := w.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	stream.AssertNotCalled(t, "ConsumeStream", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImportWorker_Stop(t *testing.T) {
	stream := &MockStreamRepository{}
	var idle <-chan domain.StreamMessage = make(chan domain.StreamMessage)

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamRegionImport, group).Return(nil)
	stream.On("ConsumeStream", mock.Anything, domain.StreamRegionImport, group, mock.Anything).Return(idle, nil)

	w := region.NewImportWorker(stream, &MockImporter{}, group, 1, zap.NewNop())

	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.True(t, w.IsStopped())
}

func TestImportWorker_ContextCancel(t *testing.T) {
	stream := &MockStreamRepository{}
	var idle <-chan domain.StreamMessage = make(chan domain.StreamMessage)

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamRegionImport, group).Return(nil)
	stream.On("ConsumeStream", mock.Anything, domain.StreamRegionImport, group, mock.Anything).Return(idle, nil)

	w := region.NewImportWorker(stream, &MockImporter{}, group, 1, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, w.Start(ctx), context.Canceled)
}
