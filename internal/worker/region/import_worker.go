package region

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rock-radar/internal/domain"
	"github.com/rock-radar/internal/domain/repository"
	apperrors "github.com/rock-radar/internal/pkg/errors"
	"github.com/rock-radar/internal/usecase/dto"
	"github.com/rock-radar/internal/worker"
)

const retryDelay = 500 * time.Millisecond

// Importer загружает регион в дерево
type Importer interface {
	Import(ctx context.Context, region string) (*dto.ImportResponse, error)
}

// ImportWorker обрабатывает события загрузки регионов из stream:region:import
type ImportWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	importer     Importer
	consumerName string
	maxRetries   int
}

// NewImportWorker создает новый ImportWorker
func NewImportWorker(
	streamRepo repository.StreamRepository,
	importer Importer,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *ImportWorker {
	hostname, _ := os.Hostname()
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &ImportWorker{
		BaseWorker:   worker.NewBaseWorker("region-import", consumerGroup, logger),
		streamRepo:   streamRepo,
		importer:     importer,
		consumerName: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		maxRetries:   maxRetries,
	}
}

// Start запускает воркер и блокируется до остановки
func (w *ImportWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting ImportWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamRegionImport, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := w.WithStop(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(ctx, domain.StreamRegionImport, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			if w.IsStopped() {
				logger.Info("Worker stopped")
				return nil
			}
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream closed")
				return nil
			}
			w.handle(ctx, msg)
		}
	}
}

// handle обрабатывает одно сообщение. Битые сообщения подтверждаются, чтобы не застревали.
func (w *ImportWorker) handle(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	var event domain.RegionImportEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil || event.Region == "" {
		logger.Warn("Failed to parse message, skipping", zap.Error(err))
		w.ack(ctx, msg.ID)
		return
	}

	done := w.process(ctx, event)
	if err := w.streamRepo.PublishToStream(ctx, domain.StreamRegionDone, done); err != nil {
		logger.Error("Failed to publish done event",
			zap.String("region", event.Region),
			zap.Error(err))
	}
	w.ack(ctx, msg.ID)
}

// process выполняет загрузку с повторами. Клиентские ошибки (4xx) не повторяются.
func (w *ImportWorker) process(ctx context.Context, event domain.RegionImportEvent) domain.RegionDoneEvent {
	done := domain.RegionDoneEvent{
		EventID: event.EventID,
		Region:  event.Region,
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		resp, err := w.importer.Import(ctx, event.Region)
		if err == nil {
			done.Routes = resp.Routes
			done.TotalRoutes = resp.TotalRoutes
			return done
		}
		lastErr = err

		if appErr, ok := apperrors.As(err); ok && appErr.StatusCode < 500 {
			break
		}
		w.Logger().Warn("Region import failed, retrying",
			zap.String("region", event.Region),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < w.maxRetries {
			select {
			case <-time.After(retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				done.Error = ctx.Err().Error()
				return done
			}
		}
	}

	w.Logger().Error("Region import failed",
		zap.String("region", event.Region),
		zap.Error(lastErr))
	done.Error = lastErr.Error()
	return done
}

func (w *ImportWorker) ack(ctx context.Context, id string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamRegionImport, w.ConsumerGroup(), id); err != nil {
		w.Logger().Error("Failed to ack message", zap.String("message_id", id), zap.Error(err))
	}
}
