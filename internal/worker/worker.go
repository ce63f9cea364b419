package worker

import (
	"context"
)

// Worker - фоновый обработчик событий. Start блокируется до Stop или отмены ctx;
// после Stop должен вернуть nil.
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}
