package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamRegionImport = "stream:region:import"
	StreamRegionDone   = "stream:region:done"
)

// RegionImportEvent - запрос на загрузку региона в дерево
type RegionImportEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	Region      string    `json:"region"`
	RequestedAt time.Time `json:"requested_at"`
}

// RegionDoneEvent - результат загрузки региона
type RegionDoneEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	Region      string    `json:"region"`
	Routes      int       `json:"routes"`
	TotalRoutes int       `json:"total_routes"`
	Error       string    `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
