package domain

import (
	"time"

	"github.com/iwtcode/spiroBench/models"
)

// Типы сообщений, отправляемых в Kafka.
const (
	EventTelemetry = "telemetry"
	EventLog       = "log"
	EventStatus    = "status"
)

// BenchEvent - конверт сообщения о работе стенда для Kafka и websocket.
type BenchEvent struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	SessionID string            `json:"session_id,omitempty"`
	Message   string            `json:"message,omitempty"`
	Telemetry *models.Telemetry `json:"telemetry,omitempty"`
}

// Key возвращает ключ партиционирования сообщения.
func (e BenchEvent) Key() []byte {
	if e.SessionID != "" {
		return []byte(e.SessionID)
	}
	return []byte(e.Type)
}
