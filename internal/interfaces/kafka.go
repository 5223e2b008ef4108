package interfaces

import (
	"context"

	"github.com/iwtcode/spiroBench/internal/domain"
)

// KafkaService определяет контракт для отправки данных во внешние системы
type KafkaService interface {
	Produce(ctx context.Context, key, value []byte) error
	// Publish ставит событие в очередь без блокировки. false - очередь полна.
	Publish(event domain.BenchEvent) bool
	Close() error
}
