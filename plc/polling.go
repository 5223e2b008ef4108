package plc

import (
	"context"
	"time"

	"github.com/iwtcode/spiroBench/models"
)

// PollingResult содержит статус или ошибку одной попытки опроса.
type PollingResult struct {
	Status models.ControllerStatus
	Time   time.Time
	Err    error
}

// StartPolling периодически читает блок статуса и отдает результаты в канал.
// Опрос прекращается при отмене контекста, канал при этом закрывается.
// Если потребитель не успевает, результат тика отбрасывается.
func (a *Adapter) StartPolling(ctx context.Context, interval time.Duration) <-chan PollingResult {
	results := make(chan PollingResult, 1)

	go func() {
		defer close(results)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				a.logger.Debug("status polling stopped")
				return
			case now := <-ticker.C:
				status, err := a.ReadStatus()
				select {
				case results <- PollingResult{Status: status, Time: now, Err: err}:
				case <-ctx.Done():
					return
				default:
				}
			}
		}
	}()

	return results
}
