package interfaces

import (
	"context"

	"github.com/iwtcode/spiroBench/internal/domain/entities"
)

// FlowCurveRepository определяет контракт для работы с кривыми в БД
type FlowCurveRepository interface {
	Create(ctx context.Context, curve *entities.FlowCurve) error
	GetByName(ctx context.Context, name string) (*entities.FlowCurve, error)
	Names(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}
