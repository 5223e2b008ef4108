package usecases

import "github.com/iwtcode/spiroBench/internal/interfaces"

// UseCases - агрегатор всех use case интерфейсов
type UseCases struct {
	interfaces.Usecases
}

// NewUsecases - конструктор для UseCases
func NewUsecases(
	benchSvc interfaces.BenchService,
	repo interfaces.FlowCurveRepository,
) interfaces.Usecases {
	return NewUsecase(benchSvc, repo)
}
