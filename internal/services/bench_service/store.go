package bench_service

import (
	"context"
	"time"

	"github.com/iwtcode/spiroBench/internal/domain/entities"
	"github.com/iwtcode/spiroBench/internal/interfaces"
	"github.com/iwtcode/spiroBench/models"
)

const storeTimeout = 3 * time.Second

// curveStore адаптирует репозиторий кривых к supervisor.CurveStore.
// Сохраняются только кривые, снятые на стенде.
type curveStore struct {
	repo    interfaces.FlowCurveRepository
	timeout time.Duration
}

func newCurveStore(repo interfaces.FlowCurveRepository) *curveStore {
	return &curveStore{repo: repo, timeout: storeTimeout}
}

func (s *curveStore) Lookup(name string) (models.FlowVolumeCurve, models.CurveMetadata, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	row, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return models.FlowVolumeCurve{}, models.CurveMetadata{}, err
	}
	return row.Curve(), row.Metadata(), nil
}

func (s *curveStore) Save(name string, curve models.FlowVolumeCurve, meta models.CurveMetadata) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	curve.Name = name
	return s.repo.Create(ctx, entities.NewFlowCurve(curve, meta, entities.SourceCaptured))
}

func (s *curveStore) Names() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.repo.Names(ctx)
}
