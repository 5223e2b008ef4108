package flow_curve

import (
	"github.com/iwtcode/spiroBench/internal/interfaces"
	"gorm.io/gorm"
)

type FlowCurveRepositoryImpl struct {
	db *gorm.DB
}

func NewFlowCurveRepository(db *gorm.DB) interfaces.FlowCurveRepository {
	return &FlowCurveRepositoryImpl{db: db}
}
