package flow_curve

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwtcode/spiroBench/internal/domain/entities"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"gorm.io/gorm"
)

func (r *FlowCurveRepositoryImpl) Create(ctx context.Context, curve *entities.FlowCurve) error {
	err := r.db.WithContext(ctx).Create(curve).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.New(apperr.ErrAlreadyExists, "create curve", fmt.Sprintf("curve %q already exists", curve.Name), err)
	}
	return err
}

func (r *FlowCurveRepositoryImpl) GetByName(ctx context.Context, name string) (*entities.FlowCurve, error) {
	var curve entities.FlowCurve
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&curve).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.ErrNotFound, "get curve", fmt.Sprintf("curve %q not found", name), err)
	}
	if err != nil {
		return nil, err
	}
	return &curve, nil
}

// Names возвращает имена всех кривых в алфавитном порядке
func (r *FlowCurveRepositoryImpl) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&entities.FlowCurve{}).Order("name").Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *FlowCurveRepositoryImpl) Delete(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Where("name = ?", name).Delete(&entities.FlowCurve{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "delete curve", fmt.Sprintf("curve %q not found", name), gorm.ErrRecordNotFound)
	}
	return nil
}
