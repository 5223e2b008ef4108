package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iwtcode/spiroBench/curvesim"
	"github.com/iwtcode/spiroBench/internal/domain/entities"
	"github.com/iwtcode/spiroBench/internal/domain/models"
	benchmodels "github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/supervisor"
)

const dbTimeout = 5 * time.Second

func (u *Usecase) ListCurves() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	return u.repo.Names(ctx)
}

func (u *Usecase) GetCurve(name string) (*models.CurveResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	row, err := u.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return &models.CurveResponse{Status: "ok", Curve: row.Curve(), Metadata: row.Metadata()}, nil
}

func (u *Usecase) ImportCurve(req models.CurveImportRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperr.Validation("import curve", "name is empty")
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	curve := benchmodels.FlowVolumeCurve{Name: name, Points: req.Points}
	return u.repo.Create(ctx, entities.NewFlowCurve(curve, req.Metadata, entities.SourceImported))
}

func (u *Usecase) DeleteCurve(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	return u.repo.Delete(ctx, name)
}

// Synthesize строит кривую по данным пациента и при необходимости сохраняет ее
// под уникальным именем.
func (u *Usecase) Synthesize(req models.SynthesizeRequest) (*models.SynthesizeResponse, error) {
	sex, err := curvesim.ParseSex(req.Sex)
	if err != nil {
		return nil, err
	}
	patient := curvesim.Patient{
		Age:       req.Age,
		HeightCm:  req.HeightCm,
		WeightKg:  req.WeightKg,
		Sex:       sex,
		Smoker:    req.Smoker,
		Pathology: req.Pathology,
	}
	res, err := curvesim.Synthesize(patient)
	if err != nil {
		return nil, err
	}

	resp := &models.SynthesizeResponse{Status: "ok", Result: res}
	if !req.Save {
		return resp, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	names, err := u.repo.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список кривых: %w", err)
	}
	base := strings.TrimSpace(req.Name)
	if base == "" {
		base = patient.Pathology
	}
	if base == "" {
		base = curvesim.PathologyNone
	}
	name := supervisor.UniqueName(base, names)

	res.Curve.Name = name
	meta := curvesim.Metadata(req.Name, req.DocumentID, patient)
	if err := u.repo.Create(ctx, entities.NewFlowCurve(res.Curve, meta, entities.SourceSynthesized)); err != nil {
		return nil, err
	}
	resp.Result = res
	resp.Saved = true
	return resp, nil
}
