package usecases

import (
	"context"
	"sort"
	"testing"

	"github.com/iwtcode/spiroBench/internal/domain/entities"
	"github.com/iwtcode/spiroBench/internal/domain/models"
	benchmodels "github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	curves map[string]*entities.FlowCurve
}

func newMemRepo() *memRepo {
	return &memRepo{curves: map[string]*entities.FlowCurve{}}
}

func (r *memRepo) Create(ctx context.Context, c *entities.FlowCurve) error {
	if _, ok := r.curves[c.Name]; ok {
		return apperr.ErrAlreadyExists
	}
	r.curves[c.Name] = c
	return nil
}

func (r *memRepo) GetByName(ctx context.Context, name string) (*entities.FlowCurve, error) {
	c, ok := r.curves[name]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

func (r *memRepo) Names(ctx context.Context) ([]string, error) {
	var names []string
	for n := range r.curves {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (r *memRepo) Delete(ctx context.Context, name string) error {
	if _, ok := r.curves[name]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.curves, name)
	return nil
}

func TestSynthesizeSavesUniqueName(t *testing.T) {
	repo := newMemRepo()
	u := &Usecase{repo: repo}
	req := models.SynthesizeRequest{
		Age: 50, HeightCm: 170, Sex: "F", Pathology: "Asma", DocumentID: "12345678Z", Save: true,
	}

	first, err := u.Synthesize(req)
	require.NoError(t, err)
	require.True(t, first.Saved)
	require.Equal(t, "Asma_1", first.Result.Curve.Name)

	second, err := u.Synthesize(req)
	require.NoError(t, err)
	require.Equal(t, "Asma_2", second.Result.Curve.Name)

	row := repo.curves["Asma_1"]
	require.Equal(t, entities.SourceSynthesized, row.Source)
	require.Equal(t, "Asma", row.Pathology)
	require.Equal(t, "12345678Z", row.DocumentID)
	require.Equal(t, 170.0, row.HeightCm)
}

func TestSynthesizeWithoutSave(t *testing.T) {
	repo := newMemRepo()
	u := &Usecase{repo: repo}

	resp, err := u.Synthesize(models.SynthesizeRequest{Age: 30, HeightCm: 180, Sex: "M"})
	require.NoError(t, err)
	require.False(t, resp.Saved)
	require.Empty(t, repo.curves)
	require.NotEmpty(t, resp.Result.Curve.Points)

	_, err = u.Synthesize(models.SynthesizeRequest{Age: 30, HeightCm: 180, Sex: "?"})
	require.ErrorIs(t, err, apperr.ErrInputValidation)
}

func TestImportGetDeleteCurve(t *testing.T) {
	repo := newMemRepo()
	u := &Usecase{repo: repo}
	points := []benchmodels.Point{{Volume: 0, Flow: 1}, {Volume: 1, Flow: 0}}

	require.NoError(t, u.ImportCurve(models.CurveImportRequest{Name: "Base", Points: points}))
	require.ErrorIs(t, u.ImportCurve(models.CurveImportRequest{Name: "Base", Points: points}), apperr.ErrAlreadyExists)

	got, err := u.GetCurve("Base")
	require.NoError(t, err)
	require.Equal(t, points, got.Curve.Points)

	names, err := u.ListCurves()
	require.NoError(t, err)
	require.Equal(t, []string{"Base"}, names)

	require.NoError(t, u.DeleteCurve("Base"))
	_, err = u.GetCurve("Base")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
