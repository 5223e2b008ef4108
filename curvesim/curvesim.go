// Package curvesim синтезирует физиологичные кривые поток-объем
// по уравнениям NHANES III с поправками на патологию и курение.
package curvesim

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

const (
	ExpirationPoints = 1000
	TotalSeconds     = 6.0
	RiseSeconds      = 0.10
	BaseTau          = 0.65

	minFVC  = 2.0
	minFEV1 = 1.5
	minPEF  = 3.0

	// PathologyNone - патология по умолчанию.
	PathologyNone = "Ninguna"
)

// Sex - пол пациента для выбора уравнений.
type Sex string

const (
	Male   Sex = "Hombre"
	Female Sex = "Mujer"
)

// ParseSex понимает обозначения "M", "male", "Hombre" и их женские пары.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "hombre", "h":
		return Male, nil
	case "f", "female", "mujer":
		return Female, nil
	}
	return "", apperr.Validation("parse sex", fmt.Sprintf("unknown sex %q", s))
}

// Factors - поправки патологии: множители FVC и PEF и вогнутость спада.
type Factors struct {
	FVC       float64 `json:"fvc"`
	PEF       float64 `json:"pef"`
	Concavity float64 `json:"concavity"` // 1 - прямая, >1 - обструкция, <1 - рестрикция
}

var pathologies = map[string]Factors{
	PathologyNone: {1.00, 1.00, 1.0},

	"Asma":               {0.92, 0.70, 3.0},
	"Bronquitis Crónica": {0.92, 0.70, 3.0},
	"Bronquiectasias":    {0.92, 0.70, 3.0},

	"EPOC":              {0.80, 0.50, 5.5},
	"Enfisema":          {0.80, 0.50, 5.5},
	"Fibrosis Quística": {0.80, 0.50, 5.5},

	"Restrictiva":       {0.55, 0.60, 0.8},
	"Fibrosis Pulmonar": {0.55, 0.60, 0.8},
	"Cifoescoliosis":    {0.55, 0.60, 0.8},
	"Neumotórax":        {0.55, 0.60, 0.8},
	"Neumonía":          {0.55, 0.60, 0.8},

	"Obesidad Mórbida":         {0.70, 0.75, 1.0},
	"Enfermedad Neuromuscular": {0.70, 0.75, 1.0},

	"Sarcoidosis":      {0.75, 0.60, 2.5},
	"Tuberculosis":     {0.75, 0.60, 2.5},
	"Cáncer de Pulmón": {0.75, 0.60, 2.5},

	"Gripe": {0.95, 0.90, 1.1},
}

// Pathologies возвращает известные патологии в алфавитном порядке.
func Pathologies() []string {
	out := make([]string, 0, len(pathologies))
	for name := range pathologies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FactorsFor возвращает поправки патологии. Неизвестное имя считается здоровым.
func FactorsFor(pathology string) Factors {
	if f, ok := pathologies[pathology]; ok {
		return f
	}
	return pathologies[PathologyNone]
}

// Patient - исходные данные пациента.
type Patient struct {
	Age       float64 `json:"age"`
	HeightCm  float64 `json:"height_cm"`
	WeightKg  float64 `json:"weight_kg"`
	Sex       Sex     `json:"sex"`
	Smoker    bool    `json:"smoker"`
	Pathology string  `json:"pathology"`
}

// Predicted - должные значения NHANES III.
type Predicted struct {
	FVC  float64 `json:"fvc"`
	FEV1 float64 `json:"fev1"`
	PEF  float64 `json:"pef"`
}

// Result - синтезированная кривая и ее показатели.
type Result struct {
	Curve     models.FlowVolumeCurve `json:"curve"`
	Predicted Predicted              `json:"predicted"`
	FVC       float64                `json:"fvc"`
	FEV1      float64                `json:"fev1"`
	PEF       float64                `json:"pef"`
	Ratio     float64                `json:"fev1_fvc"` // %
}

// Predict считает должные FVC, FEV1 и PEF. Возраст ограничивается диапазоном 18..90.
func Predict(p Patient) Predicted {
	age := math.Max(18, math.Min(90, p.Age))
	h2 := p.HeightCm * p.HeightCm
	a2 := age * age

	var r Predicted
	if p.Sex == Male {
		r.FVC = -0.1933 + 0.00064*age - 0.000269*a2 + 0.00018642*h2
		r.FEV1 = 0.5536 - 0.01303*age - 0.000172*a2 + 0.00014098*h2
		r.PEF = 0.6161 - 0.02511*age + 0.0000606*a2 + 0.00034337*h2
	} else {
		r.FVC = -0.3560 + 0.01870*age - 0.000382*a2 + 0.00014815*h2
		r.FEV1 = 0.4333 - 0.00361*age - 0.000194*a2 + 0.00011496*h2
		r.PEF = 0.9267 - 0.02110*age + 0.0000318*a2 + 0.00022300*h2
	}

	r.PEF = math.Max(minPEF, r.PEF)
	r.FVC = math.Max(minFVC, r.FVC)
	r.FEV1 = math.Max(minFEV1, r.FEV1)
	if r.FEV1 > r.FVC {
		r.FEV1 = r.FVC * 0.85
	}
	return r
}

// Synthesize строит полную кривую: выдох с быстрым подъемом и экспоненциальным
// спадом, затем вдох в форме полусинусоиды с отрицательным потоком.
func Synthesize(p Patient) (Result, error) {
	if p.HeightCm <= 0 {
		return Result{}, apperr.Validation("synthesize", "height must be positive")
	}
	if p.Sex != Male && p.Sex != Female {
		return Result{}, apperr.Validation("synthesize", fmt.Sprintf("unknown sex %q", p.Sex))
	}

	pred := Predict(p)
	f := FactorsFor(p.Pathology)

	fvcSmoker, pefSmoker, k := 1.0, 1.0, f.Concavity
	if p.Smoker {
		fvcSmoker, pefSmoker = 0.95, 0.85
		if k == 1.0 {
			k = 1.3
		}
	}
	targetFVC := pred.FVC * f.FVC * fvcSmoker
	targetPEF := pred.PEF * f.PEF * pefSmoker

	dt := TotalSeconds / ExpirationPoints
	tau := BaseTau / k

	points := make([]models.Point, 0, ExpirationPoints+ExpirationPoints/2)
	flows := make([]float64, 0, ExpirationPoints)
	var vol, fev1 float64
	for i := 0; i < ExpirationPoints; i++ {
		t := float64(i) * dt
		var flow float64
		if t <= RiseSeconds {
			flow = targetPEF * (t / RiseSeconds)
			vol = 0.5 * flow * t
		} else {
			flow = targetPEF * math.Exp(-(t-RiseSeconds)/tau)
			vol += flow * dt
			if vol > targetFVC {
				vol = targetFVC
				flow = 0
			}
		}
		if math.Abs(t-1.0) < dt {
			fev1 = vol
		}
		flow = math.Max(0, flow)
		points = append(points, models.Point{Volume: vol, Flow: flow})
		flows = append(flows, flow)
	}

	fvc := points[len(points)-1].Volume
	pef := floats.Max(flows)

	n := ExpirationPoints / 2
	pif := pef * 0.75
	for i := 0; i < n; i++ {
		q := float64(i) / float64(n-1)
		points = append(points, models.Point{
			Volume: fvc * (1 - q),
			Flow:   -pif * math.Sin(q*math.Pi),
		})
	}

	res := Result{
		Curve:     models.FlowVolumeCurve{Points: points},
		Predicted: pred,
		FVC:       fvc,
		FEV1:      fev1,
		PEF:       pef,
	}
	if fvc > 0 {
		res.Ratio = fev1 / fvc * 100
	}
	return res, nil
}

// Metadata собирает сведения о пациенте для сохранения синтезированной кривой.
func Metadata(name, documentID string, p Patient) models.CurveMetadata {
	pathology := p.Pathology
	if pathology == "" {
		pathology = PathologyNone
	}
	return models.CurveMetadata{
		PatientName: name,
		Age:         p.Age,
		WeightKg:    p.WeightKg,
		Sex:         string(p.Sex),
		DocumentID:  documentID,
		Smoker:      p.Smoker,
		Pathology:   pathology,
		HeightCm:    p.HeightCm,
	}
}
