package config

import (
	"fmt"
	"os"

	"github.com/iwtcode/spiroBench/supervisor"
	"github.com/iwtcode/spiroBench/units"
	"gopkg.in/yaml.v3"
)

// BenchConfig - механика стенда и пороги контроля движения из YAML-файла.
type BenchConfig struct {
	Geometry   units.Geometry        `yaml:"geometry"`
	Thresholds supervisor.Thresholds `yaml:"thresholds"`
}

// DefaultBench возвращает параметры серийного стенда.
func DefaultBench() BenchConfig {
	return BenchConfig{
		Geometry:   units.DefaultGeometry(),
		Thresholds: supervisor.DefaultThresholds(),
	}
}

// LoadBench читает файл стенда. Пустой путь означает заводские значения,
// поля, отсутствующие в файле, сохраняют значения по умолчанию.
func LoadBench(path string) (BenchConfig, error) {
	bench := DefaultBench()
	if path == "" {
		return bench, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return bench, fmt.Errorf("не удалось прочитать файл стенда %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &bench); err != nil {
		return bench, fmt.Errorf("ошибка разбора файла стенда %s: %w", path, err)
	}
	if err := bench.validate(); err != nil {
		return bench, fmt.Errorf("файл стенда %s: %w", path, err)
	}
	return bench, nil
}

func (b BenchConfig) validate() error {
	g := b.Geometry
	switch {
	case g.PinionDiameterMM <= 0:
		return fmt.Errorf("pinion_diameter_mm must be positive")
	case g.TotalTravelMM <= 0:
		return fmt.Errorf("total_travel_mm must be positive")
	case g.CylinderDiameterMM <= 0:
		return fmt.Errorf("cylinder_diameter_mm must be positive")
	case g.CylinderCount <= 0:
		return fmt.Errorf("cylinder_count must be positive")
	}
	return nil
}
