package supervisor

import (
	"fmt"
	"math"

	"github.com/iwtcode/spiroBench/models"
	"github.com/iwtcode/spiroBench/plc"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/sirupsen/logrus"
)

const maxDurationMS = math.MaxUint16

// ValidateProfile проверяет, что профиль помещается в буфер и регистры ПЛК.
func ValidateProfile(p models.MotionProfile) error {
	if len(p.Samples) == 0 || p.Length < 1 {
		return apperr.Validation("upload", "profile is empty")
	}
	if len(p.Samples) > plc.ProfileCapacity {
		return apperr.Validation("upload", fmt.Sprintf("profile has %d samples, buffer holds %d", len(p.Samples), plc.ProfileCapacity))
	}
	if ms := durationMS(p); ms > maxDurationMS {
		return apperr.Validation("upload", fmt.Sprintf("profile duration %d ms does not fit a register", ms))
	}
	return nil
}

func durationMS(p models.MotionProfile) int {
	return int(p.Duration * 1000)
}

// UploadProfile загружает профиль в ПЛК и запускает воспроизведение.
// Порядок записи: очистка буфера, профиль, длина, длительность,
// режим цикла, команда 99. Ошибка очистки буфера только логируется.
func UploadProfile(w Writer, p models.MotionProfile, loopMode int, logger logrus.FieldLogger) error {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := ValidateProfile(p); err != nil {
		return err
	}

	// 1. Очистка буфера
	if err := w.WriteBlock(plc.ProfileTable, make([]int, plc.ProfileCapacity)); err != nil {
		logger.WithError(err).Warn("profile buffer clear failed")
	}

	// 2. Профиль
	if err := w.WriteBlock(plc.ProfileTable, p.Samples); err != nil {
		return fmt.Errorf("profile upload: %w", err)
	}

	// 3. Метаданные
	meta := []struct {
		register uint16
		value    int
	}{
		{plc.RegLength, p.Length - 1},
		{plc.RegDuration, durationMS(p)},
		{plc.RegLoopMode, loopMode},
	}
	for _, m := range meta {
		if err := w.WriteSingle(m.register, m.value); err != nil {
			return fmt.Errorf("profile metadata %d: %w", m.register, err)
		}
	}

	// 4. Старт
	if err := w.WriteSingle(plc.RegCommand, plc.CmdPlay); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"points":      p.Length,
		"duration_ms": durationMS(p),
		"loop":        loopMode,
	}).Info("profile uploaded, playback started")
	return nil
}
