package supervisor

import "time"

// Thresholds - пороги контроля движения. Загружаются из YAML-файла стенда.
type Thresholds struct {
	GlitchJumpMM          float64       `yaml:"glitch_jump_mm"`
	GlitchConfirmTicks    int           `yaml:"glitch_confirm_ticks"`
	FollowingBaseMM       float64       `yaml:"following_base_mm"`
	FollowingSpeedFactor  float64       `yaml:"following_speed_factor"`
	FollowingTripTicks    int           `yaml:"following_trip_ticks"`
	GracePeriod           time.Duration `yaml:"grace_period"`
	HomeToleranceMM       float64       `yaml:"home_tolerance_mm"`
	MotionThresholdMMs    float64       `yaml:"motion_threshold_mm_s"`
	MotionStep            time.Duration `yaml:"motion_step"`
	DefaultSpeedPercent   float64       `yaml:"default_speed_percent"`
	FallbackAmplitudeMM   float64       `yaml:"fallback_amplitude_mm"`
	OfflineAmplitudeMM    float64       `yaml:"offline_amplitude_mm"`
	MotionGraphDecimation int           `yaml:"motion_graph_decimation"`
}

// DefaultThresholds возвращает заводские пороги.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GlitchJumpMM:          40,
		GlitchConfirmTicks:    5,
		FollowingBaseMM:       20,
		FollowingSpeedFactor:  0.8,
		FollowingTripTicks:    5,
		GracePeriod:           3 * time.Second,
		HomeToleranceMM:       1,
		MotionThresholdMMs:    5,
		MotionStep:            20 * time.Millisecond,
		DefaultSpeedPercent:   10,
		FallbackAmplitudeMM:   345,
		OfflineAmplitudeMM:    0,
		MotionGraphDecimation: 4,
	}
}

// withDefaults заполняет незаданные поля заводскими значениями.
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.GlitchJumpMM <= 0 {
		t.GlitchJumpMM = d.GlitchJumpMM
	}
	if t.GlitchConfirmTicks <= 0 {
		t.GlitchConfirmTicks = d.GlitchConfirmTicks
	}
	if t.FollowingBaseMM <= 0 {
		t.FollowingBaseMM = d.FollowingBaseMM
	}
	if t.FollowingSpeedFactor < 0 {
		t.FollowingSpeedFactor = d.FollowingSpeedFactor
	}
	if t.FollowingTripTicks <= 0 {
		t.FollowingTripTicks = d.FollowingTripTicks
	}
	if t.GracePeriod < 0 {
		t.GracePeriod = d.GracePeriod
	}
	if t.HomeToleranceMM <= 0 {
		t.HomeToleranceMM = d.HomeToleranceMM
	}
	if t.MotionThresholdMMs <= 0 {
		t.MotionThresholdMMs = d.MotionThresholdMMs
	}
	if t.MotionStep <= 0 {
		t.MotionStep = d.MotionStep
	}
	if t.DefaultSpeedPercent <= 0 {
		t.DefaultSpeedPercent = d.DefaultSpeedPercent
	}
	if t.FallbackAmplitudeMM <= 0 {
		t.FallbackAmplitudeMM = d.FallbackAmplitudeMM
	}
	if t.OfflineAmplitudeMM < 0 {
		t.OfflineAmplitudeMM = d.OfflineAmplitudeMM
	}
	if t.MotionGraphDecimation <= 0 {
		t.MotionGraphDecimation = d.MotionGraphDecimation
	}
	return t
}
