// Package spirobench - клиент испытательного стенда спирометров:
// подключение к ПЛК, загрузка профилей движения и служебные команды.
package spirobench

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/plc"
	"github.com/iwtcode/spiroBench/profile"
	"github.com/iwtcode/spiroBench/supervisor"
	"github.com/iwtcode/spiroBench/units"
	"github.com/sirupsen/logrus"
)

// Client является основной точкой входа для взаимодействия с библиотекой.
type Client struct {
	adapter  *plc.Adapter
	compiler *profile.Compiler
	config   *Config
	logger   *logrus.Logger
}

// New создает клиента и устанавливает соединение с ПЛК.
// Дополнительные опции передаются адаптеру (например, plc.WithDialer).
func New(cfg *Config, opts ...plc.Option) (*Client, error) {
	logger := logrus.New()

	if cfg.LogLevel == "off" || cfg.LogLevel == "none" {
		logger.SetOutput(io.Discard)
	} else {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)
		logger.SetOutput(os.Stdout)
	}

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		ForceColors:     true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	opts = append([]plc.Option{plc.WithSlaveID(cfg.SlaveID)}, opts...)
	adapter := plc.NewAdapter(time.Duration(cfg.TimeoutMs)*time.Millisecond, logger, opts...)
	if err := adapter.Connect(cfg.IP, strconv.Itoa(int(cfg.Port))); err != nil {
		return nil, fmt.Errorf("failed to connect to bench PLC: %w", err)
	}

	return &Client{
		adapter:  adapter,
		compiler: profile.NewCompiler(units.DefaultGeometry()),
		config:   cfg,
		logger:   logger,
	}, nil
}

// Close закрывает соединение с ПЛК.
func (c *Client) Close() {
	if c.adapter != nil {
		c.adapter.Close()
	}
}

// GetLogger возвращает используемый логгер.
func (c *Client) GetLogger() *logrus.Logger {
	return c.logger
}

// Endpoint возвращает адрес ПЛК.
func (c *Client) Endpoint() string {
	return c.adapter.Endpoint()
}

// GetStatus читает блок статусных регистров.
func (c *Client) GetStatus() (models.ControllerStatus, error) {
	return c.adapter.ReadStatus()
}

// CompileCurve переводит кривую поток-объем в профиль движения.
func (c *Client) CompileCurve(curve models.FlowVolumeCurve) (models.MotionProfile, error) {
	return c.compiler.Compile(curve)
}

// CompileWaveform строит профиль одного периода ручной волны.
func (c *Client) CompileWaveform(spec models.WaveformSpec) (models.MotionProfile, error) {
	return c.compiler.CompileWaveform(spec, c.logger)
}

// UploadProfile загружает профиль и запускает воспроизведение.
func (c *Client) UploadProfile(p models.MotionProfile, loopMode int) error {
	return supervisor.UploadProfile(c.adapter, p, loopMode, c.logger)
}

// PlayCurve компилирует кривую и воспроизводит ее один раз.
func (c *Client) PlayCurve(curve models.FlowVolumeCurve) (models.MotionProfile, error) {
	p, err := c.compiler.Compile(curve)
	if err != nil {
		return models.MotionProfile{}, err
	}
	if p.IsEmpty() {
		return p, apperr.Validation("play", fmt.Sprintf("curve %q produces no motion", curve.Name))
	}
	return p, c.UploadProfile(p, plc.LoopSimulation)
}

// PlayWaveform запускает ручную волну в циклическом режиме.
func (c *Client) PlayWaveform(spec models.WaveformSpec) (models.MotionProfile, error) {
	p, err := c.CompileWaveform(spec)
	if err != nil {
		return p, err
	}
	return p, c.UploadProfile(p, plc.LoopManual)
}

// Stop прерывает воспроизведение и возвращает привод в исходное положение.
func (c *Client) Stop() error {
	return c.adapter.WriteSingle(plc.RegCommand, plc.CmdHome)
}

// ReturnHome отправляет команду плавного возврата.
func (c *Client) ReturnHome() error {
	return c.adapter.WriteSingle(plc.RegCommand, plc.CmdResume)
}

// Emergency отправляет команду аварийной остановки.
func (c *Client) Emergency() error {
	c.logger.WithField("alarm", true).Error("emergency command requested")
	return c.adapter.WriteSingle(plc.RegCommand, plc.CmdEmergency)
}

// Rearm сбрасывает командный регистр и разрешает работу привода.
func (c *Client) Rearm() error {
	if err := c.adapter.WriteSingle(plc.RegCommand, plc.CmdHome); err != nil {
		return err
	}
	return c.adapter.WriteSingle(plc.RegEnable, 1)
}

// Calibrate включает или выключает режим калибровки.
func (c *Client) Calibrate(on bool) error {
	value := 0
	if on {
		value = 1
	}
	return c.adapter.WriteSingle(plc.RegCalibration, value)
}

// WriteRegister записывает произвольное значение в holding-регистр 4xxxx.
func (c *Client) WriteRegister(register uint16, value int) error {
	return c.adapter.WriteSingle(register, value)
}

// StartPolling запускает периодический опрос статуса до отмены контекста.
func (c *Client) StartPolling(ctx context.Context, interval time.Duration) <-chan plc.PollingResult {
	return c.adapter.StartPolling(ctx, interval)
}
