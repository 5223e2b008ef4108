// Package plc - транспорт Modbus TCP до контроллера стенда.
package plc

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/iwtcode/spiroBench/plc/model"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 2 * time.Second
	DefaultSlaveID = 1
)

// Adapter инкапсулирует соединение с ПЛК и перевод адресов.
// Все вызовы сериализуются мьютексом.
type Adapter struct {
	mu      sync.Mutex
	host    string
	port    int
	timeout time.Duration
	slaveID byte
	dial    model.DialFunc
	client  model.RegisterClient
	closer  io.Closer
	logger  logrus.FieldLogger
}

// Option настраивает Adapter.
type Option func(*Adapter)

// WithDialer подменяет способ открытия соединения (используется в тестах).
func WithDialer(d model.DialFunc) Option {
	return func(a *Adapter) { a.dial = d }
}

// WithSlaveID задает адрес ведомого устройства.
func WithSlaveID(id byte) Option {
	return func(a *Adapter) { a.slaveID = id }
}

// NewAdapter создает адаптер без подключения.
func NewAdapter(timeout time.Duration, logger logrus.FieldLogger, opts ...Option) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	a := &Adapter{
		timeout: timeout,
		slaveID: DefaultSlaveID,
		dial:    DialTCP,
		logger:  logger.WithField("component", "plc"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DialTCP открывает соединение Modbus TCP.
func DialTCP(address string, slaveID byte, timeout time.Duration) (model.RegisterClient, io.Closer, error) {
	handler := modbus.NewTCPClientHandler(address)
	handler.Timeout = timeout
	handler.SlaveId = slaveID
	if err := handler.Connect(); err != nil {
		return nil, nil, err
	}
	return modbus.NewClient(handler), handler, nil
}

// Connect подключается к ПЛК. Порт передается строкой, как его вводит оператор.
func (a *Adapter) Connect(host, portStr string) error {
	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil || port <= 0 || port > 65535 {
		return apperr.New(apperr.ErrConnection, "connect", fmt.Sprintf("port must be a number, got %q", portStr), err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.closeUnsafe()
	if err := a.openUnsafe(host, port); err != nil {
		return err
	}
	a.logger.WithField("endpoint", a.endpoint()).Info("connected to PLC")
	return nil
}

func (a *Adapter) openUnsafe(host string, port int) error {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	client, closer, err := a.dial(address, a.slaveID, a.timeout)
	if err != nil {
		return apperr.New(apperr.ErrConnection, "connect", "connection failed, check address and cabling", err)
	}
	if client == nil {
		if closer != nil {
			_ = closer.Close()
		}
		return apperr.New(apperr.ErrConnection, "connect", "handshake failed", nil)
	}
	a.host, a.port = host, port
	a.client, a.closer = client, closer
	return nil
}

// Reconnect восстанавливает соединение с последним адресом.
func (a *Adapter) Reconnect() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.host == "" {
		return apperr.New(apperr.ErrConnection, "reconnect", "no previous endpoint", nil)
	}
	a.closeUnsafe()
	time.Sleep(50 * time.Millisecond)
	if err := a.openUnsafe(a.host, a.port); err != nil {
		return fmt.Errorf("reconnect failed: %w", err)
	}
	a.logger.WithField("endpoint", a.endpoint()).Info("reconnected to PLC")
	return nil
}

// Disconnect закрывает соединение. Повторный вызов безопасен.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		a.logger.WithField("endpoint", a.endpoint()).Info("disconnected from PLC")
	}
	a.closeUnsafe()
}

// Close - синоним Disconnect.
func (a *Adapter) Close() {
	a.Disconnect()
}

func (a *Adapter) closeUnsafe() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
	a.client, a.closer = nil, nil
}

// Connected сообщает, открыто ли соединение.
func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.client != nil
}

// Endpoint возвращает адрес последнего подключения.
func (a *Adapter) Endpoint() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.endpoint()
}

func (a *Adapter) endpoint() string {
	if a.host == "" {
		return ""
	}
	return net.JoinHostPort(a.host, strconv.Itoa(a.port))
}

// ReadBlock читает count holding-регистров начиная с адреса на линии start.
func (a *Adapter) ReadBlock(start, count uint16) ([]uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		return nil, apperr.ErrNotConnected
	}
	buf, err := a.client.ReadHoldingRegisters(start, count)
	if err != nil {
		return nil, translate("read", start, err)
	}
	if len(buf) < int(count)*2 {
		return nil, apperr.New(apperr.ErrProtocol, "read", fmt.Sprintf("short response: %d bytes for %d registers", len(buf), count), nil)
	}
	return decodeRegisters(buf[:int(count)*2]), nil
}

// WriteSingle записывает значение в holding-регистр с номером 4xxxx.
func (a *Adapter) WriteSingle(register uint16, value int) error {
	addr, ok := WireAddress(register)
	if !ok {
		return apperr.Validation("write", fmt.Sprintf("register %d is not a holding register", register))
	}
	v, err := toRegister(value)
	if err != nil {
		return apperr.New(apperr.ErrInputValidation, "write", "", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		return apperr.ErrNotConnected
	}
	if _, err := a.client.WriteSingleRegister(addr, v); err != nil {
		return translate("write", addr, err)
	}
	a.logger.WithFields(logrus.Fields{"register": register, "value": value}).Debug("register written")
	return nil
}

// WriteBlock записывает массив в таблицу ПЛК начиная с адреса start (нумерация с 1).
// Запись идет блоками по ChunkSize и прерывается на первой ошибке.
func (a *Adapter) WriteBlock(start uint16, values []int) error {
	base, ok := TableAddress(start)
	if !ok {
		return apperr.Validation("write block", "table address must start at 1")
	}
	if int(base)+len(values) > 0xFFFF {
		return apperr.Validation("write block", fmt.Sprintf("%d values do not fit from address %d", len(values), start))
	}
	regs := make([]uint16, len(values))
	for i, v := range values {
		r, err := toRegister(v)
		if err != nil {
			return apperr.New(apperr.ErrInputValidation, "write block", fmt.Sprintf("point %d", i), err)
		}
		regs[i] = r
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		return apperr.ErrNotConnected
	}
	for i := 0; i < len(regs); i += ChunkSize {
		end := i + ChunkSize
		if end > len(regs) {
			end = len(regs)
		}
		addr := base + uint16(i)
		chunk := regs[i:end]
		if _, err := a.client.WriteMultipleRegisters(addr, uint16(len(chunk)), encodeRegisters(chunk)); err != nil {
			return translate(fmt.Sprintf("write block at %d", addr), addr, err)
		}
	}
	a.logger.WithFields(logrus.Fields{"start": start, "points": len(values)}).Debug("table written")
	return nil
}

// translate переводит ошибки Modbus и сети в ProtocolError.
func translate(op string, addr uint16, err error) error {
	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		return apperr.New(apperr.ErrProtocol, op, fmt.Sprintf("modbus exception %d at address %d", mbErr.ExceptionCode, addr), err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.New(apperr.ErrProtocol, op, fmt.Sprintf("timeout at address %d", addr), err)
	}
	return apperr.New(apperr.ErrProtocol, op, fmt.Sprintf("request failed at address %d", addr), err)
}
