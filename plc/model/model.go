package model

import (
	"io"
	"time"
)

// RegisterClient - функции Modbus, которые использует адаптер.
// Ему удовлетворяет modbus.Client из github.com/goburrow/modbus.
type RegisterClient interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
	WriteSingleRegister(address, value uint16) ([]byte, error)
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// DialFunc открывает соединение с ПЛК по адресу host:port.
// Возвращаемый io.Closer закрывает транспорт.
type DialFunc func(address string, slaveID byte, timeout time.Duration) (RegisterClient, io.Closer, error)
