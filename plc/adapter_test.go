package plc

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goburrow/modbus"
	"github.com/iwtcode/spiroBench/plc/model"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type blockWrite struct {
	addr   uint16
	values []uint16
}

type fakeClient struct {
	regs      map[uint16]uint16
	singles   [][2]uint16
	blocks    []blockWrite
	failBlock int // номер блока, на котором вернуть ошибку (с 1), 0 - без ошибок
	readErr   error
	closed    bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{regs: map[uint16]uint16{}}
}

func (f *fakeClient) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	vals := make([]uint16, quantity)
	for i := range vals {
		vals[i] = f.regs[address+uint16(i)]
	}
	return encodeRegisters(vals), nil
}

func (f *fakeClient) WriteSingleRegister(address, value uint16) ([]byte, error) {
	f.singles = append(f.singles, [2]uint16{address, value})
	f.regs[address] = value
	return nil, nil
}

func (f *fakeClient) WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error) {
	if f.failBlock > 0 && len(f.blocks)+1 == f.failBlock {
		return nil, &modbus.ModbusError{FunctionCode: 0x10, ExceptionCode: modbus.ExceptionCodeIllegalDataAddress}
	}
	vals := decodeRegisters(value)
	if int(quantity) != len(vals) {
		return nil, errors.New("quantity mismatch")
	}
	f.blocks = append(f.blocks, blockWrite{addr: address, values: vals})
	return nil, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func fakeDialer(c *fakeClient, dialErr error) model.DialFunc {
	return func(address string, slaveID byte, timeout time.Duration) (model.RegisterClient, io.Closer, error) {
		if dialErr != nil {
			return nil, nil, dialErr
		}
		return c, c, nil
	}
}

func connectedAdapter(t *testing.T, c *fakeClient) *Adapter {
	t.Helper()
	logger, _ := test.NewNullLogger()
	a := NewAdapter(time.Second, logger, WithDialer(fakeDialer(c, nil)))
	require.NoError(t, a.Connect("127.0.0.1", "502"))
	require.True(t, a.Connected())
	return a
}

func TestConnectRejectsBadPort(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a := NewAdapter(0, logger, WithDialer(fakeDialer(newFakeClient(), nil)))

	err := a.Connect("127.0.0.1", "abc")
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrConnection))
	require.False(t, a.Connected())
}

func TestConnectSocketFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a := NewAdapter(0, logger, WithDialer(fakeDialer(nil, errors.New("connection refused"))))

	err := a.Connect("10.0.0.1", "502")
	require.True(t, errors.Is(err, apperr.ErrConnection))
	require.False(t, a.Connected())
}

func TestDisconnectIsIdempotent(t *testing.T) {
	c := newFakeClient()
	a := connectedAdapter(t, c)

	a.Disconnect()
	a.Disconnect()
	require.True(t, c.closed)
	require.False(t, a.Connected())

	err := a.WriteSingle(RegCommand, CmdHome)
	require.True(t, errors.Is(err, apperr.ErrNotConnected))
	require.True(t, errors.Is(err, apperr.ErrProtocol))
}

func TestWriteSingleShiftsHoldingAddress(t *testing.T) {
	c := newFakeClient()
	a := connectedAdapter(t, c)

	require.NoError(t, a.WriteSingle(RegCommand, CmdPlay))
	require.Equal(t, [][2]uint16{{10, 99}}, c.singles)

	err := a.WriteSingle(100, 1)
	require.True(t, errors.Is(err, apperr.ErrInputValidation))
}

func TestWriteBlockSplitsIntoOrderedChunks(t *testing.T) {
	c := newFakeClient()
	a := connectedAdapter(t, c)

	values := make([]int, ProfileCapacity)
	for i := range values {
		values[i] = i
	}
	require.NoError(t, a.WriteBlock(ProfileTable, values))
	require.Len(t, c.blocks, 40, "4000 точек -> 40 блоков")

	next := uint16(ProfileTable - 1)
	for i, b := range c.blocks {
		require.Equal(t, next, b.addr, "блок %d идет без пропусков и наложений", i)
		require.Len(t, b.values, ChunkSize)
		require.Equal(t, uint16(i*ChunkSize), b.values[0])
		next += uint16(len(b.values))
	}
}

func TestWriteBlockAbortsOnFirstFailure(t *testing.T) {
	c := newFakeClient()
	c.failBlock = 3
	a := connectedAdapter(t, c)

	err := a.WriteBlock(ProfileTable, make([]int, 1000))
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrProtocol))
	require.Len(t, c.blocks, 2, "после ошибки запись прекращается")

	var mbErr *modbus.ModbusError
	require.ErrorAs(t, err, &mbErr)
}

func TestWriteBlockPartialLastChunk(t *testing.T) {
	c := newFakeClient()
	a := connectedAdapter(t, c)

	require.NoError(t, a.WriteBlock(ProfileTable, make([]int, 250)))
	require.Len(t, c.blocks, 3)
	require.Len(t, c.blocks[2].values, 50)
	require.Equal(t, uint16(999+200), c.blocks[2].addr)
}

func TestReadStatusDecodesSignedPosition(t *testing.T) {
	c := newFakeClient()
	c.regs[0] = 65536 - 100 // -10.0 градусов
	c.regs[1] = 1
	c.regs[5] = 1000
	c.regs[10] = 1
	a := connectedAdapter(t, c)

	st, err := a.ReadStatus()
	require.NoError(t, err)
	require.Equal(t, -100, st.PositionRaw)
	require.InDelta(t, -2.618, st.PositionMM, 1e-9)
	require.True(t, st.UpperLimit)
	require.True(t, st.LimitActive())
	require.InDelta(t, 26.18, st.CommandedMM, 1e-9)
	require.True(t, st.Running)
	require.Equal(t, "OK", st.ErrorText)
}

func TestReadErrorIsProtocolError(t *testing.T) {
	c := newFakeClient()
	c.readErr = errors.New("i/o timeout")
	a := connectedAdapter(t, c)

	_, err := a.ReadBlock(StatusStart, StatusCount)
	require.True(t, errors.Is(err, apperr.ErrProtocol))
}

func TestDecodeStatusShortBlock(t *testing.T) {
	_, err := DecodeStatus([]uint16{1, 2, 3})
	require.True(t, errors.Is(err, apperr.ErrProtocol))
}
