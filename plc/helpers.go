package plc

import (
	"encoding/binary"
	"fmt"
)

// toSigned переводит регистр в знаковое 16-битное значение.
func toSigned(v uint16) int {
	raw := int(v)
	if raw > 32767 {
		raw -= 65536
	}
	return raw
}

// toRegister проверяет диапазон и кодирует значение в регистр.
// Отрицательные значения передаются в дополнительном коде.
func toRegister(v int) (uint16, error) {
	if v < -32768 || v > 65535 {
		return 0, fmt.Errorf("value %d does not fit a 16-bit register", v)
	}
	return uint16(v), nil
}

func encodeRegisters(values []uint16) []byte {
	buf := make([]byte, 2*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint16(buf[2*i:], v)
	}
	return buf
}

func decodeRegisters(buf []byte) []uint16 {
	out := make([]uint16, len(buf)/2)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(buf[2*i:])
	}
	return out
}
