package plc

// Карта регистров ПЛК стенда. Номера holding-регистров в нотации 4xxxx.
const (
	RegEnable      uint16 = 40002
	RegCommand     uint16 = 40011
	RegLength      uint16 = 40012
	RegDuration    uint16 = 40013
	RegLoopMode    uint16 = 40015
	RegCalibration uint16 = 40016

	// HoldingBase - смещение между номером регистра и адресом на линии.
	HoldingBase uint16 = 40001

	// ProfileTable - адрес таблицы профиля (нумерация с 1).
	ProfileTable uint16 = 1000
	// ProfileCapacity - размер таблицы профиля.
	ProfileCapacity = 4000
	// ChunkSize - максимальное число регистров в одной транзакции записи.
	ChunkSize = 100
)

// Значения командного регистра.
const (
	CmdHome      = 0
	CmdCalibrate = 1
	CmdEmergency = 2
	CmdResume    = 50
	CmdPlay      = 99
)

// Значения регистра режима воспроизведения.
const (
	LoopManual     = 0
	LoopSimulation = 1
)

// Блок статусных регистров (адреса на линии).
const (
	StatusStart uint16 = 0
	StatusCount uint16 = 11

	idxPosition  = 0
	idxUpper     = 1
	idxLower     = 2
	idxMoving    = 3
	idxErrorCode = 4
	idxCommanded = 5
	idxRun       = 10
)

// WireAddress переводит номер holding-регистра в адрес на линии.
func WireAddress(register uint16) (uint16, bool) {
	if register < HoldingBase {
		return 0, false
	}
	return register - HoldingBase, true
}

// TableAddress переводит адрес таблицы (с 1) в адрес на линии.
func TableAddress(addr uint16) (uint16, bool) {
	if addr == 0 {
		return 0, false
	}
	return addr - 1, true
}

// CommandName возвращает название значения командного регистра.
func CommandName(v int) string {
	switch v {
	case CmdHome:
		return "home"
	case CmdCalibrate:
		return "calibrate"
	case CmdEmergency:
		return "emergency"
	case CmdResume:
		return "resume-return"
	case CmdPlay:
		return "play"
	}
	return "unknown"
}
