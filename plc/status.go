package plc

import (
	"fmt"

	"github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/units"
)

// ErrorText возвращает описание кода ошибки ПЛК.
func ErrorText(code uint16) string {
	if code == 0 {
		return "OK"
	}
	return fmt.Sprintf("Code %d", code)
}

// DecodeStatus расшифровывает блок статусных регистров.
func DecodeStatus(regs []uint16) (models.ControllerStatus, error) {
	if len(regs) < int(StatusCount) {
		return models.ControllerStatus{}, apperr.New(apperr.ErrProtocol, "status", fmt.Sprintf("expected %d registers, got %d", StatusCount, len(regs)), nil)
	}
	pos := toSigned(regs[idxPosition])
	cmd := toSigned(regs[idxCommanded])
	return models.ControllerStatus{
		PositionRaw:  pos,
		PositionMM:   units.RawToMM(pos),
		UpperLimit:   regs[idxUpper] != 0,
		LowerLimit:   regs[idxLower] != 0,
		Moving:       regs[idxMoving] != 0,
		ErrorCode:    regs[idxErrorCode],
		ErrorText:    ErrorText(regs[idxErrorCode]),
		CommandedRaw: cmd,
		CommandedMM:  units.RawToMM(cmd),
		Running:      regs[idxRun] != 0,
	}, nil
}

// ReadStatus читает и расшифровывает блок статуса.
func (a *Adapter) ReadStatus() (models.ControllerStatus, error) {
	regs, err := a.ReadBlock(StatusStart, StatusCount)
	if err != nil {
		return models.ControllerStatus{}, err
	}
	return DecodeStatus(regs)
}
