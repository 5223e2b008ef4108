package supervisor

// State - состояние автомата движения.
type State int

const (
	Idle State = iota
	Starting
	Running
	ReturningHome
	EmergencyStop
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case ReturningHome:
		return "returning_home"
	case EmergencyStop:
		return "emergency_stop"
	default:
		return "idle"
	}
}

// Исходы завершения сеанса для метрик и журнала.
const (
	OutcomeFinished   = "finished"
	OutcomeReturned   = "returned"
	OutcomeAborted    = "aborted"
	OutcomeTripped    = "following_error"
	OutcomeLimit      = "limit_switch"
	OutcomeEmergency  = "emergency"
	OutcomeDisconnect = "disconnected"
)
