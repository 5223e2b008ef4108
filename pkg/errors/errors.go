package errors

import (
	"errors"
	"fmt"
)

const (
	InternalServerError = "internal server error"
	BadRequest          = "bad request"
	NotFound            = "not_found"
	Conflict            = "conflict"
	UnauthorizedError   = "unauthorized"
	ServiceUnavailable  = "service unavailable"

	UnauthorizedErrorCode   = 401
	InvalidDataCode         = 402
	ForbiddenErrorCode      = 403
	InternalServerErrorCode = 500
	NotFoundErrorCode       = 404
	ConflictErrorCode       = 409
)

// Виды ошибок стенда. Проверяются через errors.Is.
var (
	ErrInputValidation = errors.New("input validation")
	ErrConnection      = errors.New("connection error")
	ErrProtocol        = errors.New("protocol error")
	ErrSafetyViolation = errors.New("safety violation")
	ErrEvaluation      = errors.New("evaluation error")
	ErrEmergency       = errors.New("emergency stop active")
)

var (
	ErrNotConnected  = fmt.Errorf("%w: plc not connected", ErrProtocol)
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrBusy          = errors.New("motion already in progress")
	ErrNoData        = errors.New("no captured data")
)

// AppError представляет собой стандартизированную ошибку стенда:
// вид ошибки, операцию и исходную причину.
type AppError struct {
	Kind    error  `json:"-"`       // Один из Err* видов
	Op      string `json:"op"`      // Операция, в которой возникла ошибка
	Message string `json:"message"` // Сообщение для оператора
	Err     error  `json:"-"`       // Внутренняя ошибка
}

func (a *AppError) Error() string {
	if a == nil {
		return ""
	}
	msg := a.Message
	if msg == "" && a.Kind != nil {
		msg = a.Kind.Error()
	}
	if a.Op != "" {
		msg = a.Op + ": " + msg
	}
	if a.Err != nil {
		return fmt.Sprintf("%s: %v", msg, a.Err)
	}
	return msg
}

// Is позволяет сравнивать AppError с видом ошибки.
func (a *AppError) Is(target error) bool {
	return a.Kind != nil && target == a.Kind
}

func (a *AppError) Unwrap() error {
	return a.Err
}

// New создает новый экземпляр AppError.
func New(kind error, op, message string, err error) *AppError {
	return &AppError{Kind: kind, Op: op, Message: message, Err: err}
}

// Validation, Connection, Protocol, Safety - сокращения для частых видов.
func Validation(op, message string) *AppError {
	return New(ErrInputValidation, op, message, nil)
}

func Connection(op string, err error) *AppError {
	return New(ErrConnection, op, "", err)
}

func Protocol(op string, err error) *AppError {
	return New(ErrProtocol, op, "", err)
}

func Safety(op, message string) *AppError {
	return New(ErrSafetyViolation, op, message, nil)
}

// CapacityError возвращается, когда объем кривой превышает
// физическую емкость стенда. Является ошибкой валидации.
type CapacityError struct {
	MaxVolume float64
	Capacity  float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("curve volume %.2f L exceeds bench capacity %.2f L", e.MaxVolume, e.Capacity)
}

func (e *CapacityError) Unwrap() error {
	return ErrInputValidation
}

// Kind возвращает вид ошибки или nil, если ошибка не классифицирована.
func Kind(err error) error {
	for _, k := range []error{ErrEmergency, ErrSafetyViolation, ErrInputValidation, ErrConnection, ErrProtocol, ErrEvaluation, ErrNotFound, ErrAlreadyExists, ErrBusy, ErrNoData} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
