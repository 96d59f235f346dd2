package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("request conflicts with one in progress")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrValidation   = errors.New("validation failed")
)

// Ledger interaction errors. Every failed contract call surfaces as exactly one of these.
var (
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrUnknownFunction    = errors.New("unknown contract function")
	ErrAccountUnavailable = errors.New("source account unavailable")
	ErrSimulationFailed   = errors.New("transaction simulation failed")
	ErrSignatureRejected  = errors.New("transaction signature rejected")
	ErrSubmissionFailed   = errors.New("transaction submission failed")
	ErrTransactionFailed  = errors.New("transaction failed on ledger")
)

// ErrLedgerUnavailable marks a read that fell back to stored data
var ErrLedgerUnavailable = errors.New("ledger state unavailable")

// Error codes returned to API clients
const (
	CodeInvalidInput       = "ERR_INVALID_INPUT"
	CodeValidation         = "ERR_VALIDATION"
	CodeNotFound           = "ERR_NOT_FOUND"
	CodeConflict           = "ERR_CONFLICT"
	CodeUnauthorized       = "ERR_UNAUTHORIZED"
	CodeForbidden          = "ERR_FORBIDDEN"
	CodeInternalError      = "ERR_INTERNAL"
	CodeWalletNotConnected = "ERR_WALLET_NOT_CONNECTED"
	CodeUnknownFunction    = "ERR_UNKNOWN_FUNCTION"
	CodeAccountUnavailable = "ERR_ACCOUNT_UNAVAILABLE"
	CodeSimulationFailed   = "ERR_SIMULATION_FAILED"
	CodeSignatureRejected  = "ERR_SIGNATURE_REJECTED"
	CodeSubmissionFailed   = "ERR_SUBMISSION_FAILED"
	CodeTransactionFailed  = "ERR_TRANSACTION_FAILED"
)

// AppError is an error with the HTTP status and code the API answers with.
// Message is safe to show to clients; Err stays server side.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrConflict)
}

func Unprocessable(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeValidation, message, ErrValidation)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// FieldValidationError carries per-field messages of a rejected form
type FieldValidationError struct {
	Fields map[string]string
}

func (e *FieldValidationError) Error() string {
	return "validation failed"
}

func (e *FieldValidationError) Unwrap() error {
	return ErrValidation
}

// NewFieldValidationError wraps field messages as an error
func NewFieldValidationError(fields map[string]string) *FieldValidationError {
	return &FieldValidationError{Fields: fields}
}

// FromLedgerError maps a ledger interaction failure to its HTTP representation.
// Returns nil when err carries none of the ledger kinds.
func FromLedgerError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrWalletNotConnected):
		return NewAppError(http.StatusUnauthorized, CodeWalletNotConnected, "Wallet not connected", err)
	case errors.Is(err, ErrUnknownFunction):
		return NewAppError(http.StatusBadRequest, CodeUnknownFunction, err.Error(), err)
	case errors.Is(err, ErrAccountUnavailable):
		return NewAppError(http.StatusBadGateway, CodeAccountUnavailable, err.Error(), err)
	case errors.Is(err, ErrSimulationFailed):
		return NewAppError(http.StatusUnprocessableEntity, CodeSimulationFailed, err.Error(), err)
	case errors.Is(err, ErrSignatureRejected):
		return NewAppError(http.StatusForbidden, CodeSignatureRejected, err.Error(), err)
	case errors.Is(err, ErrSubmissionFailed):
		return NewAppError(http.StatusBadGateway, CodeSubmissionFailed, err.Error(), err)
	case errors.Is(err, ErrTransactionFailed):
		return NewAppError(http.StatusUnprocessableEntity, CodeTransactionFailed, err.Error(), err)
	}
	return nil
}
