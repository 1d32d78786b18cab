package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeInvalidState ErrorType = "INVALID_STATE"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeEmailMismatch    ErrorCode = "EMAIL_MISMATCH"
	ErrCodeInvalidMethod    ErrorCode = "INVALID_PAYMENT_METHOD"

	ErrCodeReservationNotFound ErrorCode = "RESERVATION_NOT_FOUND"
	ErrCodeCheckinNotFound     ErrorCode = "CHECKIN_NOT_FOUND"
	ErrCodePaymentNotFound     ErrorCode = "PAYMENT_NOT_FOUND"

	ErrCodeInvalidCheckinStatus ErrorCode = "INVALID_CHECKIN_STATUS"
	ErrCodePassportNotVerified  ErrorCode = "PASSPORT_NOT_VERIFIED"

	ErrCodeAlreadyPaid       ErrorCode = "PAYMENT_ALREADY_PROCESSED"
	ErrCodeNotPaid           ErrorCode = "NO_PAYMENT_TO_REFUND"
	ErrCodeRefundInProgress  ErrorCode = "REFUND_IN_PROGRESS"
	ErrCodeRefundTooLarge    ErrorCode = "REFUND_EXCEEDS_CHARGE"
	ErrCodeGatewayFailure    ErrorCode = "GATEWAY_FAILURE"
	ErrCodeCheckinDownstream ErrorCode = "CHECKIN_DOWNSTREAM_FAILURE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInvalidStateError reports an operation attempted against a record whose
// current status does not permit it. No state is mutated.
func NewInvalidStateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidState,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewDownstreamError marks a dependency failure (hotel-side check-in,
// gateway transport error) as opposed to a clean business decline.
func NewDownstreamError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrReservationNotFound = NewNotFoundError("Reservation not found", ErrCodeReservationNotFound)
	ErrCheckinNotFound     = NewNotFoundError("Check-in record not found", ErrCodeCheckinNotFound)
	ErrPaymentNotFound     = NewNotFoundError("No completed payment found", ErrCodePaymentNotFound)

	ErrEmailMismatch        = NewValidationError("Email does not match reservation", ErrCodeEmailMismatch)
	ErrInvalidCheckinStatus = NewInvalidStateError("invalid check-in status for this operation", ErrCodeInvalidCheckinStatus)
	ErrPassportNotVerified  = NewInvalidStateError("passport must be verified before liveness check", ErrCodePassportNotVerified)
	ErrAlreadyPaid          = NewConflictError("Payment already processed", ErrCodeAlreadyPaid)
	ErrNotPaid              = NewConflictError("No payment to refund", ErrCodeNotPaid)
	ErrRefundInProgress     = NewConflictError("A refund for this payment is already in progress", ErrCodeRefundInProgress)
	ErrRefundTooLarge       = NewValidationError("Refund amount cannot exceed original payment amount", ErrCodeRefundTooLarge)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
