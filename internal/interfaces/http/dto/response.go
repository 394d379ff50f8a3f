// Package dto defines the JSON shapes written by the mock ERP API.
package dto

// Response is the ERP envelope. Every endpoint answers with it, including
// failures, so clients can always read success and message.
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo carries a machine-readable code next to the message
type ErrorInfo struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names one invalid field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
)

// NewSuccessResponse creates a success envelope
func NewSuccessResponse(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// NewErrorResponse creates a failure envelope
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Message: message,
		Error:   &ErrorInfo{Code: code, Message: message},
	}
}

// NewValidationErrorResponse creates a failure envelope listing invalid fields
func NewValidationErrorResponse(message string, details []ValidationDetail) Response {
	resp := NewErrorResponse(ErrCodeValidation, message)
	resp.Error.Details = details
	return resp
}
