package models

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorType classifies every failure the application surfaces to a user.
type ErrorType string

const (
	ErrUnauthenticated    ErrorType = "UNAUTHENTICATED"
	ErrInvalidInput       ErrorType = "INVALID_INPUT"
	ErrPermissionDenied   ErrorType = "PERMISSION_DENIED"
	ErrServiceUnavailable ErrorType = "SERVICE_UNAVAILABLE"
	ErrNetwork            ErrorType = "NETWORK_ERROR"
	ErrProcessing         ErrorType = "PROCESSING_ERROR"
	ErrUnknown            ErrorType = "UNKNOWN"
)

// AppError is a classified failure with a message safe to render in the UI.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewUnauthenticated(message string) *AppError {
	return &AppError{Type: ErrUnauthenticated, Message: message}
}

func NewInvalidInput(message string) *AppError {
	return &AppError{Type: ErrInvalidInput, Message: message}
}

func NewProcessingError(cause error) *AppError {
	return &AppError{Type: ErrProcessing, Message: "Failed to process expense data", Cause: cause}
}

// TypeOf returns the classified type of err, or ErrUnknown for anything that
// was never classified.
func TypeOf(err error) ErrorType {
	var app *AppError
	if errors.As(err, &app) {
		return app.Type
	}
	return ErrUnknown
}

// Classify maps a backend error to the user-facing message shown on the
// dashboard. Already-classified errors pass through untouched.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	var app *AppError
	if errors.As(err, &app) {
		return app
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &AppError{Type: ErrNetwork, Message: "Network error. Please check your connection", Cause: err}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return &AppError{Type: ErrPermissionDenied, Message: "You don't have permission to access this data", Cause: err}
	case strings.Contains(msg, "unavailable") || strings.Contains(msg, "503"):
		return &AppError{Type: ErrServiceUnavailable, Message: "Service is temporarily unavailable. Please try again later", Cause: err}
	default:
		return &AppError{Type: ErrUnknown, Message: fmt.Sprintf("Database error: %v", err), Cause: err}
	}
}
