package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Perch error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"         // 404
	ErrFileNotFound    ErrorCode = "FILE_NOT_FOUND"    // 404
	ErrGridFull        ErrorCode = "GRID_FULL"         // 409
	ErrDesktopFull     ErrorCode = "DESKTOP_FULL"      // 409
	ErrNoPendingDelete ErrorCode = "NO_PENDING_DELETE" // 409
	ErrConflict        ErrorCode = "CONFLICT"          // 409
	ErrInternal        ErrorCode = "INTERNAL"          // 500
)

// PerchError represents a structured error with code, status, and details.
type PerchError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PerchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PerchError {
	return &PerchError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an item or folder that cannot be resolved.
func NewNotFound(kind, id string) *PerchError {
	return &PerchError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *PerchError {
	return &PerchError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewGridFull creates a 409 error when an insert finds no empty slot.
func NewGridFull(capacity int) *PerchError {
	return &PerchError{
		Code:    ErrGridFull,
		Status:  409,
		Message: "Grid is full!",
		Details: map[string]any{"capacity": capacity},
	}
}

// NewDesktopFull creates a 409 error when a link cannot be extracted onto the desktop.
func NewDesktopFull() *PerchError {
	return &PerchError{
		Code:    ErrDesktopFull,
		Status:  409,
		Message: "Desktop is full!",
	}
}

// NewNoPendingDelete creates a 409 error for confirming when nothing was requested.
func NewNoPendingDelete() *PerchError {
	return &PerchError{
		Code:    ErrNoPendingDelete,
		Status:  409,
		Message: "no delete request is pending",
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *PerchError {
	return &PerchError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PerchError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PerchError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a PerchError with the given code.
// Wrapped errors are unwrapped.
func Is(err error, code ErrorCode) bool {
	var pErr *PerchError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}
