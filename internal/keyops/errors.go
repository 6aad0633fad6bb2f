package keyops

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes keyframe operation errors.
type ErrorCode string

const (
	// ErrCodeInvalidSelection indicates an empty or malformed selection.
	ErrCodeInvalidSelection ErrorCode = "INVALID_SELECTION"

	// ErrCodeZeroTimeRange indicates a selection whose keys share one frame.
	ErrCodeZeroTimeRange ErrorCode = "ZERO_TIME_RANGE"

	// ErrCodeInvalidCamera indicates unusable camera parameters.
	ErrCodeInvalidCamera ErrorCode = "INVALID_CAMERA"

	// ErrCodeCameraNotFound indicates a camera path the host cannot resolve.
	ErrCodeCameraNotFound ErrorCode = "CAMERA_NOT_FOUND"

	// ErrCodeDegenerateDepth indicates a position on the camera's depth plane.
	ErrCodeDegenerateDepth ErrorCode = "DEGENERATE_DEPTH"

	// ErrCodeHostFailure indicates a failed host read or mutation.
	ErrCodeHostFailure ErrorCode = "HOST_FAILURE"
)

// Sentinel errors matched with errors.Is against an *OpError.
var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrZeroTimeRange    = errors.New("selected keys span zero frames")
	ErrInvalidCamera    = errors.New("invalid camera")
	ErrCameraNotFound   = errors.New("camera not found")
	ErrDegenerateDepth  = errors.New("position lies on the camera depth plane")
	ErrHostFailure      = errors.New("host operation failed")
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeInvalidSelection: ErrInvalidSelection,
	ErrCodeZeroTimeRange:    ErrZeroTimeRange,
	ErrCodeInvalidCamera:    ErrInvalidCamera,
	ErrCodeCameraNotFound:   ErrCameraNotFound,
	ErrCodeDegenerateDepth:  ErrDegenerateDepth,
	ErrCodeHostFailure:      ErrHostFailure,
}

// OpError is returned by keyframe operations.
//
// Invalid-input codes are reported before any mutation. HOST_FAILURE wraps
// an error returned by the host and may follow earlier mutations.
type OpError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation, e.g. "transform".
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *OpError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for e's code.
func (e *OpError) Is(target error) bool {
	return codeSentinels[e.Code] == target
}

func newOpError(op string, code ErrorCode, msg string, err error) *OpError {
	return &OpError{Code: code, Op: op, Message: msg, Err: err}
}

func hostError(op, msg string, err error) *OpError {
	return newOpError(op, ErrCodeHostFailure, msg, err)
}

// CodeOf returns the ErrorCode of err, or "" if err is not an *OpError.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// IsInvalidInput reports whether err was raised by validation before any
// mutation took place.
func IsInvalidInput(err error) bool {
	switch CodeOf(err) {
	case ErrCodeInvalidSelection, ErrCodeZeroTimeRange, ErrCodeInvalidCamera,
		ErrCodeCameraNotFound, ErrCodeDegenerateDepth:
		return true
	}
	return false
}
