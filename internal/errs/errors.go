package errs

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	// InvalidArgument marks a caller contract violation: malformed ids,
	// unknown projection keys, out of range layers. Never retried.
	InvalidArgument ErrorType = iota
	// InvalidConfig marks a configuration document that cannot be used.
	InvalidConfig
	// InvalidData marks a result store that is inconsistent with the configs.
	InvalidData
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrInvalidData     = errors.New("invalid data")
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case InvalidArgument:
		return "InvalidArgument"
	case InvalidConfig:
		return "InvalidConfig"
	case InvalidData:
		return "InvalidData"
	default:
		return "Unknown"
	}
}

func (e ErrorType) sentinel() error {
	switch e {
	case InvalidArgument:
		return ErrInvalidArgument
	case InvalidConfig:
		return ErrInvalidConfig
	case InvalidData:
		return ErrInvalidData
	default:
		return nil
	}
}

// Error is a categorized error. Subject names the offending id, key or
// document when there is one.
type Error struct {
	Type    ErrorType
	Subject string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Subject, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the category sentinels.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Type.sentinel()
}

// Argument builds an InvalidArgument error.
func Argument(subject string, format string, args ...any) error {
	return &Error{Type: InvalidArgument, Subject: subject, Err: fmt.Errorf(format, args...)}
}

// Config builds an InvalidConfig error.
func Config(subject string, err error) error {
	return &Error{Type: InvalidConfig, Subject: subject, Err: err}
}

// Data builds an InvalidData error.
func Data(subject string, err error) error {
	return &Error{Type: InvalidData, Subject: subject, Err: err}
}
