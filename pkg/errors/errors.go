package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeParse represents listing/price parsing errors
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeCollection represents listing collection errors
	ErrorTypeCollection ErrorType = "collection"
	// ErrorTypePersistence represents history persistence errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeDelivery represents notification delivery errors
	ErrorTypeDelivery ErrorType = "delivery"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// PipelineError represents a pipeline-stage error
type PipelineError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Recoverable returns true if a run can continue past the error. A
// collection failure is recoverable per source; the pipeline aborts only
// when every source fails.
func (e *PipelineError) Recoverable() bool {
	switch e.Type {
	case ErrorTypeParse:
		return true
	case ErrorTypeCollection:
		return true
	case ErrorTypePersistence:
		return true
	case ErrorTypeDelivery:
		return true
	case ErrorTypeConfiguration:
		return false
	default:
		return false
	}
}

// New creates a new PipelineError
func New(errType ErrorType, source, message string, err error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewParse creates a new parse error
func NewParse(source, message string, err error) *PipelineError {
	return New(ErrorTypeParse, source, message, err)
}

// NewCollection creates a new collection error
func NewCollection(source, message string, err error) *PipelineError {
	return New(ErrorTypeCollection, source, message, err)
}

// NewPersistence creates a new persistence error
func NewPersistence(source, message string, err error) *PipelineError {
	return New(ErrorTypePersistence, source, message, err)
}

// NewDelivery creates a new delivery error
func NewDelivery(source, message string, err error) *PipelineError {
	return New(ErrorTypeDelivery, source, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *PipelineError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the pipeline error type of err, or an empty string when
// err is not a PipelineError
func TypeOf(err error) ErrorType {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ""
}
