package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNavigation represents page loads that failed or timed out
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeParsing represents HTML or model output parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeModel represents an unreachable extraction model
	ErrorTypeModel ErrorType = "model"
	// ErrorTypeStorage represents persistence failures
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeNotFound represents missing records
	ErrorTypeNotFound ErrorType = "not_found"
)

var (
	// ErrNotFound matches any not_found ScrapeError via errors.Is
	ErrNotFound = &ScrapeError{Type: ErrorTypeNotFound, Message: "not found"}
	// ErrInvalidInput matches any validation ScrapeError via errors.Is
	ErrInvalidInput = &ScrapeError{Type: ErrorTypeValidation, Message: "invalid input"}
)

// ScrapeError carries the failure class for one venue or request
type ScrapeError struct {
	Type    ErrorType
	Venue   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Type)
	if e.Venue != "" {
		prefix += " " + e.Venue + ":"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s - %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Is matches another ScrapeError of the same type
func (e *ScrapeError) Is(target error) bool {
	t, ok := target.(*ScrapeError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// IsRetryable reports whether the scheduler may safely run the job again
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNavigation, ErrorTypeModel, ErrorTypeStorage:
		return true
	default:
		return false
	}
}

// TypeOf returns the ErrorType carried anywhere in err's chain, or "" if none
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type
	}
	return ""
}

// New creates a new ScrapeError
func New(errType ErrorType, venue, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Venue:   venue,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNavigation creates a new navigation error
func NewNavigation(venue, message string, err error) *ScrapeError {
	return New(ErrorTypeNavigation, venue, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(venue, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, venue, message, err)
}

// NewModel creates a new model error
func NewModel(venue, message string, err error) *ScrapeError {
	return New(ErrorTypeModel, venue, message, err)
}

// NewStorage creates a new storage error
func NewStorage(venue, message string, err error) *ScrapeError {
	return New(ErrorTypeStorage, venue, message, err)
}

// NewCache creates a new cache error
func NewCache(venue, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, venue, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(venue, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, venue, message, err)
}

// NewValidation creates a new validation error
func NewValidation(venue, message string) *ScrapeError {
	return New(ErrorTypeValidation, venue, message, nil)
}

// NewNotFound creates a new not found error
func NewNotFound(venue, message string) *ScrapeError {
	return New(ErrorTypeNotFound, venue, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}
