// Package errors provides the error taxonomy shared by the osistext packages.
//
// Every typed error unwraps to one of the sentinels below so callers can
// branch with errors.Is without knowing the concrete type.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal indicates an internal system error
	ErrInternal = errors.New("internal error")
	// ErrUnsupported indicates an unsupported operation or book
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "version", "verse span", "stream")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "OSIS", "osisID")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnknownBookCodeError reports a book or division code with no entry in the
// book table. The book exists in the canon but this document cannot serve it.
type UnknownBookCodeError struct {
	Code string // Division code or book name that failed to resolve
}

func (e *UnknownBookCodeError) Error() string {
	return fmt.Sprintf("unknown book code: %q", e.Code)
}

func (e *UnknownBookCodeError) Unwrap() error {
	return ErrUnsupported
}

// DocumentLoadError is returned when a source document cannot be read or parsed.
type DocumentLoadError struct {
	Source string // Path or version the document was loaded from
	Err    error  // Underlying error
}

func (e *DocumentLoadError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("failed to load document %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to load document: %v", e.Err)
}

func (e *DocumentLoadError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInternal
}

// InvalidVerseError reports an absent or malformed verse identifier.
type InvalidVerseError struct {
	VerseID int    // Offending identifier, 0 when absent
	Message string // Human-readable reason
}

func (e *InvalidVerseError) Error() string {
	if e.VerseID != 0 {
		return fmt.Sprintf("invalid verse %d: %s", e.VerseID, e.Message)
	}
	return fmt.Sprintf("invalid verse: %s", e.Message)
}

func (e *InvalidVerseError) Unwrap() error {
	return ErrInvalidInput
}

// VerseNotFoundError reports a well-formed verse id with no boundary element
// in the document.
type VerseNotFoundError struct {
	VerseID int    // Requested identifier
	OSISID  string // Composite id that was searched for (e.g., "Gen.1.1")
}

func (e *VerseNotFoundError) Error() string {
	return fmt.Sprintf("verse %s (%d) not found in document", e.OSISID, e.VerseID)
}

func (e *VerseNotFoundError) Unwrap() error {
	return ErrNotFound
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnknownBookCode creates an UnknownBookCodeError
func NewUnknownBookCode(code string) *UnknownBookCodeError {
	return &UnknownBookCodeError{Code: code}
}

// NewDocumentLoad creates a DocumentLoadError
func NewDocumentLoad(source string, err error) *DocumentLoadError {
	return &DocumentLoadError{
		Source: source,
		Err:    err,
	}
}

// NewInvalidVerse creates an InvalidVerseError
func NewInvalidVerse(verseID int, message string) *InvalidVerseError {
	return &InvalidVerseError{
		VerseID: verseID,
		Message: message,
	}
}

// NewVerseNotFound creates a VerseNotFoundError
func NewVerseNotFound(verseID int, osisID string) *VerseNotFoundError {
	return &VerseNotFoundError{
		VerseID: verseID,
		OSISID:  osisID,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
