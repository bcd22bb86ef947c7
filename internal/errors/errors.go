package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i")
	ErrInvalidFilePath = errors.New("invalid file path")

	ErrNoData         = errors.New("no data loaded")
	ErrNoFields       = errors.New("no fields selected")
	ErrMissingDataset = errors.New("both datasets are required")
	ErrNoJoinKeys     = errors.New("no join keys selected")
	ErrNoRecords      = errors.New("no iterable records under the selected root path")
	ErrEmptyMerge     = errors.New("merge produced no rows")
	ErrUnknownFormat  = errors.New("unknown output format")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeParsing   ErrorType = "parsing"
	ErrorTypeSelection ErrorType = "selection"
	ErrorTypeMerge     ErrorType = "merge"
	ErrorTypeExport    ErrorType = "export"
	ErrorTypeOutput    ErrorType = "output"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Err: err}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeParsing, Message: message, Err: err}
}

// NewSelectionError creates a new error for an empty or invalid field selection
func NewSelectionError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeSelection, Message: message, Err: err}
}

// NewMergeError creates a new error for a merge precondition that does not hold
func NewMergeError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeMerge, Message: message, Err: err}
}

// NewExportError creates a new error raised while building export rows
func NewExportError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeExport, Message: message, Err: err}
}

// NewOutputError creates a new error related to writing the output artifact
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message, Err: err}
}

// Message returns the caller-displayable message of err: the AppError
// message when there is one, otherwise err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("Error parsing JSON: %s", appErr.Message)
		case ErrorTypeSelection:
			return appErr.Message
		case ErrorTypeMerge:
			return appErr.Message
		case ErrorTypeExport:
			return fmt.Sprintf("Error during export: %s", appErr.Message)
		case ErrorTypeOutput:
			return appErr.Message
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON object or array."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}
