package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput          = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON         = errors.New("invalid JSON format")
	ErrMultipleJSON        = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound        = errors.New("file not found")
	ErrFileEmpty           = errors.New("file is empty")
	ErrNoInput             = errors.New("no input provided: please pass sample files or pipe JSON data to stdin")
	ErrInvalidFilePath     = errors.New("invalid file path")
	ErrShapeMismatch       = errors.New("samples do not share a common root kind")
	ErrEmptySampleSet      = fmt.Errorf("%w: sample set is empty", ErrShapeMismatch)
	ErrInvalidNestingLimit = errors.New("nesting limit must be a positive integer")
	ErrUnknownMode         = errors.New("unknown output mode")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeShape    ErrorType = "shape"
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeGenerate ErrorType = "generate"
	ErrorTypeFormat   ErrorType = "format"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeUnknown  ErrorType = "unknown"
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

// NewShapeError creates a new error for sample sets that cannot be unified
func NewShapeError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeShape, Message: message, Err: err}
}

// NewAnalysisError creates a new error related to shape analysis
func NewAnalysisError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeAnalysis, Message: message, Err: err}
}

// NewGenerateError creates a new error related to code generation
func NewGenerateError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeGenerate, Message: message, Err: err}
}

// NewFormatError creates a new error related to code formatting
func NewFormatError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeFormat, Message: message, Err: err}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// typeLabels prefixes the message of each category in UserFriendlyError.
var typeLabels = map[ErrorType]string{
	ErrorTypeInput:    "Input error",
	ErrorTypeParsing:  "JSON parsing error",
	ErrorTypeShape:    "Sample shape error",
	ErrorTypeAnalysis: "Shape analysis error",
	ErrorTypeGenerate: "Code generation error",
	ErrorTypeFormat:   "Code formatting error",
	ErrorTypeOutput:   "Output error",
}

// Categories whose cause names the offending sample or setting.
var showCause = map[ErrorType]bool{
	ErrorTypeShape:    true,
	ErrorTypeGenerate: true,
}

// hints explain bare sentinel errors. Order matters: ErrEmptySampleSet
// wraps ErrShapeMismatch.
var hints = []struct {
	err  error
	text string
}{
	{ErrEmptyInput, "The input is empty. Please provide valid JSON data."},
	{ErrInvalidJSON, "The input contains invalid JSON. Please check your JSON syntax."},
	{ErrMultipleJSON, "Multiple JSON documents found where one was expected."},
	{ErrFileNotFound, "The specified file could not be found. Please check the file path."},
	{ErrFileEmpty, "The specified file is empty. Please provide a file with JSON samples."},
	{ErrNoInput, "No input provided. Please pass sample files or pipe JSON data to stdin."},
	{ErrInvalidFilePath, "Invalid file path. Please provide a valid file path."},
	{ErrEmptySampleSet, "No sample documents were provided."},
	{ErrShapeMismatch, "The samples do not share a common root kind."},
	{ErrInvalidNestingLimit, "The nesting limit must be a positive integer."},
	{ErrUnknownMode, "The mode must be one of access, parse or serialize."},
}

// UserFriendlyError returns the message printed to the user for err.
func UserFriendlyError(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		for _, h := range hints {
			if errors.Is(err, h.err) {
				return "Error: " + h.text
			}
		}
		return fmt.Sprintf("Error: %v", err)
	}

	label, ok := typeLabels[appErr.Type]
	if !ok {
		label = "Error"
	}
	msg := fmt.Sprintf("%s: %s", label, appErr.Message)
	if showCause[appErr.Type] && appErr.Err != nil {
		msg += fmt.Sprintf(" (%v)", appErr.Err)
	}
	return msg
}
