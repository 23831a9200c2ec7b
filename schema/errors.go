package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Guard decision errors
	ErrBlocked          = errors.New("blocked by constitution")
	ErrEvaluationFailed = errors.New("constitution evaluation failed")

	// Constitution errors
	ErrConstitutionInvalid = errors.New("invalid constitution")

	// Tool-related errors
	ErrToolNotFound        = errors.New("tool not found")
	ErrToolAlreadyExists   = errors.New("tool already exists")
	ErrToolExecutionFailed = errors.New("tool execution failed")

	// Common errors
	ErrInvalidInput = errors.New("invalid input")
)

// BlockedError signals that a constitution denied an invocation. Violations
// keep the order the guard evaluated them in; callers match on substrings.
type BlockedError struct {
	Title      string
	Violations []string
}

func (e *BlockedError) Error() string {
	msg := "blocked by constitution"
	if e.Title != "" {
		msg = e.Title + " " + msg
	}
	if len(e.Violations) == 0 {
		return msg
	}
	return msg + ": " + strings.Join(e.Violations, "; ")
}

func (e *BlockedError) Unwrap() error {
	return ErrBlocked
}

func NewBlockedError(title string, violations []string) *BlockedError {
	return &BlockedError{
		Title:      title,
		Violations: violations,
	}
}

// EvaluationError reports a constraint that could not be evaluated at all,
// as opposed to one that evaluated to a violation.
type EvaluationError struct {
	Constraint string
	Field      string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("constraint %s: field %s: %v", e.Constraint, e.Field, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func NewEvaluationError(constraint, field string, err error) *EvaluationError {
	return &EvaluationError{
		Constraint: constraint,
		Field:      field,
		Err:        fmt.Errorf("%w: %v", ErrEvaluationFailed, err),
	}
}

type ToolError struct {
	ToolName string
	Op       string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %s: %v", e.ToolName, e.Op, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func NewToolError(toolName, op string, err error) *ToolError {
	return &ToolError{
		ToolName: toolName,
		Op:       op,
		Err:      err,
	}
}

// StepError describes a pipeline step failure.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func NewStepError(step string, err error) *StepError {
	return &StepError{Step: step, Err: err}
}

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s (value: %v): %s", e.Field, e.Value, e.Message)
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsBlocked reports whether err stems from a constitution denial.
func IsBlocked(err error) bool {
	return errors.Is(err, ErrBlocked)
}

// AsBlocked extracts the BlockedError carrying the violation list, if any.
func AsBlocked(err error) (*BlockedError, bool) {
	var be *BlockedError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
