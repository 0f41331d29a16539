package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskpact/taskpact/engine/core"
	"github.com/taskpact/taskpact/engine/schema"
)

// CodeUnknown is the execution-error code used when a failure carries no
// code of its own.
const CodeUnknown = "UNKNOWN"

// -----------------------------------------------------------------------------
// Taxonomy
// -----------------------------------------------------------------------------

// DefinitionNotFoundError: the caller asked for an operation absent from the
// effective contract. Always a caller or configuration bug; retrying cannot
// help without a code change. Available lists the sorted effective names so
// the caller can be fixed without re-running the system.
type DefinitionNotFoundError struct {
	Name      string
	Available []string
}

func (e *DefinitionNotFoundError) Error() string {
	return fmt.Sprintf(
		"operation %q not found; available operations: %s",
		e.Name,
		strings.Join(e.Available, ", "),
	)
}

// InputValidationError: malformed input. The handler never ran and no side
// effects occurred.
type InputValidationError struct {
	Name   string
	Issues []schema.Issue
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid input for operation %q: %s", e.Name, formatIssues(e.Issues))
}

// OutputValidationError: the handler ran and returned a value violating its
// own declared contract. Its side effects have already happened; the
// malformed value is withheld from the caller.
type OutputValidationError struct {
	Name   string
	Issues []schema.Issue
}

func (e *OutputValidationError) Error() string {
	return fmt.Sprintf("invalid output from operation %q: %s", e.Name, formatIssues(e.Issues))
}

// ExecutionError: the handler explicitly failed. This is the single channel
// through which implementation failures of either authoring convention reach
// the orchestration runtime, so retry policy only ever sees one shape.
type ExecutionError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func formatIssues(issues []schema.Issue) string {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

// -----------------------------------------------------------------------------
// Normalizer
// -----------------------------------------------------------------------------

// NormalizeError wraps a handler failure of the error-return convention into
// the canonical execution-error shape. A coded core.Error anywhere in the
// chain keeps its code; everything else gets CodeUnknown. The original value
// is always preserved as the cause.
func NormalizeError(err error) *ExecutionError {
	if err == nil {
		return nil
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr
	}
	var coded *core.Error
	if errors.As(err, &coded) {
		return NormalizeDomainError(coded)
	}
	return &ExecutionError{
		Code:    CodeUnknown,
		Message: err.Error(),
		Cause:   err,
	}
}

// NormalizeDomainError rewraps a Result-convention domain error, discarding
// none of the original information.
func NormalizeDomainError(domainErr *core.Error) *ExecutionError {
	if domainErr == nil {
		return nil
	}
	code := domainErr.Code
	if code == "" {
		code = CodeUnknown
	}
	return &ExecutionError{
		Code:    code,
		Message: domainErr.Message,
		Cause:   domainErr,
	}
}
