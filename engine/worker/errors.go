package worker

import (
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/taskpact/taskpact/engine/dispatch"
)

// Application error types carried to the runtime for the three locally
// detected taxonomy kinds. Execution errors use the handler-supplied code as
// their type instead.
const (
	ErrTypeDefinitionNotFound = "DEFINITION_NOT_FOUND"
	ErrTypeInputValidation    = "INPUT_VALIDATION"
	ErrTypeOutputValidation   = "OUTPUT_VALIDATION"
)

// ToApplicationError converts a dispatch failure into the application-error
// shape the runtime understands: message, a type string carrying the error
// kind, and the original cause for diagnostics. Which kinds get retried is
// the runtime's retry policy, configured externally against these types.
func ToApplicationError(err error) error {
	if err == nil {
		return nil
	}
	var notFound *dispatch.DefinitionNotFoundError
	if errors.As(err, &notFound) {
		return temporal.NewApplicationErrorWithCause(
			notFound.Error(),
			ErrTypeDefinitionNotFound,
			notFound,
			map[string]any{"name": notFound.Name, "available": notFound.Available},
		)
	}
	var badInput *dispatch.InputValidationError
	if errors.As(err, &badInput) {
		return temporal.NewApplicationErrorWithCause(
			badInput.Error(),
			ErrTypeInputValidation,
			badInput,
			map[string]any{"name": badInput.Name, "issues": badInput.Issues},
		)
	}
	var badOutput *dispatch.OutputValidationError
	if errors.As(err, &badOutput) {
		return temporal.NewApplicationErrorWithCause(
			badOutput.Error(),
			ErrTypeOutputValidation,
			badOutput,
			map[string]any{"name": badOutput.Name, "issues": badOutput.Issues},
		)
	}
	var execErr *dispatch.ExecutionError
	if errors.As(err, &execErr) {
		return temporal.NewApplicationErrorWithCause(
			execErr.Message,
			execErr.Code,
			execErr.Cause,
		)
	}
	return err
}
