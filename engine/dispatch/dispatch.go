package dispatch

import (
	"context"

	"github.com/taskpact/taskpact/engine/core"
	"github.com/taskpact/taskpact/engine/registry"
	"github.com/taskpact/taskpact/pkg/future"
	"github.com/taskpact/taskpact/pkg/result"
)

// Outcome is the explicit success/failure payload of a Result-convention
// handler.
type Outcome = result.Result[core.Output, *core.Error]

// Deferred is what a Result-convention handler returns: a deferred Outcome.
// The dispatcher recognizes this shape by a tagged type check, never by
// structural guessing.
type Deferred = future.Future[Outcome]

// Dispatcher runs the validate-invoke-validate pipeline against one
// effective table. It holds no per-call state beyond the call's own locals,
// and the table it reads is immutable, so one dispatcher serves arbitrarily
// many concurrent invocations.
type Dispatcher struct {
	table *registry.Table
}

func New(table *registry.Table) *Dispatcher {
	return &Dispatcher{table: table}
}

func (d *Dispatcher) Table() *registry.Table {
	return d.table
}

// Invoke resolves name, validates raw input, runs the bound handler exactly
// once, validates its output, and returns the accepted output. Fire-and-
// forget operations return a nil output. Every failure is one of the four
// taxonomy kinds; handler failures of both authoring conventions come back
// as *ExecutionError.
func (d *Dispatcher) Invoke(ctx context.Context, name string, raw any) (core.Output, error) {
	entry, ok := d.table.Lookup(name)
	if !ok {
		return nil, &DefinitionNotFoundError{Name: name, Available: d.table.Names()}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inputOutcome := entry.Input.Validate(raw)
	if !inputOutcome.Valid {
		return nil, &InputValidationError{Name: name, Issues: inputOutcome.Issues}
	}
	input, err := coerceInput(inputOutcome.Value)
	if err != nil {
		return nil, &InputValidationError{Name: name, Issues: issueFromError(err)}
	}
	returned, err := entry.Handler(ctx, input)
	if err != nil {
		return nil, NormalizeError(err)
	}
	if deferred, ok := returned.(*Deferred); ok {
		settled, err := deferred.Await(ctx)
		if err != nil {
			return nil, NormalizeError(err)
		}
		unwrapped := result.Match(settled,
			func(v core.Output) settledOutcome { return settledOutcome{value: v} },
			func(e *core.Error) settledOutcome { return settledOutcome{domainErr: e} },
		)
		if unwrapped.domainErr != nil {
			return nil, NormalizeDomainError(unwrapped.domainErr)
		}
		returned = unwrapped.value
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !entry.HasOutput() {
		return nil, nil
	}
	projected, err := coerceOutput(returned)
	if err != nil {
		return nil, &OutputValidationError{Name: name, Issues: issueFromError(err)}
	}
	outputOutcome := entry.Output.Validate(projected.AsMap())
	if !outputOutcome.Valid {
		return nil, &OutputValidationError{Name: name, Issues: outputOutcome.Issues}
	}
	return projected, nil
}
