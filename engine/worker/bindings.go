package worker

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/taskpact/taskpact/engine/contract"
	"github.com/taskpact/taskpact/engine/core"
	"github.com/taskpact/taskpact/engine/dispatch"
	"github.com/taskpact/taskpact/engine/schema"
)

// -----------------------------------------------------------------------------
// Signal / query / update bindings
// -----------------------------------------------------------------------------

// Bindings wires a workflow implementation's signal, query, and update
// handlers to the contract, enforcing declared input shapes before any
// handler runs. Built once per workflow execution from immutable contract
// state; schema compilation is deterministic, so it is safe inside workflow
// code.
type Bindings struct {
	workflow   string
	definition *contract.Workflow
}

func NewBindings(c *contract.Contract, workflowName string) (*Bindings, error) {
	wf, ok := c.Workflow(workflowName)
	if !ok {
		return nil, fmt.Errorf("workflow %q is not part of the contract", workflowName)
	}
	return &Bindings{workflow: workflowName, definition: wf}, nil
}

// OnSignal drains the named signal channel, validating each payload against
// the contract. Invalid payloads are logged and dropped; signals are
// fire-and-forget, so there is no caller to report them to.
func (b *Bindings) OnSignal(ctx workflow.Context, name string, fn func(core.Input)) error {
	def, ok := b.definition.Signals[name]
	if !ok {
		return fmt.Errorf("signal %q is not declared on workflow %q", name, b.workflow)
	}
	input, err := def.Input.Compile()
	if err != nil {
		return fmt.Errorf("signal %q: input schema: %w", name, err)
	}
	channel := workflow.GetSignalChannel(ctx, name)
	workflow.Go(ctx, func(ctx workflow.Context) {
		log := workflow.GetLogger(ctx)
		for {
			var payload core.Input
			if !channel.Receive(ctx, &payload) {
				return
			}
			outcome := input.Validate(payload.AsMap())
			if !outcome.Valid {
				log.Warn("dropping invalid signal payload",
					"signal", name,
					"issues", outcome.Issues,
				)
				continue
			}
			fn(payload)
		}
	})
	return nil
}

// SetQueryHandler registers a contract-checked query handler: input is
// validated before fn runs, output before it is returned.
func (b *Bindings) SetQueryHandler(
	ctx workflow.Context,
	name string,
	fn func(core.Input) (core.Output, error),
) error {
	def, ok := b.definition.Queries[name]
	if !ok {
		return fmt.Errorf("query %q is not declared on workflow %q", name, b.workflow)
	}
	input, output, err := compileOperation(name, def)
	if err != nil {
		return err
	}
	return workflow.SetQueryHandler(ctx, name, func(payload core.Input) (core.Output, error) {
		outcome := input.Validate(payload.AsMap())
		if !outcome.Valid {
			return nil, ToApplicationError(&dispatch.InputValidationError{Name: name, Issues: outcome.Issues})
		}
		value, err := fn(payload)
		if err != nil {
			return nil, ToApplicationError(dispatch.NormalizeError(err))
		}
		if def.Output == nil {
			return nil, nil
		}
		produced := output.Validate(value.AsMap())
		if !produced.Valid {
			return nil, ToApplicationError(&dispatch.OutputValidationError{Name: name, Issues: produced.Issues})
		}
		return value, nil
	})
}

// SetUpdateHandler registers a contract-checked update handler. The
// contract-backed validator rejects invalid inputs before the update is
// accepted into history.
func (b *Bindings) SetUpdateHandler(
	ctx workflow.Context,
	name string,
	fn func(workflow.Context, core.Input) (core.Output, error),
) error {
	def, ok := b.definition.Updates[name]
	if !ok {
		return fmt.Errorf("update %q is not declared on workflow %q", name, b.workflow)
	}
	input, output, err := compileOperation(name, def)
	if err != nil {
		return err
	}
	handler := func(ctx workflow.Context, payload core.Input) (core.Output, error) {
		value, err := fn(ctx, payload)
		if err != nil {
			return nil, ToApplicationError(dispatch.NormalizeError(err))
		}
		if def.Output == nil {
			return nil, nil
		}
		produced := output.Validate(value.AsMap())
		if !produced.Valid {
			return nil, ToApplicationError(&dispatch.OutputValidationError{Name: name, Issues: produced.Issues})
		}
		return value, nil
	}
	validate := func(payload core.Input) error {
		outcome := input.Validate(payload.AsMap())
		if !outcome.Valid {
			return ToApplicationError(&dispatch.InputValidationError{Name: name, Issues: outcome.Issues})
		}
		return nil
	}
	return workflow.SetUpdateHandlerWithOptions(ctx, name, handler, workflow.UpdateHandlerOptions{
		Validator: validate,
	})
}

func compileOperation(name string, def *contract.Operation) (*schema.Compiled, *schema.Compiled, error) {
	input, err := def.Input.Compile()
	if err != nil {
		return nil, nil, fmt.Errorf("operation %q: input schema: %w", name, err)
	}
	output, err := def.Output.Compile()
	if err != nil {
		return nil, nil, fmt.Errorf("operation %q: output schema: %w", name, err)
	}
	return input, output, nil
}
