package worker

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/taskpact/taskpact/engine/contract"
	"github.com/taskpact/taskpact/engine/core"
	"github.com/taskpact/taskpact/engine/dispatch"
	"github.com/taskpact/taskpact/engine/schema"
	"github.com/taskpact/taskpact/pkg/logger"
)

// -----------------------------------------------------------------------------
// Trigger client
// -----------------------------------------------------------------------------

// Trigger starts, signals, and cancels contract workflows from the caller
// side of the boundary. Inputs are validated against the contract before
// anything reaches the runtime, so malformed triggers never start an
// execution. Schemas compile once at construction, mirroring how the
// registry compiles at registration time.
type Trigger struct {
	client    *Client
	contract  *contract.Contract
	workflows map[string]*triggerEntry
}

type triggerEntry struct {
	input   *schema.Compiled
	signals map[string]*schema.Compiled
}

func NewTrigger(client *Client, c *contract.Contract) (*Trigger, error) {
	workflows := make(map[string]*triggerEntry, len(c.WorkflowNames()))
	for _, name := range c.WorkflowNames() {
		wf, _ := c.Workflow(name)
		input, err := wf.Input.Compile()
		if err != nil {
			return nil, fmt.Errorf("workflow %q: input schema: %w", name, err)
		}
		signals := make(map[string]*schema.Compiled, len(wf.Signals))
		for signalName, def := range wf.Signals {
			compiled, err := def.Input.Compile()
			if err != nil {
				return nil, fmt.Errorf("signal %q on workflow %q: input schema: %w", signalName, name, err)
			}
			signals[signalName] = compiled
		}
		workflows[name] = &triggerEntry{input: input, signals: signals}
	}
	return &Trigger{client: client, contract: c, workflows: workflows}, nil
}

type WorkflowRun struct {
	WorkflowID core.ID     `json:"workflow_id"`
	Name       string      `json:"name"`
	Input      *core.Input `json:"input,omitempty"`
}

// TriggerWorkflow validates input against the contract and starts the named
// workflow on the contract's task queue.
func (t *Trigger) TriggerWorkflow(ctx context.Context, name string, input *core.Input) (*WorkflowRun, error) {
	entry, ok := t.workflows[name]
	if !ok {
		return nil, &dispatch.DefinitionNotFoundError{Name: name, Available: t.contract.WorkflowNames()}
	}
	outcome := entry.input.Validate(input.AsMap())
	if !outcome.Valid {
		return nil, &dispatch.InputValidationError{Name: name, Issues: outcome.Issues}
	}
	workflowID := core.MustNewID()
	options := client.StartWorkflowOptions{
		ID:        workflowID.String(),
		TaskQueue: t.contract.TaskQueue(),
	}
	if _, err := t.client.ExecuteWorkflow(ctx, options, name, input.AsMap()); err != nil {
		var already *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &already) {
			return nil, fmt.Errorf("workflow %q already running as %s: %w", name, workflowID, err)
		}
		return nil, fmt.Errorf("failed to start workflow %q: %w", name, err)
	}
	logger.FromContext(ctx).Info("workflow started",
		"workflow", name,
		"workflow_id", workflowID,
	)
	return &WorkflowRun{WorkflowID: workflowID, Name: name, Input: input}, nil
}

// SignalWorkflow validates the signal payload against the contract before
// delivering it to a running execution.
func (t *Trigger) SignalWorkflow(
	ctx context.Context,
	workflowID core.ID,
	workflowName string,
	signal string,
	payload *core.Input,
) error {
	entry, ok := t.workflows[workflowName]
	if !ok {
		return &dispatch.DefinitionNotFoundError{Name: workflowName, Available: t.contract.WorkflowNames()}
	}
	compiled, ok := entry.signals[signal]
	if !ok {
		return fmt.Errorf("signal %q is not declared on workflow %q", signal, workflowName)
	}
	outcome := compiled.Validate(payload.AsMap())
	if !outcome.Valid {
		return &dispatch.InputValidationError{Name: signal, Issues: outcome.Issues}
	}
	return t.client.SignalWorkflow(ctx, workflowID.String(), "", signal, payload.AsMap())
}

func (t *Trigger) CancelWorkflow(ctx context.Context, workflowID core.ID) error {
	return t.client.CancelWorkflow(ctx, workflowID.String(), "")
}

// AwaitResult blocks until a started workflow completes and decodes its
// validated output.
func (t *Trigger) AwaitResult(ctx context.Context, workflowID core.ID) (core.Output, error) {
	run := t.client.GetWorkflow(ctx, workflowID.String(), "")
	var output core.Output
	if err := run.Get(ctx, &output); err != nil {
		return nil, fmt.Errorf("workflow %s failed: %w", workflowID, err)
	}
	return output, nil
}
