package worker

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalworker "go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/taskpact/taskpact/engine/contract"
	"github.com/taskpact/taskpact/engine/core"
	"github.com/taskpact/taskpact/engine/dispatch"
	"github.com/taskpact/taskpact/engine/registry"
	"github.com/taskpact/taskpact/engine/schema"
	"github.com/taskpact/taskpact/pkg/logger"
)

// -----------------------------------------------------------------------------
// Contract-backed Temporal worker
// -----------------------------------------------------------------------------

// WorkflowFunc is a workflow implementation registered against a contract
// workflow name. Its output is validated against the contract's declared
// output shape before it is returned to the runtime.
type WorkflowFunc func(ctx workflow.Context, input core.Input) (core.Output, error)

// Worker binds a contract to a Temporal worker on the contract's task
// queue. All registration happens before Start; the worker shares only
// immutable state with in-flight calls.
type Worker struct {
	client   *Client
	contract *contract.Contract
	worker   temporalworker.Worker
}

func NewWorker(
	ctx context.Context,
	client *Client,
	c *contract.Contract,
	options *temporalworker.Options,
) (*Worker, error) {
	if c == nil {
		return nil, fmt.Errorf("contract is required")
	}
	log := logger.FromContext(ctx)
	w := client.NewWorker(c.TaskQueue(), options)
	log.Debug("worker created", "task_queue", c.TaskQueue())
	return &Worker{
		client:   client,
		contract: c,
		worker:   w,
	}, nil
}

func (w *Worker) Contract() *contract.Contract {
	return w.contract
}

func (w *Worker) TaskQueue() string {
	return w.contract.TaskQueue()
}

// GetClient exposes the Temporal client for signal and trigger operations.
func (w *Worker) GetClient() client.Client {
	return w.client
}

// RegisterActivities builds the effective table for one workflow context
// (empty name = global context), wraps it in a dispatcher, and registers one
// Temporal activity per effective entry under its dispatch name.
// Registration fails fast on unbound definitions and orphan handlers.
func (w *Worker) RegisterActivities(
	ctx context.Context,
	workflowName string,
	handlers map[string]registry.Handler,
	opts ...registry.BuildOption,
) error {
	table, err := registry.Build(ctx, w.contract, workflowName, handlers, opts...)
	if err != nil {
		return fmt.Errorf("failed to register activities: %w", err)
	}
	dispatcher := dispatch.New(table)
	for _, name := range table.Names() {
		registered := DispatchName(workflowName, name)
		w.worker.RegisterActivityWithOptions(
			w.activityFunc(dispatcher, name),
			activity.RegisterOptions{Name: registered},
		)
	}
	logger.FromContext(ctx).Info("activities registered",
		"workflow", workflowName,
		"count", table.Len(),
	)
	return nil
}

// activityFunc adapts one dispatcher entry to the Temporal activity shape.
// Taxonomy errors cross the boundary as application errors whose type field
// carries the error kind; retry policy stays with the runtime.
func (w *Worker) activityFunc(
	dispatcher *dispatch.Dispatcher,
	name string,
) func(ctx context.Context, input core.Input) (core.Output, error) {
	return func(ctx context.Context, input core.Input) (core.Output, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		output, err := dispatcher.Invoke(ctx, name, map[string]any(input))
		if err != nil {
			return nil, ToApplicationError(err)
		}
		return output, nil
	}
}

// RegisterWorkflow registers a workflow implementation under its contract
// name, wrapping it so the declared output shape is enforced before the
// result reaches the runtime. Input validation happens on the trigger side,
// before any execution is started.
func (w *Worker) RegisterWorkflow(name string, fn WorkflowFunc) error {
	wf, ok := w.contract.Workflow(name)
	if !ok {
		return fmt.Errorf("workflow %q is not part of the contract", name)
	}
	output, err := wf.Output.Compile()
	if err != nil {
		return fmt.Errorf("workflow %q: output schema: %w", name, err)
	}
	w.worker.RegisterWorkflowWithOptions(
		validatedWorkflow(name, output, fn),
		workflow.RegisterOptions{Name: name},
	)
	return nil
}

// validatedWorkflow wraps a workflow implementation so its result is checked
// against the contract's declared output shape before it reaches the runtime.
func validatedWorkflow(name string, output *schema.Compiled, fn WorkflowFunc) WorkflowFunc {
	return func(ctx workflow.Context, input core.Input) (core.Output, error) {
		result, err := fn(ctx, input)
		if err != nil {
			return nil, err
		}
		outcome := output.Validate(result.AsMap())
		if !outcome.Valid {
			return nil, ToApplicationError(&dispatch.OutputValidationError{
				Name:   name,
				Issues: outcome.Issues,
			})
		}
		return result, nil
	}
}

func (w *Worker) Start(ctx context.Context) error {
	if err := w.worker.Start(); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	logger.FromContext(ctx).Info("worker started", "task_queue", w.contract.TaskQueue())
	return nil
}

func (w *Worker) Stop(ctx context.Context) {
	w.worker.Stop()
	w.client.Close()
	logger.FromContext(ctx).Info("worker stopped", "task_queue", w.contract.TaskQueue())
}

// DispatchName is the Temporal registration name for an effective entry.
// Workflow-scoped tables qualify their entries so two workflows can bind
// different handlers (or shadowed definitions) to the same operation name on
// one shared task queue.
func DispatchName(workflowName, operation string) string {
	if workflowName == "" {
		return operation
	}
	return workflowName + "." + operation
}
