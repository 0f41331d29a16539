package worker

import (
	"sort"

	"go.temporal.io/sdk/workflow"

	"github.com/taskpact/taskpact/engine/contract"
	"github.com/taskpact/taskpact/engine/core"
	"github.com/taskpact/taskpact/engine/dispatch"
)

// -----------------------------------------------------------------------------
// Typed activity proxy
// -----------------------------------------------------------------------------

// Proxy lets workflow code invoke effective activities by contract name.
// It resolves names against the same merged, shadowed table the dispatcher
// serves, so a workflow-scoped definition always routes to the
// workflow-scoped handler.
type Proxy struct {
	workflow string
	entries  map[string]*contract.Operation
	names    []string
}

// NewProxy derives the effective activity view for one workflow context.
// The proxy is immutable and safe to build once and reuse across workflow
// executions.
func NewProxy(c *contract.Contract, workflowName string) (*Proxy, error) {
	entries, err := c.EffectiveActivities(workflowName)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Proxy{
		workflow: workflowName,
		entries:  entries,
		names:    names,
	}, nil
}

// Names returns the sorted effective activity names visible to this proxy.
func (p *Proxy) Names() []string {
	return p.names
}

// Execute invokes an effective activity by name with the ambient activity
// options already on ctx.
func (p *Proxy) Execute(ctx workflow.Context, name string, input any) workflow.Future {
	if _, ok := p.entries[name]; !ok {
		fut, settable := workflow.NewFuture(ctx)
		settable.SetError(&dispatch.DefinitionNotFoundError{Name: name, Available: p.names})
		return fut
	}
	return workflow.ExecuteActivity(ctx, DispatchName(p.workflow, name), input)
}

// ExecuteWithOptions invokes an effective activity with per-call options
// (timeouts, retry policy) passed through opaquely to the runtime.
func (p *Proxy) ExecuteWithOptions(
	ctx workflow.Context,
	name string,
	input any,
	options workflow.ActivityOptions,
) workflow.Future {
	return p.Execute(workflow.WithActivityOptions(ctx, options), name, input)
}

// DecodeOutput decodes an activity result map into a typed value.
func DecodeOutput[T any](output core.Output) (T, error) {
	return core.FromMapDefault[T](output.AsMap())
}
