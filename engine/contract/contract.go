package contract

import (
	"context"
	"fmt"
	"sort"

	"github.com/gosimple/slug"

	"github.com/taskpact/taskpact/engine/schema"
)

// -----------------------------------------------------------------------------
// Definitions
// -----------------------------------------------------------------------------

// Operation declares one named unit of work: an input shape and, unless the
// operation is fire-and-forget, an output shape. A nil Output means callers
// get no value back (signals use this).
type Operation struct {
	Input  schema.Schema `json:"input"`
	Output schema.Schema `json:"output,omitempty"`
}

// Workflow declares a workflow's own shapes plus the operations it may
// invoke. Activities declared here are scoped to this workflow and shadow
// same-named global activities.
type Workflow struct {
	Input      schema.Schema         `json:"input"`
	Output     schema.Schema         `json:"output"`
	Activities map[string]*Operation `json:"activities,omitempty"`
	Signals    map[string]*Operation `json:"signals,omitempty"`
	Queries    map[string]*Operation `json:"queries,omitempty"`
	Updates    map[string]*Operation `json:"updates,omitempty"`
}

// Contract is the immutable description of everything a task queue exposes.
// It is built once at process start; every derived table shares it without
// synchronization.
type Contract struct {
	taskQueue  string
	workflows  map[string]*Workflow
	activities map[string]*Operation
}

type Definition struct {
	TaskQueue  string                `json:"task_queue"  validate:"required"`
	Workflows  map[string]*Workflow  `json:"workflows"   validate:"required,min=1,dive,required"`
	Activities map[string]*Operation `json:"activities,omitempty"`
}

// New validates a definition and freezes it into a Contract. The task queue
// is slugified so it stays a stable routing key regardless of how operators
// spell it.
func New(ctx context.Context, def *Definition) (*Contract, error) {
	if def == nil {
		return nil, fmt.Errorf("contract definition is nil")
	}
	validator := schema.NewCompositeValidator(
		schema.NewStructValidator(def),
		&operationRules{def: def},
	)
	if err := validator.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid contract definition: %w", err)
	}
	return &Contract{
		taskQueue:  slug.Make(def.TaskQueue),
		workflows:  def.Workflows,
		activities: def.Activities,
	}, nil
}

// operationRules checks what struct tags cannot express: operation maps keyed
// by non-empty names, no nil definitions, signals without outputs.
type operationRules struct {
	def *Definition
}

func (r *operationRules) Validate(_ context.Context) error {
	for name, wf := range r.def.Workflows {
		if name == "" {
			return fmt.Errorf("contract has a workflow with an empty name")
		}
		if wf == nil {
			return fmt.Errorf("workflow %q has no definition", name)
		}
		for signal, op := range wf.Signals {
			if op != nil && op.Output != nil {
				return fmt.Errorf("signal %q on workflow %q declares an output; signals are fire-and-forget", signal, name)
			}
		}
		for activityName, op := range wf.Activities {
			if activityName == "" {
				return fmt.Errorf("workflow %q has an activity with an empty name", name)
			}
			if op == nil {
				return fmt.Errorf("activity %q on workflow %q has no definition", activityName, name)
			}
		}
	}
	for name, op := range r.def.Activities {
		if name == "" {
			return fmt.Errorf("contract has a global activity with an empty name")
		}
		if op == nil {
			return fmt.Errorf("global activity %q has no definition", name)
		}
	}
	return nil
}

func (c *Contract) TaskQueue() string {
	return c.taskQueue
}

func (c *Contract) Workflow(name string) (*Workflow, bool) {
	wf, ok := c.workflows[name]
	return wf, ok
}

func (c *Contract) WorkflowNames() []string {
	names := make([]string, 0, len(c.workflows))
	for name := range c.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Contract) GlobalActivities() map[string]*Operation {
	return c.activities
}

// EffectiveActivities merges the global activity set with a workflow's local
// one, right-biased: a workflow-scoped definition shadows a same-named
// global definition. An empty workflow name yields the global context.
func (c *Contract) EffectiveActivities(workflowName string) (map[string]*Operation, error) {
	effective := make(map[string]*Operation, len(c.activities))
	for name, op := range c.activities {
		effective[name] = op
	}
	if workflowName == "" {
		return effective, nil
	}
	wf, ok := c.workflows[workflowName]
	if !ok {
		return nil, fmt.Errorf("workflow %q is not part of the contract", workflowName)
	}
	for name, op := range wf.Activities {
		effective[name] = op
	}
	return effective, nil
}
