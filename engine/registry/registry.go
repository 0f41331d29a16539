package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/taskpact/taskpact/engine/contract"
	"github.com/taskpact/taskpact/engine/core"
	"github.com/taskpact/taskpact/engine/schema"
	"github.com/taskpact/taskpact/pkg/logger"
)

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// Handler is one operation implementation. It receives input the contract
// already accepted and may report failure either by returning a non-nil
// error, or by returning a dispatch.Deferred value carrying an explicit
// Result. Both styles reach callers through the same normalized error shape.
type Handler func(ctx context.Context, input core.Input) (any, error)

// -----------------------------------------------------------------------------
// Effective table
// -----------------------------------------------------------------------------

// Entry binds one effective definition to its handler, with both schemas
// compiled ahead of any traffic.
type Entry struct {
	Name       string
	Definition *contract.Operation
	Handler    Handler
	Input      *schema.Compiled
	Output     *schema.Compiled
}

// HasOutput reports whether callers get a value back from this operation.
func (e *Entry) HasOutput() bool {
	return e.Definition != nil && e.Definition.Output != nil
}

// Table is the merged, shadowed name-to-entry map used for dispatch in one
// workflow context. It is built once at registration time and never mutated,
// so concurrent lookups need no locking.
type Table struct {
	workflow string
	entries  map[string]*Entry
	names    []string
}

func (t *Table) Workflow() string {
	return t.workflow
}

func (t *Table) Lookup(name string) (*Entry, bool) {
	entry, ok := t.entries[name]
	return entry, ok
}

// Names returns the sorted effective operation names. The slice is shared;
// callers must not mutate it.
func (t *Table) Names() []string {
	return t.names
}

func (t *Table) Len() int {
	return len(t.entries)
}

// -----------------------------------------------------------------------------
// Build
// -----------------------------------------------------------------------------

type buildOptions struct {
	lenientOrphans bool
}

type BuildOption func(*buildOptions)

// WithLenientOrphans downgrades orphan handlers from a hard registration
// failure to a logged warning. They are never silently dropped.
func WithLenientOrphans() BuildOption {
	return func(o *buildOptions) {
		o.lenientOrphans = true
	}
}

// Build derives the effective table for one workflow context (empty name =
// global context) and binds handlers to it. Every configuration problem
// surfaces here, before any traffic is dispatched: unbound definitions,
// orphan handlers, and schemas that fail to compile.
func Build(
	ctx context.Context,
	c *contract.Contract,
	workflowName string,
	handlers map[string]Handler,
	opts ...BuildOption,
) (*Table, error) {
	options := buildOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	definitions, err := c.EffectiveActivities(workflowName)
	if err != nil {
		return nil, err
	}
	var unbound []string
	entries := make(map[string]*Entry, len(definitions))
	for name, def := range definitions {
		handler, ok := handlers[name]
		if !ok || handler == nil {
			unbound = append(unbound, name)
			continue
		}
		input, err := def.Input.Compile()
		if err != nil {
			return nil, fmt.Errorf("operation %q: input schema: %w", name, err)
		}
		output, err := def.Output.Compile()
		if err != nil {
			return nil, fmt.Errorf("operation %q: output schema: %w", name, err)
		}
		entries[name] = &Entry{
			Name:       name,
			Definition: def,
			Handler:    handler,
			Input:      input,
			Output:     output,
		}
	}
	if len(unbound) > 0 {
		sort.Strings(unbound)
		return nil, &UnboundDefinitionError{Workflow: workflowName, Names: unbound}
	}
	var orphans []string
	for name := range handlers {
		if _, ok := definitions[name]; !ok {
			orphans = append(orphans, name)
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		if !options.lenientOrphans {
			return nil, &OrphanHandlerError{Workflow: workflowName, Names: orphans}
		}
		logger.FromContext(ctx).Warn(
			"handlers registered without a matching definition; they are unreachable by name",
			"workflow", workflowName,
			"handlers", strings.Join(orphans, ", "),
		)
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Table{workflow: workflowName, entries: entries, names: names}, nil
}

// -----------------------------------------------------------------------------
// Registration errors
// -----------------------------------------------------------------------------

// UnboundDefinitionError reports contract operations with no implementation.
// The process must not start serving with one of these outstanding.
type UnboundDefinitionError struct {
	Workflow string
	Names    []string
}

func (e *UnboundDefinitionError) Error() string {
	return fmt.Sprintf(
		"no handler bound for %s in %s",
		strings.Join(e.Names, ", "),
		contextLabel(e.Workflow),
	)
}

// OrphanHandlerError reports handlers whose names appear in no effective
// definition. Such handlers are dead code, unreachable by lookup.
type OrphanHandlerError struct {
	Workflow string
	Names    []string
}

func (e *OrphanHandlerError) Error() string {
	return fmt.Sprintf(
		"handlers %s have no definition in %s",
		strings.Join(e.Names, ", "),
		contextLabel(e.Workflow),
	)
}

func contextLabel(workflow string) string {
	if workflow == "" {
		return "the global context"
	}
	return fmt.Sprintf("workflow %q", workflow)
}
