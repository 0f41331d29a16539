package dispatch

import (
	"fmt"

	"github.com/taskpact/taskpact/engine/core"
	"github.com/taskpact/taskpact/engine/schema"
)

// settledOutcome is the unwrapped form of a Result-convention settlement.
type settledOutcome struct {
	value     core.Output
	domainErr *core.Error
}

// coerceInput turns an accepted raw payload into the handler-facing input
// form. Operation payloads are objects at the wire level.
func coerceInput(value any) (core.Input, error) {
	switch v := value.(type) {
	case nil:
		return core.Input{}, nil
	case core.Input:
		return v, nil
	case *core.Input:
		if v == nil {
			return core.Input{}, nil
		}
		return *v, nil
	case map[string]any:
		return core.Input(v), nil
	default:
		return nil, fmt.Errorf("operation payloads must be objects, got %T", value)
	}
}

// coerceOutput projects a handler's return value onto the wire-level map
// form the contract judges. Typed structs are accepted via their JSON
// projection.
func coerceOutput(value any) (core.Output, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case core.Output:
		return v, nil
	case *core.Output:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case map[string]any:
		return core.Output(v), nil
	default:
		projected, err := core.AsMapDefault(v)
		if err != nil {
			return nil, fmt.Errorf("operation outputs must be objects, got %T: %w", value, err)
		}
		return core.Output(projected), nil
	}
}

func issueFromError(err error) []schema.Issue {
	return []schema.Issue{{Message: err.Error()}}
}
