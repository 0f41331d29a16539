package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpact/taskpact/engine/contract"
	"github.com/taskpact/taskpact/engine/core"
	"github.com/taskpact/taskpact/engine/registry"
	"github.com/taskpact/taskpact/engine/schema"
	"github.com/taskpact/taskpact/pkg/future"
	"github.com/taskpact/taskpact/pkg/result"
)

func numberObject() schema.Schema {
	return schema.Schema{
		"type": "object",
		"properties": map[string]any{
			"n": map[string]any{"type": "number"},
		},
		"required":             []string{"n"},
		"additionalProperties": false,
	}
}

func doubleContract(t *testing.T) *contract.Contract {
	t.Helper()
	c, err := contract.New(context.Background(), &contract.Definition{
		TaskQueue: "dispatch-test",
		Activities: map[string]*contract.Operation{
			"double": {Input: numberObject(), Output: numberObject()},
			"notify": {Input: numberObject()},
		},
		Workflows: map[string]*contract.Workflow{
			"compute": {Input: numberObject(), Output: numberObject()},
		},
	})
	require.NoError(t, err)
	return c
}

func newDispatcher(t *testing.T, handlers map[string]registry.Handler) *Dispatcher {
	t.Helper()
	table, err := registry.Build(context.Background(), doubleContract(t), "", handlers, registry.WithLenientOrphans())
	require.NoError(t, err)
	return New(table)
}

func countingDouble(calls *atomic.Int32) registry.Handler {
	return func(_ context.Context, input core.Input) (any, error) {
		calls.Add(1)
		n := input.Prop("n").(float64)
		return core.Output{"n": n * 2}, nil
	}
}

func noopNotify(_ context.Context, _ core.Input) (any, error) {
	return nil, nil
}

func TestInvoke(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return the accepted output for valid input", func(t *testing.T) {
		var calls atomic.Int32
		d := newDispatcher(t, map[string]registry.Handler{
			"double": countingDouble(&calls),
			"notify": noopNotify,
		})
		output, err := d.Invoke(ctx, "double", map[string]any{"n": float64(3)})
		require.NoError(t, err)
		assert.Equal(t, core.Output{"n": float64(6)}, output)
		assert.Equal(t, int32(1), calls.Load())
	})
	t.Run("Should fail unknown names without touching any handler", func(t *testing.T) {
		var calls atomic.Int32
		d := newDispatcher(t, map[string]registry.Handler{
			"double": countingDouble(&calls),
			"notify": noopNotify,
		})
		_, err := d.Invoke(ctx, "triple", map[string]any{"n": float64(3)})
		var notFound *DefinitionNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "triple", notFound.Name)
		assert.Equal(t, []string{"double", "notify"}, notFound.Available)
		assert.Equal(t, int32(0), calls.Load())
	})
	t.Run("Should reject invalid input before the handler runs", func(t *testing.T) {
		var calls atomic.Int32
		d := newDispatcher(t, map[string]registry.Handler{
			"double": countingDouble(&calls),
			"notify": noopNotify,
		})
		_, err := d.Invoke(ctx, "double", map[string]any{"n": "x"})
		var badInput *InputValidationError
		require.ErrorAs(t, err, &badInput)
		assert.Equal(t, "double", badInput.Name)
		assert.NotEmpty(t, badInput.Issues)
		assert.Equal(t, int32(0), calls.Load())
	})
	t.Run("Should withhold malformed output after exactly one call", func(t *testing.T) {
		var calls atomic.Int32
		d := newDispatcher(t, map[string]registry.Handler{
			"double": func(_ context.Context, _ core.Input) (any, error) {
				calls.Add(1)
				return core.Output{"n": "six"}, nil
			},
			"notify": noopNotify,
		})
		output, err := d.Invoke(ctx, "double", map[string]any{"n": float64(3)})
		var badOutput *OutputValidationError
		require.ErrorAs(t, err, &badOutput)
		assert.Equal(t, "double", badOutput.Name)
		assert.Nil(t, output)
		assert.Equal(t, int32(1), calls.Load())
	})
	t.Run("Should skip output validation for fire-and-forget operations", func(t *testing.T) {
		d := newDispatcher(t, map[string]registry.Handler{
			"double": countingDouble(new(atomic.Int32)),
			"notify": noopNotify,
		})
		output, err := d.Invoke(ctx, "notify", map[string]any{"n": float64(1)})
		require.NoError(t, err)
		assert.Nil(t, output)
	})
	t.Run("Should accept typed struct returns via their JSON projection", func(t *testing.T) {
		type doubled struct {
			N float64 `json:"n"`
		}
		d := newDispatcher(t, map[string]registry.Handler{
			"double": func(_ context.Context, input core.Input) (any, error) {
				return doubled{N: input.Prop("n").(float64) * 2}, nil
			},
			"notify": noopNotify,
		})
		output, err := d.Invoke(ctx, "double", map[string]any{"n": float64(5)})
		require.NoError(t, err)
		assert.Equal(t, core.Output{"n": float64(10)}, output)
	})
	t.Run("Should stop when the caller's context is cancelled", func(t *testing.T) {
		var calls atomic.Int32
		d := newDispatcher(t, map[string]registry.Handler{
			"double": countingDouble(&calls),
			"notify": noopNotify,
		})
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := d.Invoke(cancelled, "double", map[string]any{"n": float64(3)})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(0), calls.Load())
	})
}

func TestInvokeErrorConventions(t *testing.T) {
	ctx := context.Background()

	t.Run("Should normalize a plain returned error to code UNKNOWN", func(t *testing.T) {
		d := newDispatcher(t, map[string]registry.Handler{
			"double": func(_ context.Context, _ core.Input) (any, error) {
				return nil, errors.New("downstream unavailable")
			},
			"notify": noopNotify,
		})
		_, err := d.Invoke(ctx, "double", map[string]any{"n": float64(3)})
		var execErr *ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, CodeUnknown, execErr.Code)
		assert.Equal(t, "downstream unavailable", execErr.Message)
		assert.NotNil(t, execErr.Cause)
	})
	t.Run("Should keep the code of a returned coded error", func(t *testing.T) {
		d := newDispatcher(t, map[string]registry.Handler{
			"double": func(_ context.Context, _ core.Input) (any, error) {
				return nil, core.NewError(errors.New("quota exceeded"), "QUOTA_EXCEEDED", nil)
			},
			"notify": noopNotify,
		})
		_, err := d.Invoke(ctx, "double", map[string]any{"n": float64(3)})
		var execErr *ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, "QUOTA_EXCEEDED", execErr.Code)
	})
	t.Run("Should unwrap a Result-convention success", func(t *testing.T) {
		d := newDispatcher(t, map[string]registry.Handler{
			"double": func(_ context.Context, input core.Input) (any, error) {
				n := input.Prop("n").(float64)
				return future.Value(result.Ok[core.Output, *core.Error](core.Output{"n": n * 2})), nil
			},
			"notify": noopNotify,
		})
		output, err := d.Invoke(ctx, "double", map[string]any{"n": float64(4)})
		require.NoError(t, err)
		assert.Equal(t, core.Output{"n": float64(8)}, output)
	})
	t.Run("Should normalize a Result-convention failure preserving the domain error", func(t *testing.T) {
		domainErr := core.NewError(errors.New("bad operand"), "BAD_OPERAND", map[string]any{"n": "x"})
		d := newDispatcher(t, map[string]registry.Handler{
			"double": func(_ context.Context, _ core.Input) (any, error) {
				return future.Value(result.Err[core.Output](domainErr)), nil
			},
			"notify": noopNotify,
		})
		_, err := d.Invoke(ctx, "double", map[string]any{"n": float64(3)})
		var execErr *ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, "BAD_OPERAND", execErr.Code)
		assert.ErrorIs(t, execErr, domainErr)
	})
	t.Run("Should validate the output of a Result-convention success", func(t *testing.T) {
		d := newDispatcher(t, map[string]registry.Handler{
			"double": func(_ context.Context, _ core.Input) (any, error) {
				return future.Value(result.Ok[core.Output, *core.Error](core.Output{"n": "six"})), nil
			},
			"notify": noopNotify,
		})
		_, err := d.Invoke(ctx, "double", map[string]any{"n": float64(3)})
		var badOutput *OutputValidationError
		assert.ErrorAs(t, err, &badOutput)
	})
}

func TestEndToEnd(t *testing.T) {
	// Contract declares activity double {n} -> {n}; the implementation
	// doubles. The four observable behaviors of the boundary, end to end.
	ctx := context.Background()
	var calls atomic.Int32
	d := newDispatcher(t, map[string]registry.Handler{
		"double": countingDouble(&calls),
		"notify": noopNotify,
	})

	t.Run("Should compute double of 3", func(t *testing.T) {
		output, err := d.Invoke(ctx, "double", map[string]any{"n": float64(3)})
		require.NoError(t, err)
		assert.Equal(t, core.Output{"n": float64(6)}, output)
	})
	t.Run("Should report triple as not found with the available set", func(t *testing.T) {
		_, err := d.Invoke(ctx, "triple", map[string]any{"n": float64(3)})
		var notFound *DefinitionNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "triple", notFound.Name)
		assert.Contains(t, notFound.Available, "double")
	})
	t.Run("Should reject a string operand without calling the implementation", func(t *testing.T) {
		before := calls.Load()
		_, err := d.Invoke(ctx, "double", map[string]any{"n": "x"})
		var badInput *InputValidationError
		require.ErrorAs(t, err, &badInput)
		assert.Equal(t, before, calls.Load())
	})
}
