package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpact/taskpact/engine/schema"
)

func numberInput() schema.Schema {
	return schema.Schema{
		"type": "object",
		"properties": map[string]any{
			"n": map[string]any{"type": "number"},
		},
		"required": []string{"n"},
	}
}

func validDefinition() *Definition {
	return &Definition{
		TaskQueue: "Order Processing",
		Activities: map[string]*Operation{
			"double": {Input: numberInput(), Output: numberInput()},
		},
		Workflows: map[string]*Workflow{
			"checkout": {
				Input:  numberInput(),
				Output: numberInput(),
				Activities: map[string]*Operation{
					"double": {Input: numberInput(), Output: numberInput()},
					"charge": {Input: numberInput(), Output: numberInput()},
				},
				Signals: map[string]*Operation{
					"cancel": {Input: schema.Schema{"type": "object"}},
				},
			},
			"refund": {
				Input:  numberInput(),
				Output: numberInput(),
			},
		},
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("Should build a contract and slugify the task queue", func(t *testing.T) {
		c, err := New(ctx, validDefinition())
		require.NoError(t, err)
		assert.Equal(t, "order-processing", c.TaskQueue())
		assert.Equal(t, []string{"checkout", "refund"}, c.WorkflowNames())
	})
	t.Run("Should reject a nil definition", func(t *testing.T) {
		_, err := New(ctx, nil)
		assert.Error(t, err)
	})
	t.Run("Should reject an empty task queue", func(t *testing.T) {
		def := validDefinition()
		def.TaskQueue = ""
		_, err := New(ctx, def)
		assert.Error(t, err)
	})
	t.Run("Should reject a contract without workflows", func(t *testing.T) {
		def := validDefinition()
		def.Workflows = nil
		_, err := New(ctx, def)
		assert.Error(t, err)
	})
	t.Run("Should reject a signal declaring an output", func(t *testing.T) {
		def := validDefinition()
		def.Workflows["checkout"].Signals["cancel"] = &Operation{
			Input:  schema.Schema{"type": "object"},
			Output: numberInput(),
		}
		_, err := New(ctx, def)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fire-and-forget")
	})
	t.Run("Should reject a nil global activity", func(t *testing.T) {
		def := validDefinition()
		def.Activities["ghost"] = nil
		_, err := New(ctx, def)
		assert.Error(t, err)
	})
	t.Run("Should reject a nil workflow-scoped activity", func(t *testing.T) {
		def := validDefinition()
		def.Workflows["checkout"].Activities["ghost"] = nil
		_, err := New(ctx, def)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})
	t.Run("Should run struct validation before operation rules", func(t *testing.T) {
		def := validDefinition()
		def.TaskQueue = ""
		def.Activities["ghost"] = nil
		_, err := New(ctx, def)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "ghost")
	})
}

func TestEffectiveActivities(t *testing.T) {
	ctx := context.Background()

	t.Run("Should let workflow-scoped definitions shadow global ones", func(t *testing.T) {
		c, err := New(ctx, validDefinition())
		require.NoError(t, err)
		effective, err := c.EffectiveActivities("checkout")
		require.NoError(t, err)
		assert.Len(t, effective, 2)
		local := c.workflows["checkout"].Activities["double"]
		assert.Same(t, local, effective["double"])
		assert.NotNil(t, effective["charge"])
	})
	t.Run("Should expose only global definitions for the global context", func(t *testing.T) {
		c, err := New(ctx, validDefinition())
		require.NoError(t, err)
		effective, err := c.EffectiveActivities("")
		require.NoError(t, err)
		assert.Len(t, effective, 1)
		assert.NotNil(t, effective["double"])
	})
	t.Run("Should fall back to global definitions in a workflow without locals", func(t *testing.T) {
		c, err := New(ctx, validDefinition())
		require.NoError(t, err)
		effective, err := c.EffectiveActivities("refund")
		require.NoError(t, err)
		assert.Len(t, effective, 1)
		global := c.activities["double"]
		assert.Same(t, global, effective["double"])
	})
	t.Run("Should fail for a workflow outside the contract", func(t *testing.T) {
		c, err := New(ctx, validDefinition())
		require.NoError(t, err)
		_, err = c.EffectiveActivities("missing")
		assert.Error(t, err)
	})
}
