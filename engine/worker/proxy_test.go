package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpact/taskpact/engine/contract"
	"github.com/taskpact/taskpact/engine/core"
	"github.com/taskpact/taskpact/engine/schema"
)

func proxyContract(t *testing.T) *contract.Contract {
	t.Helper()
	numberObject := schema.Schema{
		"type": "object",
		"properties": map[string]any{
			"n": map[string]any{"type": "number"},
		},
		"required": []string{"n"},
	}
	c, err := contract.New(context.Background(), &contract.Definition{
		TaskQueue: "proxy-test",
		Activities: map[string]*contract.Operation{
			"double": {Input: numberObject, Output: numberObject},
		},
		Workflows: map[string]*contract.Workflow{
			"compute": {
				Input:  numberObject,
				Output: numberObject,
				Activities: map[string]*contract.Operation{
					"scale": {Input: numberObject, Output: numberObject},
				},
			},
		},
	})
	require.NoError(t, err)
	return c
}

func TestNewProxy(t *testing.T) {
	t.Run("Should expose the merged effective names", func(t *testing.T) {
		proxy, err := NewProxy(proxyContract(t), "compute")
		require.NoError(t, err)
		assert.Equal(t, []string{"double", "scale"}, proxy.Names())
	})
	t.Run("Should expose only global names in the global context", func(t *testing.T) {
		proxy, err := NewProxy(proxyContract(t), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"double"}, proxy.Names())
	})
	t.Run("Should fail for a workflow outside the contract", func(t *testing.T) {
		_, err := NewProxy(proxyContract(t), "missing")
		assert.Error(t, err)
	})
}

func TestDecodeOutput(t *testing.T) {
	t.Run("Should decode an output map into a typed value", func(t *testing.T) {
		type doubled struct {
			N float64 `json:"n"`
		}
		decoded, err := DecodeOutput[doubled](core.Output{"n": float64(6)})
		require.NoError(t, err)
		assert.Equal(t, doubled{N: 6}, decoded)
	})
}
