package core

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mohae/deepcopy"
)

// DeepCopyMap returns a deep copy of the provided map[string]any.
func DeepCopyMap(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}
	copied, ok := deepcopy.Copy(m).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to copy map")
	}
	return copied, nil
}

// AsMapDefault projects any JSON-serializable value onto a plain map. Typed
// struct values returned by handlers go through this before output
// validation, so the contract always judges the wire shape.
func AsMapDefault(value any) (map[string]any, error) {
	bytes, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(bytes, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value to map: %w", err)
	}
	return out, nil
}

// FromMapDefault decodes a map form into a typed value.
func FromMapDefault[T any](data any) (T, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	return out, decoder.Decode(data)
}
