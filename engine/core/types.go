package core

import (
	"dario.cat/mergo"
)

// -----------------------------------------------------------------------------
// Input / Output
// -----------------------------------------------------------------------------

// Input is the untyped payload crossing the invocation boundary into an
// operation. Validation against the contract happens before any handler
// observes it.
type Input map[string]any

func NewInput(data map[string]any) *Input {
	input := Input(data)
	if data == nil {
		input = Input{}
	}
	return &input
}

func (i *Input) AsMap() map[string]any {
	if i == nil {
		return nil
	}
	out := make(map[string]any, len(*i))
	for k, v := range *i {
		out[k] = v
	}
	return out
}

func (i *Input) Prop(key string) any {
	if i == nil {
		return nil
	}
	return (*i)[key]
}

func (i *Input) Set(key string, value any) {
	if i == nil {
		return
	}
	(*i)[key] = value
}

// Merge combines two inputs, the other side winning on conflicts and slices
// appended rather than replaced.
func (i *Input) Merge(other *Input) (*Input, error) {
	if i == nil {
		return other, nil
	}
	if other == nil {
		return i, nil
	}
	merged, err := DeepCopyMap(i.AsMap())
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&merged, other.AsMap(), mergo.WithOverride, mergo.WithAppendSlice); err != nil {
		return nil, err
	}
	out := Input(merged)
	return &out, nil
}

func (i *Input) Clone() (*Input, error) {
	if i == nil {
		return nil, nil
	}
	copied, err := DeepCopyMap(i.AsMap())
	if err != nil {
		return nil, err
	}
	out := Input(copied)
	return &out, nil
}

// Output is the untyped payload an operation hands back across the boundary.
// The dispatcher only releases outputs the contract accepted.
type Output map[string]any

func (o *Output) AsMap() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(*o))
	for k, v := range *o {
		out[k] = v
	}
	return out
}

func (o *Output) Prop(key string) any {
	if o == nil {
		return nil
	}
	return (*o)[key]
}

func (o *Output) Clone() (*Output, error) {
	if o == nil {
		return nil, nil
	}
	copied, err := DeepCopyMap(o.AsMap())
	if err != nil {
		return nil, err
	}
	out := Output(copied)
	return &out, nil
}
