package nn

import (
	"fmt"

	"lenet_ref/tensor"
)

// Module is one stage of the pipeline: it consumes a feature map and
// produces a new one.
type Module interface {
	Forward(input *tensor.Tensor) (*tensor.Tensor, error)
	Tag() string
}

// releaser is implemented by layers that own parameters (kernel sets).
type releaser interface {
	Release()
}

// Sequential chains multiple Modules in order.
type Sequential struct {
	Layers []Module
}

// Forward applies each layer in sequence. Sequential takes ownership of x:
// every feature map, x included, is released as soon as the next layer has
// consumed it, and every layer's parameters are released after it runs.
func (s *Sequential) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := x
	for i, layer := range s.Layers {
		tag := layer.Tag()
		next, err := apply(layer, out)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, tag, err)
		}
		out = next
	}
	return out, nil
}

// apply runs one layer and releases its parameters. The input is released
// only when the layer succeeds.
func apply(layer Module, in *tensor.Tensor) (*tensor.Tensor, error) {
	if r, ok := layer.(releaser); ok {
		defer r.Release()
	}
	out, err := layer.Forward(in)
	if err != nil {
		return nil, err
	}
	in.Release()
	return out, nil
}

// Tags lists the layer tags in order.
func (s *Sequential) Tags() []string {
	tags := make([]string, len(s.Layers))
	for i, layer := range s.Layers {
		tags[i] = layer.Tag()
	}
	return tags
}
