package nn

import (
	"fmt"
	"time"

	"lenet_ref/nn/layers"
	"lenet_ref/tensor"
)

// Input image size of the LeNet-5 network.
const (
	InputW = 32
	InputH = 32
)

// LayerKind selects the operator of a pipeline stage.
type LayerKind int

const (
	LayerConv LayerKind = iota
	LayerConvTable
	LayerMaxPool
)

func (k LayerKind) String() string {
	switch k {
	case LayerConv:
		return "conv"
	case LayerConvTable:
		return "conv_tbl"
	case LayerMaxPool:
		return "max_pool"
	}
	return fmt.Sprintf("LayerKind(%d)", int(k))
}

// WeightOrder is the order in which a weight file lists a layer's values.
type WeightOrder int

const (
	// KernelMajor lists kernel by kernel; each kernel depth, row, column.
	KernelMajor WeightOrder = iota
	// DepthMajor lists depth slice by depth slice; within a slice every
	// kernel's row, column in turn.
	DepthMajor
)

// LayerSpec declares one stage. Zero KernelW, KernelH or Depth mean "take it
// from the incoming feature map", which is how the fully connected layers
// collapse the spatial extent to 1×1.
type LayerSpec struct {
	Index      int
	Kind       LayerKind
	KernelW    int
	KernelH    int
	Depth      int
	NumKernels int
	Order      WeightOrder
}

// LeNet5Layers is the fixed six-stage pipeline.
func LeNet5Layers() []LayerSpec {
	return []LayerSpec{
		{Index: 0, Kind: LayerConv, KernelW: 5, KernelH: 5, Depth: 1, NumKernels: 6},
		{Index: 1, Kind: LayerMaxPool},
		{Index: 2, Kind: LayerConvTable, KernelW: 5, KernelH: 5, NumKernels: 16},
		{Index: 3, Kind: LayerMaxPool},
		{Index: 4, Kind: LayerConv, NumKernels: 120},
		{Index: 5, Kind: LayerConv, NumKernels: 10, Order: DepthMajor},
	}
}

// c3Chart is the LeNet-5 C3 connection chart, one line per S2 input map and
// one column per C3 output map.
var c3Chart = [6][16]byte{
	{1, 0, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1, 1},
	{1, 1, 0, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1},
	{1, 1, 1, 0, 0, 0, 1, 1, 1, 0, 0, 1, 0, 1, 1, 1},
	{0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 0, 1, 0, 1, 1},
	{0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1, 1, 0, 1},
	{0, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1, 1, 1},
}

// LeNetC3Table returns the 16×6 sparse table between S2 and C3.
func LeNetC3Table() *layers.ConnectionTable {
	flags := make([]bool, 0, 6*16)
	for _, line := range c3Chart {
		for _, f := range line {
			flags = append(flags, f == 1)
		}
	}
	tbl, err := layers.NewConnectionTableInputMajor(16, 6, flags)
	if err != nil {
		panic(err)
	}
	return tbl
}

// KernelSource supplies a layer's kernel set when that layer is about to run.
// The spec passed in is fully resolved: no zero dimensions.
type KernelSource interface {
	Kernels(spec LayerSpec) (*layers.KernelSet, error)
}

// Observer is called after every stage with its output. Returning an error
// aborts the run.
type Observer func(spec LayerSpec, out *tensor.Tensor, elapsed time.Duration) error

// Network drives a fixed list of stages over one input image.
type Network struct {
	Layers  []LayerSpec
	Source  KernelSource
	Table   *layers.ConnectionTable
	Observe Observer
}

// NewLeNet5 builds the LeNet-5 driver over src.
func NewLeNet5(src KernelSource) *Network {
	return &Network{
		Layers: LeNet5Layers(),
		Source: src,
		Table:  LeNetC3Table(),
	}
}

// Resolve fills the zero fields of spec from the incoming feature map.
func Resolve(spec LayerSpec, in *tensor.Tensor) LayerSpec {
	if spec.Kind == LayerMaxPool {
		return spec
	}
	if spec.KernelW == 0 {
		spec.KernelW = in.W
	}
	if spec.KernelH == 0 {
		spec.KernelH = in.H
	}
	if spec.Depth == 0 {
		spec.Depth = in.D
	}
	return spec
}

// Run takes ownership of input and returns the final feature map. Each
// intermediate map is released right after the next stage consumes it and
// each kernel set right after its stage.
func (n *Network) Run(input *tensor.Tensor) (*tensor.Tensor, error) {
	cur := input
	for _, spec := range n.Layers {
		spec = Resolve(spec, cur)
		start := time.Now()
		layer, err := n.build(spec)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%v): %w", spec.Index, spec.Kind, err)
		}
		tag := layer.Tag()
		out, err := apply(layer, cur)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", spec.Index, tag, err)
		}
		cur = out
		if n.Observe != nil {
			if err := n.Observe(spec, cur, time.Since(start)); err != nil {
				return nil, fmt.Errorf("layer %d: %w", spec.Index, err)
			}
		}
	}
	return cur, nil
}

// build turns a resolved spec into a layer, loading its kernels.
func (n *Network) build(spec LayerSpec) (Module, error) {
	if spec.Kind == LayerMaxPool {
		return layers.NewMaxPool2D(), nil
	}
	if n.Source == nil {
		return nil, fmt.Errorf("no kernel source")
	}
	ks, err := n.Source.Kernels(spec)
	if err != nil {
		return nil, err
	}

	w, h, d := ks.Shape()
	if w != spec.KernelW || h != spec.KernelH || d != spec.Depth || ks.Len() != spec.NumKernels {
		ks.Release()
		return nil, fmt.Errorf("kernel source returned %d kernels of %dx%dx%d, want %d of %dx%dx%d",
			ks.Len(), w, h, d, spec.NumKernels, spec.KernelW, spec.KernelH, spec.Depth)
	}

	switch spec.Kind {
	case LayerConv:
		return layers.NewConv2D(ks), nil
	case LayerConvTable:
		if n.Table == nil {
			ks.Release()
			return nil, fmt.Errorf("no connection table for %v layer", spec.Kind)
		}
		c, err := layers.NewConv2DTable(ks, n.Table)
		if err != nil {
			ks.Release()
			return nil, err
		}
		return c, nil
	}
	ks.Release()
	return nil, fmt.Errorf("unknown layer kind %v", spec.Kind)
}

// Argmax returns the channel with the largest score; ties go to the lowest
// channel.
func Argmax(scores *tensor.Tensor) int {
	best := 0
	for i, v := range scores.Data {
		if v > scores.Data[best] {
			best = i
		}
	}
	return best
}
