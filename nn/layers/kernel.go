package layers

import (
	"errors"
	"fmt"

	"lenet_ref/tensor"
)

var (
	ErrDepthMismatch = errors.New("kernel depth does not match feature map depth")
	ErrHeterogeneous = errors.New("kernels in a set must share width, height and depth")
	ErrOddDimensions = errors.New("max pooling needs even width and height")
	ErrTableShape    = errors.New("connection table does not match layer shape")
	ErrReleased      = errors.New("kernel set used after release")
)

// Kernel is one 3-D filter: a W×H×D weight volume and a bias, all in Q16.16.
type Kernel struct {
	Weights *tensor.Tensor
	Bias    int32
}

// NewKernel allocates a zero kernel of the given shape.
func NewKernel(w, h, d int) *Kernel {
	return &Kernel{Weights: tensor.New(w, h, d)}
}

// KernelSet is the ordered group of kernels forming one convolution layer.
// Every kernel has the same shape; NewKernelSet enforces it.
type KernelSet struct {
	Kernels []*Kernel
	w, h, d int
}

// NewKernelSet validates that kernels is non-empty and homogeneous.
func NewKernelSet(kernels []*Kernel) (*KernelSet, error) {
	if len(kernels) == 0 {
		return nil, fmt.Errorf("kernel set: %w: empty", ErrHeterogeneous)
	}
	for i, k := range kernels {
		if k == nil || k.Weights == nil {
			return nil, fmt.Errorf("kernel set: kernel %d has no weights", i)
		}
	}
	k0 := kernels[0].Weights
	for i, k := range kernels[1:] {
		if !tensor.SameShape(k0, k.Weights) {
			return nil, fmt.Errorf("kernel set: %w: kernel 0 is %v, kernel %d is %v",
				ErrHeterogeneous, k0, i+1, k.Weights)
		}
	}
	return &KernelSet{
		Kernels: kernels,
		w:       k0.W,
		h:       k0.H,
		d:       k0.D,
	}, nil
}

// Shape returns the common kernel width, height and depth.
func (ks *KernelSet) Shape() (w, h, d int) {
	return ks.w, ks.h, ks.d
}

// Len is the number of kernels, i.e. the output depth of the layer.
func (ks *KernelSet) Len() int {
	return len(ks.Kernels)
}

// Release drops every weight buffer once the owning layer has run.
func (ks *KernelSet) Release() {
	for _, k := range ks.Kernels {
		k.Weights.Release()
	}
	ks.Kernels = nil
}

// Released reports whether Release has been called.
func (ks *KernelSet) Released() bool {
	return ks.Kernels == nil
}
