// Package stimulus generates reproducible input images and kernel sets from
// a text seed, for producing golden vectors without a trained model.
//
// Every stream is drawn from a keyed PRNG whose key is the seed plus a
// stream name, so a layer's kernels do not depend on which layers were
// generated before it.
package stimulus

import (
	"encoding/binary"
	"fmt"

	"github.com/tuneinsight/lattigo/v5/utils/sampling"

	"lenet_ref/fixed"
	"lenet_ref/nn"
	"lenet_ref/nn/layers"
	"lenet_ref/tensor"
)

// Value bounds, in raw fixed-point units.
const (
	PixelMax  = fixed.Scale     // pixels lie in [0, 1]
	WeightMax = fixed.Scale / 4 // weights lie in [-0.25, 0.25]
	BiasMax   = fixed.Scale / 16
)

// Generator produces stimulus for one seed.
type Generator struct {
	seed string
}

func NewGenerator(seed string) *Generator {
	return &Generator{seed: seed}
}

type stream struct {
	prng *sampling.KeyedPRNG
	buf  [4]byte
}

func (g *Generator) stream(name string) (*stream, error) {
	prng, err := sampling.NewKeyedPRNG([]byte(g.seed + "/" + name))
	if err != nil {
		return nil, fmt.Errorf("stimulus: %s: %w", name, err)
	}
	return &stream{prng: prng}, nil
}

func (s *stream) uint32() (uint32, error) {
	if _, err := s.prng.Read(s.buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(s.buf[:]), nil
}

// between returns a value in [lo, hi].
func (s *stream) between(lo, hi int32) (int32, error) {
	u, err := s.uint32()
	if err != nil {
		return 0, err
	}
	span := uint64(int64(hi) - int64(lo) + 1)
	return int32(int64(lo) + int64(uint64(u)%span)), nil
}

// Image returns a w×h×1 image with pixels in [0, PixelMax].
func (g *Generator) Image(w, h int) (*tensor.Tensor, error) {
	s, err := g.stream("image")
	if err != nil {
		return nil, err
	}
	img := tensor.New(w, h, 1)
	for i := range img.Data {
		if img.Data[i], err = s.between(0, PixelMax); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// Kernels returns the kernel set of a resolved layer spec. It implements
// nn.KernelSource.
func (g *Generator) Kernels(spec nn.LayerSpec) (*layers.KernelSet, error) {
	w, h, d, n := spec.KernelW, spec.KernelH, spec.Depth, spec.NumKernels
	if w <= 0 || h <= 0 || d <= 0 || n <= 0 {
		return nil, fmt.Errorf("stimulus: layer %d: unresolved kernel shape %dx%dx%d n=%d", spec.Index, w, h, d, n)
	}
	s, err := g.stream(fmt.Sprintf("layer%d", spec.Index))
	if err != nil {
		return nil, err
	}
	kernels := make([]*layers.Kernel, n)
	for i := range kernels {
		k := layers.NewKernel(w, h, d)
		for j := range k.Weights.Data {
			if k.Weights.Data[j], err = s.between(-WeightMax, WeightMax); err != nil {
				return nil, err
			}
		}
		if k.Bias, err = s.between(-BiasMax, BiasMax); err != nil {
			return nil, err
		}
		kernels[i] = k
	}
	return layers.NewKernelSet(kernels)
}
