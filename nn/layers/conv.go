package layers

import (
	"fmt"

	"lenet_ref/fixed"
	"lenet_ref/tensor"
)

// Conv2D is a valid (unpadded, stride 1) fixed-point convolution followed by
// ReLU. With a connection table it becomes the sparse variant: input channels
// the table does not connect to an output channel are skipped for that output.
type Conv2D struct {
	// Layer parameters
	kernels *KernelSet
	table   *ConnectionTable // nil for dense layers
}

// NewConv2D creates a dense convolution layer over ks.
func NewConv2D(ks *KernelSet) *Conv2D {
	return &Conv2D{kernels: ks}
}

// NewConv2DTable creates a table-gated convolution layer. The table must have
// one row per kernel and one column per kernel depth channel.
func NewConv2DTable(ks *KernelSet, tbl *ConnectionTable) (*Conv2D, error) {
	_, _, d := ks.Shape()
	outs, ins := tbl.Shape()
	if outs != ks.Len() || ins != d {
		return nil, fmt.Errorf("conv: %w: table is %dx%d, layer has %d kernels of depth %d",
			ErrTableShape, outs, ins, ks.Len(), d)
	}
	return &Conv2D{kernels: ks, table: tbl}, nil
}

// Conv runs a dense convolution of ifmap with ks.
func Conv(ks *KernelSet, ifmap *tensor.Tensor) (*tensor.Tensor, error) {
	return NewConv2D(ks).Forward(ifmap)
}

// ConvTable runs a table-gated convolution of ifmap with ks.
func ConvTable(ks *KernelSet, ifmap *tensor.Tensor, tbl *ConnectionTable) (*tensor.Tensor, error) {
	c, err := NewConv2DTable(ks, tbl)
	if err != nil {
		return nil, err
	}
	return c.Forward(ifmap)
}

// GetOutputShape returns the output feature map size for a W×H input.
func (c *Conv2D) GetOutputShape(inW, inH int) (outW, outH, outD int) {
	kw, kh, _ := c.kernels.Shape()
	return inW - kw + 1, inH - kh + 1, c.kernels.Len()
}

// Forward computes every output pixel, channel by channel, row by row.
func (c *Conv2D) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	if c.kernels.Released() {
		return nil, fmt.Errorf("conv: %w", ErrReleased)
	}
	if input.Released() {
		return nil, fmt.Errorf("conv: input %v already released", input)
	}
	kw, kh, kd := c.kernels.Shape()
	if kd != input.D {
		return nil, fmt.Errorf("conv: %w: kernels are %dx%dx%d, input is %v",
			ErrDepthMismatch, kw, kh, kd, input)
	}
	if kw > input.W || kh > input.H {
		return nil, fmt.Errorf("conv: kernel %dx%d larger than input %v", kw, kh, input)
	}

	w, h, d := c.GetOutputShape(input.W, input.H)
	output := tensor.New(w, h, d)
	for n := 0; n < d; n++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				output.Data[x+y*w+n*w*h] = c.pixel(x, y, n, input)
			}
		}
	}
	return output, nil
}

// pixel accumulates kernel n over the receptive field at (x, y), then adds
// the bias and clamps. The output-size derivation keeps every index in range.
func (c *Conv2D) pixel(x, y, n int, in *tensor.Tensor) int32 {
	knl := c.kernels.Kernels[n]
	wt := knl.Weights
	var sum int32
	for i := 0; i < wt.D; i++ {
		if c.table != nil && !c.table.Connected(n, i) {
			continue
		}
		for j := 0; j < wt.H; j++ {
			for k := 0; k < wt.W; k++ {
				weight := wt.Data[k+j*wt.W+i*wt.W*wt.H]
				value := in.Data[(k+x)+(j+y)*in.W+i*in.W*in.H]
				sum = fixed.Acc(sum, fixed.MulShift(weight, value))
			}
		}
	}
	sum = fixed.Acc(sum, knl.Bias)
	return fixed.ReLU(sum)
}

// Release drops the kernel set once the layer has run.
func (c *Conv2D) Release() {
	c.kernels.Release()
}

func (c *Conv2D) Tag() string {
	kw, kh, kd := c.kernels.Shape()
	if c.table != nil {
		return fmt.Sprintf("Conv2DTable(%dx%dx%d,n=%d)", kw, kh, kd, c.kernels.Len())
	}
	return fmt.Sprintf("Conv2D(%dx%dx%d,n=%d)", kw, kh, kd, c.kernels.Len())
}
