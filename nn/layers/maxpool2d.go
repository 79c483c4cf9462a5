package layers

import (
	"fmt"

	"lenet_ref/tensor"
)

// MaxPool2D downsamples each channel by taking the maximum of every
// non-overlapping 2×2 block. Values pass through unscaled.
type MaxPool2D struct{}

func NewMaxPool2D() *MaxPool2D { return &MaxPool2D{} }

// MaxPool runs 2×2 max pooling over ifmap.
func MaxPool(ifmap *tensor.Tensor) (*tensor.Tensor, error) {
	return NewMaxPool2D().Forward(ifmap)
}

func (m *MaxPool2D) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	if input.Released() {
		return nil, fmt.Errorf("max pool: input %v already released", input)
	}
	if input.W%2 != 0 || input.H%2 != 0 {
		return nil, fmt.Errorf("max pool: %w: input is %v", ErrOddDimensions, input)
	}
	w, h, d := input.W/2, input.H/2, input.D
	output := tensor.New(w, h, d)

	var block [4]int32
	for i := 0; i < d; i++ {
		for j := 0; j < h; j++ {
			for k := 0; k < w; k++ {
				block[0] = input.Data[(2*k)+(2*j)*input.W+i*input.W*input.H]
				block[1] = input.Data[(2*k+1)+(2*j)*input.W+i*input.W*input.H]
				block[2] = input.Data[(2*k)+(2*j+1)*input.W+i*input.W*input.H]
				block[3] = input.Data[(2*k+1)+(2*j+1)*input.W+i*input.W*input.H]
				output.Data[k+j*w+i*w*h] = findMax(block[:])
			}
		}
	}
	return output, nil
}

// findMax scans vals in order; only a strictly larger value replaces the
// running maximum, so ties keep the first one seen.
func findMax(vals []int32) int32 {
	max := vals[0]
	for _, v := range vals[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func (m *MaxPool2D) Tag() string {
	return "MaxPool2D(2x2)"
}
