package tensor

import (
	"errors"
	"fmt"
)

// ErrShape reports a buffer whose length does not match its dimensions.
var ErrShape = errors.New("tensor: shape mismatch")

// Tensor is a W×H×D volume of fixed-point values backed by a flat []int32.
// Element (x, y, z) lives at x + y*W + z*W*H. Feature maps and kernel weight
// volumes share this layout, and serialized dumps follow it too.
type Tensor struct {
	W, H, D int
	Data    []int32
}

// New allocates a zeroed W×H×D tensor.
func New(w, h, d int) *Tensor {
	if w <= 0 || h <= 0 || d <= 0 {
		panic(fmt.Sprintf("New: non-positive shape %dx%dx%d", w, h, d))
	}
	return &Tensor{
		W:    w,
		H:    h,
		D:    d,
		Data: make([]int32, w*h*d),
	}
}

// NewWithData copies data into a new W×H×D tensor.
func NewWithData(w, h, d int, data []int32) (*Tensor, error) {
	if w <= 0 || h <= 0 || d <= 0 {
		return nil, fmt.Errorf("%w: non-positive shape %dx%dx%d", ErrShape, w, h, d)
	}
	if len(data) != w*h*d {
		return nil, fmt.Errorf("%w: %dx%dx%d needs %d values, got %d", ErrShape, w, h, d, w*h*d, len(data))
	}
	return &Tensor{
		W:    w,
		H:    h,
		D:    d,
		Data: append([]int32(nil), data...),
	}, nil
}

// Index returns the flat offset of (x, y, z).
func (t *Tensor) Index(x, y, z int) int {
	t.mustLive("Index")
	if x < 0 || x >= t.W || y < 0 || y >= t.H || z < 0 || z >= t.D {
		panic(fmt.Sprintf("Index: (%d,%d,%d) out of bounds for %dx%dx%d", x, y, z, t.W, t.H, t.D))
	}
	return x + y*t.W + z*t.W*t.H
}

// At returns the element at (x, y, z).
func (t *Tensor) At(x, y, z int) int32 {
	return t.Data[t.Index(x, y, z)]
}

// Set sets the element at (x, y, z) to value.
func (t *Tensor) Set(value int32, x, y, z int) {
	t.Data[t.Index(x, y, z)] = value
}

// Len is W*H*D.
func (t *Tensor) Len() int {
	return t.W * t.H * t.D
}

// SameShape reports whether a and b have identical dimensions.
func SameShape(a, b *Tensor) bool {
	return a.W == b.W && a.H == b.H && a.D == b.D
}

// Release drops the buffer. The owner calls it once the tensor has been
// consumed; any later element access panics.
func (t *Tensor) Release() {
	t.Data = nil
}

// Released reports whether Release has been called.
func (t *Tensor) Released() bool {
	return t.Data == nil
}

func (t *Tensor) mustLive(op string) {
	if t.Data == nil {
		panic(fmt.Sprintf("%s: tensor %dx%dx%d used after release", op, t.W, t.H, t.D))
	}
}

func (t *Tensor) String() string {
	return fmt.Sprintf("%dx%dx%d", t.W, t.H, t.D)
}
