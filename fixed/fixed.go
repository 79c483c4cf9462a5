// Package fixed holds the Q16.16 arithmetic shared by every operator.
//
// Values are plain int32 scaled by 2^16. Products are narrowed back to the
// same scale with an arithmetic right shift, so negative products round
// toward negative infinity rather than toward zero. Sums wrap like 32-bit
// hardware adders; nothing saturates.
package fixed

// FracBits is the number of fractional bits in a fixed-point value.
const FracBits = 16

// Scale is the integer that represents 1.0.
const Scale = 1 << FracBits

// FromFloat32 converts r by truncating r*Scale, computed in single precision.
func FromFloat32(r float32) int32 {
	return int32(r * Scale)
}

// ToFloat64 is for reports only; nothing in the inference path uses it.
func ToFloat64(v int32) float64 {
	return float64(v) / Scale
}

// MulShift multiplies a and b at full width and shifts the product right by
// FracBits. The shift is arithmetic: MulShift(-1, 1) == -1.
func MulShift(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> FracBits)
}

// Acc adds p to sum with 32-bit wrap-around.
func Acc(sum, p int32) int32 {
	return sum + p
}

// ReLU clamps negative values to zero.
func ReLU(v int32) int32 {
	if v < 0 {
		return 0
	}
	return v
}
