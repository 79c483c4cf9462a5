package utils

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"lenet_ref/fixed"
	"lenet_ref/tensor"
)

// Summary describes the value distribution of a feature map, in real units.
type Summary struct {
	Min, Max     float64
	Mean, StdDev float64
	Zeros        int
}

// Summarize computes a Summary of t.
func Summarize(t *tensor.Tensor) Summary {
	vals := make([]float64, len(t.Data))
	zeros := 0
	for i, v := range t.Data {
		vals[i] = fixed.ToFloat64(v)
		if v == 0 {
			zeros++
		}
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if len(vals) < 2 {
		std = 0
	}
	return Summary{
		Min:    floats.Min(vals),
		Max:    floats.Max(vals),
		Mean:   mean,
		StdDev: std,
		Zeros:  zeros,
	}
}

// PrintLayerReport prints the shape of a layer output and its Summary.
// Respects the Verbose flag.
func PrintLayerReport(index int, t *tensor.Tensor) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Output, "***** Layer %d *****\n", index)
	fmt.Fprintf(Output, "w: %d\n", t.W)
	fmt.Fprintf(Output, "h: %d\n", t.H)
	fmt.Fprintf(Output, "d: %d\n", t.D)
	s := Summarize(t)
	fmt.Fprintf(Output, "min %.6f max %.6f mean %.6f std %.6f zeros %d/%d\n",
		s.Min, s.Max, s.Mean, s.StdDev, s.Zeros, t.Len())
}
