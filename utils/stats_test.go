package utils

import (
	"bytes"
	"testing"

	"lenet_ref/fixed"
	"lenet_ref/tensor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	ten, err := tensor.NewWithData(2, 2, 1, []int32{0, fixed.Scale, 2 * fixed.Scale, 0})
	require.NoError(t, err)

	s := Summarize(ten)
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 2.0, s.Max)
	assert.InDelta(t, 0.75, s.Mean, 1e-12)
	// sample standard deviation of 0, 1, 2, 0
	assert.InDelta(t, 0.9574271, s.StdDev, 1e-6)
	assert.Equal(t, 2, s.Zeros)
}

func TestSummarizeSingleValue(t *testing.T) {
	ten, err := tensor.NewWithData(1, 1, 1, []int32{-fixed.Scale / 2})
	require.NoError(t, err)

	s := Summarize(ten)
	assert.Equal(t, -0.5, s.Min)
	assert.Equal(t, -0.5, s.Max)
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, 0, s.Zeros)
}

func TestPrintLayerReport(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldVerbose := Output, Verbose
	Output, Verbose = &buf, true
	defer func() { Output, Verbose = oldOut, oldVerbose }()

	PrintLayerReport(2, tensor.New(10, 10, 16))
	assert.Contains(t, buf.String(), "***** Layer 2 *****\nw: 10\nh: 10\nd: 16\n")
	assert.Contains(t, buf.String(), "zeros 1600/1600")

	buf.Reset()
	Verbose = false
	PrintLayerReport(2, tensor.New(1, 1, 1))
	assert.Empty(t, buf.String())
}
