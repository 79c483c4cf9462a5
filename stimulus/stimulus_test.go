package stimulus

import (
	"testing"

	"lenet_ref/nn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageDeterministic(t *testing.T) {
	a, err := NewGenerator("golden").Image(32, 32)
	require.NoError(t, err)
	b, err := NewGenerator("golden").Image(32, 32)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)

	c, err := NewGenerator("other").Image(32, 32)
	require.NoError(t, err)
	assert.NotEqual(t, a.Data, c.Data)
}

func TestImageRange(t *testing.T) {
	img, err := NewGenerator("range").Image(32, 32)
	require.NoError(t, err)
	assert.Equal(t, 1, img.D)
	for i, v := range img.Data {
		require.True(t, v >= 0 && v <= PixelMax, "pixel %d = %d", i, v)
	}
}

func TestKernelsShapeAndRange(t *testing.T) {
	spec := nn.LayerSpec{Index: 2, Kind: nn.LayerConvTable, KernelW: 5, KernelH: 5, Depth: 6, NumKernels: 16}
	ks, err := NewGenerator("k").Kernels(spec)
	require.NoError(t, err)
	w, h, d := ks.Shape()
	assert.Equal(t, [4]int{5, 5, 6, 16}, [4]int{w, h, d, ks.Len()})
	for _, k := range ks.Kernels {
		require.True(t, k.Bias >= -BiasMax && k.Bias <= BiasMax)
		for _, v := range k.Weights.Data {
			require.True(t, v >= -WeightMax && v <= WeightMax)
		}
	}
}

func TestKernelsIndependentOfOrder(t *testing.T) {
	spec0 := nn.LayerSpec{Index: 0, KernelW: 5, KernelH: 5, Depth: 1, NumKernels: 6}
	spec2 := nn.LayerSpec{Index: 2, KernelW: 5, KernelH: 5, Depth: 6, NumKernels: 16}

	g := NewGenerator("order")
	_, err := g.Kernels(spec0)
	require.NoError(t, err)
	after, err := g.Kernels(spec2)
	require.NoError(t, err)

	alone, err := NewGenerator("order").Kernels(spec2)
	require.NoError(t, err)
	for i := range alone.Kernels {
		assert.Equal(t, alone.Kernels[i].Weights.Data, after.Kernels[i].Weights.Data)
		assert.Equal(t, alone.Kernels[i].Bias, after.Kernels[i].Bias)
	}
}

func TestKernelsRejectsUnresolved(t *testing.T) {
	_, err := NewGenerator("x").Kernels(nn.LayerSpec{Index: 4, Depth: 16, NumKernels: 120})
	require.Error(t, err)
}

func TestLeNet5OnStimulus(t *testing.T) {
	g := NewGenerator("lenet")
	run := func() []int32 {
		img, err := g.Image(nn.InputW, nn.InputH)
		require.NoError(t, err)
		out, err := nn.NewLeNet5(g).Run(img)
		require.NoError(t, err)
		require.Equal(t, [3]int{1, 1, 10}, [3]int{out.W, out.H, out.D})
		for _, v := range out.Data {
			require.GreaterOrEqual(t, v, int32(0))
		}
		return out.Data
	}
	assert.Equal(t, run(), run())
}
