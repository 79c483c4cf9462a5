package layers

import (
	"math/rand"
	"testing"
)

func BenchmarkConvC1(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	ks := randomKernelSet(b, rng, 5, 5, 1, 6)
	in := randomInput(rng, 32, 32, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Conv(ks, in)
	}
}

func BenchmarkConvTableC3(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	ks := randomKernelSet(b, rng, 5, 5, 6, 16)
	in := randomInput(rng, 14, 14, 6)
	tbl := FullTable(16, 6)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ConvTable(ks, in, tbl)
	}
}

func BenchmarkMaxPool(b *testing.B) {
	in := randomInput(rand.New(rand.NewSource(1)), 28, 28, 6)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MaxPool(in)
	}
}
