package nn

import (
	"errors"
	"testing"

	"lenet_ref/tensor"
)

// dummy layer: adds a constant to every element
type addLayer struct{ c int32 }

func (l *addLayer) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	out := tensor.New(input.W, input.H, input.D)
	for i, v := range input.Data {
		out.Data[i] = v + l.c
	}
	return out, nil
}
func (l *addLayer) Tag() string { return "add" }

// dummy layer: error on forward
type errLayer struct{}

func (l *errLayer) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	return nil, errors.New("fail")
}
func (l *errLayer) Tag() string { return "err" }

// dummy layer that records whether it was released
type ownedLayer struct {
	addLayer
	released bool
}

func (l *ownedLayer) Release() { l.released = true }

func TestSequentialForward(t *testing.T) {
	a := tensor.New(1, 1, 1)
	a.Data[0] = 1
	seq := &Sequential{Layers: []Module{&addLayer{c: 2}, &addLayer{c: 3}}}
	out, err := seq.Forward(a)
	if err != nil {
		t.Fatal(err)
	}
	if out.Data[0] != 6 {
		t.Fatalf("expected 6, got %d", out.Data[0])
	}
	if !a.Released() {
		t.Fatal("expected input to be released after the first layer consumed it")
	}
}

func TestSequentialReleasesParameters(t *testing.T) {
	owned := &ownedLayer{addLayer: addLayer{c: 1}}
	seq := &Sequential{Layers: []Module{owned}}
	if _, err := seq.Forward(tensor.New(1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if !owned.released {
		t.Fatal("expected layer parameters to be released")
	}
}

func TestSequentialError(t *testing.T) {
	seq := &Sequential{Layers: []Module{&addLayer{c: 0}, &errLayer{}}}
	_, err := seq.Forward(tensor.New(1, 1, 1))
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "layer 1 (err): fail" {
		t.Fatalf("unexpected error text %q", got)
	}
}

func TestSequentialTags(t *testing.T) {
	seq := &Sequential{Layers: []Module{&addLayer{}, &errLayer{}}}
	tags := seq.Tags()
	if len(tags) != 2 || tags[0] != "add" || tags[1] != "err" {
		t.Fatalf("unexpected tags %v", tags)
	}
}

// dummy layer that fails and records whether it was released
type failingOwnedLayer struct {
	errLayer
	released bool
}

func (l *failingOwnedLayer) Release() { l.released = true }

func TestSequentialErrorKeepsInput(t *testing.T) {
	layer := &failingOwnedLayer{}
	in := tensor.New(1, 1, 1)
	seq := &Sequential{Layers: []Module{layer}}
	if _, err := seq.Forward(in); err == nil {
		t.Fatal("expected error")
	}
	if !layer.released {
		t.Fatal("expected parameters to be released on failure")
	}
	if in.Released() {
		t.Fatal("input must stay live when the layer fails")
	}
}
