package utils

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"lenet_ref/fixed"
	"lenet_ref/nn"
	"lenet_ref/nn/layers"
	"lenet_ref/tensor"
)

// ErrShortInput reports a weight, bias or image file with fewer values than
// the layer needs.
var ErrShortInput = errors.New("not enough values")

// WeightsPath is the weight file of a layer inside dir.
func WeightsPath(dir string, layer int) string {
	return filepath.Join(dir, fmt.Sprintf("layer%d.wt", layer))
}

// BiasPath is the bias file of a layer inside dir.
func BiasPath(dir string, layer int) string {
	return filepath.Join(dir, fmt.Sprintf("layer%d.bs", layer))
}

// readFixed reads the first n whitespace-separated decimal values of path
// as single precision and converts them to fixed point. Extra values are
// ignored.
func readFixed(path string, n int) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	vals := make([]int32, 0, n)
	for len(vals) < n && sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 32)
		if err != nil {
			return nil, fmt.Errorf("%s: value %d: %w", path, len(vals), err)
		}
		vals = append(vals, fixed.FromFloat32(float32(v)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(vals) < n {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", path, ErrShortInput, n, len(vals))
	}
	return vals, nil
}

// LoadKernels reads the kernel set of a resolved layer spec from dir.
func LoadKernels(dir string, spec nn.LayerSpec) (*layers.KernelSet, error) {
	w, h, d, n := spec.KernelW, spec.KernelH, spec.Depth, spec.NumKernels
	if w <= 0 || h <= 0 || d <= 0 || n <= 0 {
		return nil, fmt.Errorf("layer %d: unresolved kernel shape %dx%dx%d n=%d", spec.Index, w, h, d, n)
	}

	biases, err := readFixed(BiasPath(dir, spec.Index), n)
	if err != nil {
		return nil, err
	}
	weights, err := readFixed(WeightsPath(dir, spec.Index), n*d*h*w)
	if err != nil {
		return nil, err
	}

	kernels := make([]*layers.Kernel, n)
	for i := range kernels {
		kernels[i] = layers.NewKernel(w, h, d)
		kernels[i].Bias = biases[i]
	}

	plane := w * h
	p := 0
	switch spec.Order {
	case nn.KernelMajor:
		for i := 0; i < n; i++ {
			p += copy(kernels[i].Weights.Data, weights[p:p+plane*d])
		}
	case nn.DepthMajor:
		for j := 0; j < d; j++ {
			for i := 0; i < n; i++ {
				p += copy(kernels[i].Weights.Data[j*plane:(j+1)*plane], weights[p:p+plane])
			}
		}
	default:
		return nil, fmt.Errorf("layer %d: unknown weight order %d", spec.Index, spec.Order)
	}

	return layers.NewKernelSet(kernels)
}

// Loader reads kernel sets from a weights directory on demand.
type Loader struct {
	Dir string
}

func (l Loader) Kernels(spec nn.LayerSpec) (*layers.KernelSet, error) {
	return LoadKernels(l.Dir, spec)
}

// LoadImage reads w*h row-major pixel intensities into channel 0 of a new
// w×h×1 feature map.
func LoadImage(path string, w, h int) (*tensor.Tensor, error) {
	vals, err := readFixed(path, w*h)
	if err != nil {
		return nil, err
	}
	return tensor.NewWithData(w, h, 1, vals)
}

// LayerParams is one parameterised layer of a serialized model: the
// weights under "value0", the biases under "value1".
type LayerParams struct {
	Weights []float64 `json:"value0"`
	Biases  []float64 `json:"value1"`
}

// LoadModel reads a serialized model whose top-level "valueN" entries hold
// the layers in order. Only the requested layers are decoded; the others may
// have any shape.
func LoadModel(path string, layerIdx []int) (map[int]*LayerParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}
	model := make(map[int]*LayerParams, len(layerIdx))
	for _, idx := range layerIdx {
		key := fmt.Sprintf("value%d", idx)
		msg, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("model has no %q", key)
		}
		var lp LayerParams
		if err := json.Unmarshal(msg, &lp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
		}
		model[idx] = &lp
	}
	return model, nil
}

// ExtractModel writes layerN.wt and layerN.bs into outDir for every
// requested layer of the model at modelPath, one value per line.
func ExtractModel(modelPath, outDir string, layerIdx []int) error {
	model, err := LoadModel(modelPath, layerIdx)
	if err != nil {
		return err
	}
	for _, idx := range layerIdx {
		lp := model[idx]
		if err := writeFloats(WeightsPath(outDir, idx), lp.Weights); err != nil {
			return err
		}
		if err := writeFloats(BiasPath(outDir, idx), lp.Biases); err != nil {
			return err
		}
	}
	return nil
}

func writeFloats(path string, vals []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	for _, v := range vals {
		bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
