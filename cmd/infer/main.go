// lenet-infer: fixed-point LeNet-5 golden model
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"lenet_ref/fixed"
	"lenet_ref/memh"
	"lenet_ref/nn"
	"lenet_ref/nn/layers"
	"lenet_ref/stimulus"
	"lenet_ref/tensor"
	"lenet_ref/utils"

	"github.com/tebeka/atexit"
)

var (
	weightsDir  = flag.String("weights", "", "Directory holding layerN.wt / layerN.bs")
	imageFile   = flag.String("image", "", "Input image, 32x32 whitespace-separated intensities")
	dumpDir     = flag.String("dump", "", "Write every layer output as layerN.dat in hex memory format")
	weightsDump = flag.String("dump-weights", "", "Write layer 0 weights in hex memory format")
	seed        = flag.String("seed", "lenet", "Stimulus seed, used when no weights are given")
	verbose     = flag.Bool("verbose", true, "Verbose output")
	topK        = flag.Int("topk", 3, "Top predictions to show")
)

// dumpingSource writes the weights of layer 0 to w as they are loaded.
type dumpingSource struct {
	nn.KernelSource
	w *bufio.Writer
}

func (s dumpingSource) Kernels(spec nn.LayerSpec) (*layers.KernelSet, error) {
	ks, err := s.KernelSource.Kernels(spec)
	if err != nil || spec.Index != 0 {
		return ks, err
	}
	if err := memh.WriteKernels(s.w, ks); err != nil {
		return nil, fmt.Errorf("weight dump: %w", err)
	}
	return ks, s.w.Flush()
}

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	cfg := &utils.Config{
		WeightsDir:  *weightsDir,
		ImagePath:   *imageFile,
		DumpDir:     *dumpDir,
		WeightsDump: *weightsDump,
	}
	// positional form: lenet-infer WEIGHTS_DIR IMAGE
	if cfg.WeightsDir == "" && cfg.ImagePath == "" && flag.NArg() == 2 {
		cfg.WeightsDir, cfg.ImagePath = flag.Arg(0), flag.Arg(1)
	}
	if cfg.WeightsDir == "" {
		cfg.Seed = *seed
	}
	if err := utils.ValidateConfig(cfg); err != nil {
		atexit.Fatalf("Error: %v", err)
	}

	stats := &utils.TimingStats{}
	start := time.Now()

	var (
		src nn.KernelSource
		img *tensor.Tensor
		err error
	)
	if cfg.WeightsDir != "" {
		src = utils.Loader{Dir: cfg.WeightsDir}
		img, err = utils.LoadImage(cfg.ImagePath, nn.InputW, nn.InputH)
	} else {
		fmt.Fprintf(utils.Output, "No weights directory. Running on stimulus seed %q\n", cfg.Seed)
		gen := stimulus.NewGenerator(cfg.Seed)
		src = gen
		img, err = gen.Image(nn.InputW, nn.InputH)
	}
	if err != nil {
		atexit.Fatalf("Error loading image: %v", err)
	}
	stats.DataLoadingTime = time.Since(start)

	if cfg.WeightsDump != "" {
		f, err := os.Create(cfg.WeightsDump)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}
		atexit.Register(func() { f.Close() })
		src = dumpingSource{KernelSource: src, w: bufio.NewWriter(f)}
	}

	net := nn.NewLeNet5(src)
	net.Observe = func(spec nn.LayerSpec, out *tensor.Tensor, elapsed time.Duration) error {
		stats.Record(spec.Index, spec.Kind.String(), elapsed)
		utils.PrintLayerReport(spec.Index, out)
		if cfg.DumpDir == "" {
			return nil
		}
		return dumpLayer(filepath.Join(cfg.DumpDir, fmt.Sprintf("layer%d.dat", spec.Index)), out)
	}

	out, err := net.Run(img)
	if err != nil {
		atexit.Fatalf("Error: %v", err)
	}
	stats.TotalTime = time.Since(start)

	printResult(out)
	showResults(out, *topK)
	utils.PrintTimingStats(stats)
	atexit.Exit(0)
}

func dumpLayer(path string, t *tensor.Tensor) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := memh.WriteTensor(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printResult prints the raw fixed-point score of every class.
func printResult(scores *tensor.Tensor) {
	for i, v := range scores.Data {
		fmt.Printf("%d: %d\n", i, v)
	}
}

func showResults(scores *tensor.Tensor, k int) {
	if k > len(scores.Data) {
		k = len(scores.Data)
	}
	idx := make([]int, len(scores.Data))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores.Data[idx[a]] > scores.Data[idx[b]] })

	fmt.Printf("\nPredicted class: %d\n", nn.Argmax(scores))
	fmt.Printf("Top %d predictions:\n", k)
	for i, c := range idx[:k] {
		fmt.Printf("  %d. Class %d: %.4f\n", i+1, c, fixed.ToFloat64(scores.Data[c]))
	}
}
