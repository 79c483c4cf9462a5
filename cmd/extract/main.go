// lenet-extract: split a serialized model into layerN.wt / layerN.bs files
package main

import (
	"flag"
	"fmt"
	"os"

	"lenet_ref/utils"

	"github.com/tebeka/atexit"
)

var (
	modelFile = flag.String("model", "", "Serialized model JSON")
	outDir    = flag.String("out", ".", "Output directory")
	layerList = flag.String("layers", "0,2,4,5", "Layer indices with parameters")
)

func main() {
	flag.Parse()

	if *modelFile == "" {
		flag.Usage()
		atexit.Fatalf("Error: -model is required")
	}
	idx, err := utils.ParseLayers(*layerList)
	if err != nil {
		atexit.Fatalf("Error: -layers: %v", err)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		atexit.Fatalf("Error: %v", err)
	}
	if err := utils.ExtractModel(*modelFile, *outDir, idx); err != nil {
		atexit.Fatalf("Error: %v", err)
	}
	fmt.Printf("Extracted layers %v into %s\n", idx, *outDir)
	atexit.Exit(0)
}
