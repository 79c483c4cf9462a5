// lenet-pad: lay hex memory files out in accelerator memory slots
package main

import (
	"flag"
	"fmt"
	"os"

	"lenet_ref/memh"
	"lenet_ref/utils"

	"github.com/tebeka/atexit"
)

var (
	mode    = flag.String("mode", "plain", "plain (zero fill), img (addressed image planes) or knl (addressed kernels)")
	inFile  = flag.String("in", "", "Input hex file")
	outFile = flag.String("out", "", "Output hex file")
	width   = flag.Int("w", 5, "Plane width")
	height  = flag.Int("h", 5, "Plane height")
	depth   = flag.Int("d", 1, "Planes per kernel")
	num     = flag.Int("n", 1, "Kernels per layer")
	base    = flag.Int("base", 0, "First load address (img, knl)")
	verbose = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	if *inFile == "" || *outFile == "" {
		flag.Usage()
		atexit.Fatalf("Error: -in and -out are required")
	}
	in, err := os.Open(*inFile)
	if err != nil {
		atexit.Fatalf("Error: %v", err)
	}
	atexit.Register(func() { in.Close() })
	out, err := os.Create(*outFile)
	if err != nil {
		atexit.Fatalf("Error: %v", err)
	}
	atexit.Register(func() { out.Close() })

	switch *mode {
	case "plain":
		n, err := memh.Pad(in, out, memh.PlainLayout{W: *width, H: *height, D: *depth, N: *num})
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}
		if utils.Verbose {
			fmt.Fprintf(utils.Output, "%s: %d lines\n", *outFile, n)
		}
	case "img", "knl":
		var next int
		if *mode == "img" {
			next, err = memh.PadImage(in, out, memh.ImageLayout{W: *width, H: *height}, *base)
		} else {
			next, err = memh.PadKernel(in, out, memh.KernelLayout{Area: *width * *height, D: *depth}, *base)
		}
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}
		// next base, for chaining calls
		fmt.Println(next)
	default:
		atexit.Fatalf("Error: unknown mode %q", *mode)
	}
	atexit.Exit(0)
}
