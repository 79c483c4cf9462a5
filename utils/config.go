package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the settings of one golden-model run
type Config struct {
	WeightsDir  string // directory holding layerN.wt / layerN.bs; empty selects stimulus mode
	ImagePath   string // whitespace-separated pixel intensities; empty selects stimulus mode
	DumpDir     string // per-layer hex dumps, optional
	WeightsDump string // layer 0 weights in hex, optional
	Seed        string // stimulus key
}

// ParseLayers parses a layer list such as "0 2 4 5" or "0,2,4,5"
func ParseLayers(s string) ([]int, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	layers := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("negative layer index %d", n)
		}
		layers[i] = n
	}
	return layers, nil
}

// ValidateConfig validates the run configuration
func ValidateConfig(config *Config) error {
	if (config.WeightsDir == "") != (config.ImagePath == "") {
		return fmt.Errorf("weights directory and image must be given together")
	}

	if config.WeightsDir != "" {
		st, err := os.Stat(config.WeightsDir)
		if err != nil {
			return fmt.Errorf("weights directory: %w", err)
		}
		if !st.IsDir() {
			return fmt.Errorf("weights directory: %s is not a directory", config.WeightsDir)
		}
		if _, err := os.Stat(config.ImagePath); err != nil {
			return fmt.Errorf("image: %w", err)
		}
	} else if config.Seed == "" {
		return fmt.Errorf("stimulus mode needs a seed")
	}

	if config.DumpDir != "" {
		if err := os.MkdirAll(config.DumpDir, 0755); err != nil {
			return fmt.Errorf("dump directory: %w", err)
		}
	}

	return nil
}
