// Package memh reads and writes the hexadecimal text format loaded into
// simulation memories with $readmemh, and lays values out into fixed-size,
// power-of-two aligned memory blocks.
//
// Every value is one line of eight lowercase hex digits split into two
// groups of four by an underscore, most significant byte first:
//
//	0001_0000   1.0 in Q16.16
//	ffff_ffff   -1 (raw)
//
// Lines starting with '@' set the load address and carry no value.
package memh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lenet_ref/nn/layers"
	"lenet_ref/tensor"
)

// ZeroLine is the placeholder written into padding slots.
const ZeroLine = "0000_0000"

// BigEndian returns the four bytes of v, most significant first, independent
// of the host byte order.
func BigEndian(v int32) [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return b
}

// Format renders v as one memory line without the trailing newline.
func Format(v int32) string {
	b := BigEndian(v)
	return fmt.Sprintf("%02x%02x_%02x%02x", b[0], b[1], b[2], b[3])
}

// Parse reads one memory line back. Underscores are ignored, as $readmemh
// ignores them; exactly eight hex digits must remain.
func Parse(line string) (int32, error) {
	s := strings.ReplaceAll(strings.TrimSpace(line), "_", "")
	if len(s) != 8 {
		return 0, fmt.Errorf("memh: %q: want 8 hex digits", line)
	}
	u, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("memh: %q: %w", line, err)
	}
	return int32(uint32(u)), nil
}

// WriteValues writes one line per value.
func WriteValues(w io.Writer, vals []int32) error {
	bw := bufio.NewWriter(w)
	for _, v := range vals {
		if _, err := bw.WriteString(Format(v)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadValues parses every value line of r. Address lines and blank lines are
// skipped.
func ReadValues(r io.Reader) ([]int32, error) {
	var vals []int32
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		v, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		vals = append(vals, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return vals, nil
}

// WriteTensor writes a feature map in storage order: channel, row, column.
func WriteTensor(w io.Writer, t *tensor.Tensor) error {
	return WriteValues(w, t.Data)
}

// WriteKernels writes every kernel's weights, kernel by kernel, each in
// depth, row, column order. Biases are not written.
func WriteKernels(w io.Writer, ks *layers.KernelSet) error {
	for i, k := range ks.Kernels {
		if err := WriteValues(w, k.Weights.Data); err != nil {
			return fmt.Errorf("kernel %d: %w", i, err)
		}
	}
	return nil
}
