package memh

import (
	"bufio"
	"fmt"
	"io"
)

// Slot sizes of the accelerator memories, in values.
const (
	SlotArea  = 32 // one W×H plane
	SlotDepth = 16 // planes per kernel or feature map
	SlotNum   = 16 // kernels per layer
)

// PlainLayout describes a kernel set dump of N kernels of W×H×D values.
type PlainLayout struct {
	W, H, D, N int
}

// ImageLayout describes a W×H plane stream.
type ImageLayout struct {
	W, H int
}

// KernelLayout describes a stream of kernels of Area values per plane and D
// planes. Area 0 means 25 (5×5 kernels).
type KernelLayout struct {
	Area, D int
}

func (l PlainLayout) validate() error {
	switch {
	case l.W <= 0 || l.H <= 0 || l.D <= 0 || l.N <= 0:
		return fmt.Errorf("memh: non-positive layout %+v", l)
	case l.W*l.H > SlotArea:
		return fmt.Errorf("memh: plane of %d values exceeds slot of %d", l.W*l.H, SlotArea)
	case l.D > SlotDepth:
		return fmt.Errorf("memh: depth %d exceeds slot of %d", l.D, SlotDepth)
	case l.N > SlotNum:
		return fmt.Errorf("memh: %d kernels exceed slot of %d", l.N, SlotNum)
	}
	return nil
}

// Pad copies r to w and fills every plane, depth stack and kernel set up to
// its slot size with zero lines. It returns the number of lines written.
func Pad(r io.Reader, w io.Writer, l PlainLayout) (int, error) {
	if err := l.validate(); err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(w)
	written := 0
	zeros := func(n int) error {
		for i := 0; i < n; i++ {
			if _, err := fmt.Fprintln(bw, ZeroLine); err != nil {
				return err
			}
		}
		written += n
		return nil
	}

	area := l.W * l.H
	curArea, curDepth, curNum := 0, 0, 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if _, err := fmt.Fprintln(bw, sc.Text()); err != nil {
			return written, err
		}
		written++
		curArea++
		if curArea < area {
			continue
		}
		curArea = 0
		if err := zeros(SlotArea - area); err != nil {
			return written, err
		}
		curDepth++
		if curDepth < l.D {
			continue
		}
		curDepth = 0
		if err := zeros((SlotDepth - l.D) * SlotArea); err != nil {
			return written, err
		}
		curNum++
		if curNum < l.N {
			continue
		}
		curNum = 0
		if err := zeros((SlotNum - l.N) * SlotArea * SlotDepth); err != nil {
			return written, err
		}
	}
	if err := sc.Err(); err != nil {
		return written, err
	}
	return written, bw.Flush()
}

// addrWriter copies lines and keeps the load address in step. The address
// travels in and out of the exported functions; nothing is global.
type addrWriter struct {
	w    *bufio.Writer
	addr int
}

func (a *addrWriter) mark() error {
	_, err := fmt.Fprintf(a.w, "@%x\n", a.addr)
	return err
}

func (a *addrWriter) value(line string) error {
	a.addr++
	_, err := fmt.Fprintln(a.w, line)
	return err
}

func (a *addrWriter) skip(n int) error {
	a.addr += n
	return a.mark()
}

// PadImage copies r to w, placing each row of l.W values at the start of a
// SlotArea-wide row and each l.H-row plane at the start of a SlotArea×SlotArea
// block, by emitting address lines instead of zero fill. Addresses start at
// base; the address following the last block is returned.
func PadImage(r io.Reader, w io.Writer, l ImageLayout, base int) (int, error) {
	if l.W <= 0 || l.H <= 0 || l.W > SlotArea || l.H > SlotArea {
		return base, fmt.Errorf("memh: image layout %dx%d does not fit %dx%d slots", l.W, l.H, SlotArea, SlotArea)
	}
	aw := &addrWriter{w: bufio.NewWriter(w), addr: base}
	if err := aw.mark(); err != nil {
		return aw.addr, err
	}
	curW, curH := 0, 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := aw.value(sc.Text()); err != nil {
			return aw.addr, err
		}
		curW++
		if curW < l.W {
			continue
		}
		curW = 0
		if err := aw.skip(SlotArea - l.W); err != nil {
			return aw.addr, err
		}
		curH++
		if curH < l.H {
			continue
		}
		curH = 0
		if err := aw.skip((SlotArea - l.H) * SlotArea); err != nil {
			return aw.addr, err
		}
	}
	if err := sc.Err(); err != nil {
		return aw.addr, err
	}
	return aw.addr, aw.w.Flush()
}

// PadKernel copies r to w, placing each kernel plane of l.Area values at the
// start of a SlotArea slot and each l.D-plane kernel at the start of a
// SlotDepth×SlotArea block. Addresses start at base; the address following
// the last block is returned.
func PadKernel(r io.Reader, w io.Writer, l KernelLayout, base int) (int, error) {
	if l.Area == 0 {
		l.Area = 25
	}
	if l.Area < 0 || l.Area > SlotArea || l.D <= 0 || l.D > SlotDepth {
		return base, fmt.Errorf("memh: kernel layout area=%d depth=%d does not fit %d×%d slots",
			l.Area, l.D, SlotArea, SlotDepth)
	}
	aw := &addrWriter{w: bufio.NewWriter(w), addr: base}
	if err := aw.mark(); err != nil {
		return aw.addr, err
	}
	curArea, curDepth := 0, 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := aw.value(sc.Text()); err != nil {
			return aw.addr, err
		}
		curArea++
		if curArea < l.Area {
			continue
		}
		curArea = 0
		if err := aw.skip(SlotArea - l.Area); err != nil {
			return aw.addr, err
		}
		curDepth++
		if curDepth < l.D {
			continue
		}
		curDepth = 0
		if err := aw.skip((SlotDepth - l.D) * SlotArea); err != nil {
			return aw.addr, err
		}
	}
	if err := sc.Err(); err != nil {
		return aw.addr, err
	}
	return aw.addr, aw.w.Flush()
}
