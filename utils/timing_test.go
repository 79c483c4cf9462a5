package utils

import (
	"bytes"
	"math"
	"testing"
	"time"
)

func TestDurationUS(t *testing.T) {
	d := 1234*time.Microsecond + 567*time.Nanosecond
	got := DurationUS(d)
	if math.Abs(got-1234.567) > 0.001 {
		t.Fatalf("want 1234.567µs, got %.3f", got)
	}
}

func TestTimingStatsRecord(t *testing.T) {
	var s TimingStats
	s.Record(0, "conv", 3*time.Millisecond)
	s.Record(1, "max_pool", time.Millisecond)
	if len(s.Layers) != 2 {
		t.Fatalf("want 2 layers, got %d", len(s.Layers))
	}
	if s.ForwardTime() != 4*time.Millisecond {
		t.Fatalf("want 4ms forward, got %v", s.ForwardTime())
	}
}

func TestPrintTimingStatsVerbose(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldVerbose := Output, Verbose
	Output, Verbose = &buf, true
	defer func() { Output, Verbose = oldOut, oldVerbose }()

	s := &TimingStats{TotalTime: 10 * time.Millisecond}
	s.Record(4, "conv", 5*time.Millisecond)
	PrintTimingStats(s)
	if !bytes.Contains(buf.Bytes(), []byte("Layer 4 conv")) {
		t.Fatalf("missing layer line in %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("100.0% of forward")) {
		t.Fatalf("missing share in %q", buf.String())
	}

	buf.Reset()
	Verbose = false
	PrintTimingStats(s)
	if buf.Len() != 0 {
		t.Fatalf("quiet mode printed %q", buf.String())
	}
}

func TestPrintTimingStatsEmpty(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldVerbose := Output, Verbose
	Output, Verbose = &buf, true
	defer func() { Output, Verbose = oldOut, oldVerbose }()

	// zero totals must not divide by zero
	PrintTimingStats(&TimingStats{})
	if !bytes.Contains(buf.Bytes(), []byte("(0.0%)")) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
