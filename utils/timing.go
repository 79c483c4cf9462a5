package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics and layer reports are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics and layer reports are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// LayerTiming is the wall time of one network stage.
type LayerTiming struct {
	Index int
	Kind  string
	Time  time.Duration
}

// TimingStats holds timing information for one inference run
type TimingStats struct {
	TotalTime       time.Duration
	DataLoadingTime time.Duration
	Layers          []LayerTiming
}

// Record appends the time of a stage.
func (s *TimingStats) Record(index int, kind string, d time.Duration) {
	s.Layers = append(s.Layers, LayerTiming{Index: index, Kind: kind, Time: d})
}

// ForwardTime is the sum of all recorded stages.
func (s *TimingStats) ForwardTime() time.Duration {
	var sum time.Duration
	for _, l := range s.Layers {
		sum += l.Time
	}
	return sum
}

func percent(part, whole time.Duration) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats) {
	if !Verbose {
		return
	}
	fwd := stats.ForwardTime()
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "  Data loading: %v (%.1f%%)\n", stats.DataLoadingTime, percent(stats.DataLoadingTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Forward pass: %v (%.1f%%)\n", fwd, percent(fwd, stats.TotalTime))
	fmt.Fprintln(Output, "\nForward pass breakdown:")
	for _, l := range stats.Layers {
		fmt.Fprintf(Output, "  Layer %d %-8s %10.1fµs (%.1f%% of forward)\n",
			l.Index, l.Kind, DurationUS(l.Time), percent(l.Time, fwd))
	}
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
