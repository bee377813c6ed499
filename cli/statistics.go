package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
)

func printSummary(timings map[string][]float64) {
	if len(timings) == 0 {
		fmt.Fprintln(os.Stderr, "No timings to report")
		return
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Timing summary (ms)")
	fmt.Fprintln(os.Stderr, "===================")

	names := make([]string, 0, len(timings))
	for name := range timings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := timings[name]
		if len(values) == 0 {
			continue
		}
		printTimingSummary(name, values)
	}
}

func printTimingSummary(name string, values []float64) {
	n := len(values)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(n)

	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	var variance float64
	for _, v := range values {
		d := v - avg
		variance += d * d
	}
	variance /= float64(n)

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, name)
	fmt.Fprintln(os.Stderr, strings.Repeat("-", len(name)))

	fmt.Fprintf(os.Stderr, "  samples : %d\n", n)
	fmt.Fprintf(os.Stderr, "  min     : %.6f\n", sorted[0])
	fmt.Fprintf(os.Stderr, "  max     : %.6f\n", sorted[n-1])
	fmt.Fprintf(os.Stderr, "  average : %.6f\n", avg)
	fmt.Fprintf(os.Stderr, "  median  : %.6f\n", median)
	fmt.Fprintf(os.Stderr, "  p99     : %.6f\n", percentile(sorted, 0.99))
	fmt.Fprintf(os.Stderr, "  stddev  : %.6f\n", math.Sqrt(variance))
}

// percentile expects sorted to be in ascending order.
func percentile(sorted []float64, p float64) float64 {
	i := int(math.Ceil(p*float64(len(sorted)))) - 1
	return sorted[max(0, min(i, len(sorted)-1))]
}
