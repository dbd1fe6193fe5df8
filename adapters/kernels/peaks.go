// Package kernels implements the numeric analysis primitives of spec
// §4.1: peak detection, noise estimation, curve fitting, matched
// filtering, linear regression, and spike-train statistics. These are
// the pure, allocation-light building blocks adapters/analyses composes.
package kernels

import "math"

// Peak is one detected local maximum.
type Peak struct {
	Index      int
	Value      float64
	Prominence float64
	Width      float64 // samples, 0 unless WidthRelHeight > 0 in Options
}

// PeakOptions constrains candidate peaks.
type PeakOptions struct {
	MinHeight       *float64
	MinProminence   *float64
	MinDistance     int // samples
	MinWidth        float64
	WidthRelHeight  float64 // fraction of prominence at which to measure width; 0 disables
}

// FindPeaks locates local maxima in x and filters them by height,
// prominence, inter-peak distance, and width, in that order (spec
// §4.1.1). Non-finite samples are treated as -Inf: they are never
// candidates, and they count as low ground when their neighbours'
// candidacy and prominence are computed.
func FindPeaks(x []float64, opts PeakOptions) []Peak {
	n := len(x)
	if n < 3 {
		return nil
	}
	clean := make([]float64, n)
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			clean[i] = math.Inf(-1)
		} else {
			clean[i] = v
		}
	}

	candidates := findCandidates(clean)
	for i := range candidates {
		candidates[i].Prominence = prominenceOf(clean, candidates[i].Index)
	}

	if opts.MinHeight != nil {
		candidates = filterPeaks(candidates, func(p Peak) bool { return p.Value >= *opts.MinHeight })
	}
	if opts.MinProminence != nil {
		candidates = filterPeaks(candidates, func(p Peak) bool { return p.Prominence >= *opts.MinProminence })
	}
	if opts.MinDistance > 1 {
		candidates = enforceDistance(candidates, opts.MinDistance)
	}
	if opts.WidthRelHeight > 0 {
		for i := range candidates {
			candidates[i].Width = widthOf(clean, candidates[i], opts.WidthRelHeight)
		}
		if opts.MinWidth > 0 {
			candidates = filterPeaks(candidates, func(p Peak) bool { return p.Width >= opts.MinWidth })
		}
	}
	return candidates
}

// findCandidates locates strict local maxima, resolving flat tops to
// their left edge.
func findCandidates(x []float64) []Peak {
	n := len(x)
	var peaks []Peak
	i := 1
	for i < n-1 {
		if x[i-1] < x[i] {
			j := i
			for j < n-1 && x[j] == x[j+1] {
				j++
			}
			if j < n-1 && x[j+1] < x[j] {
				peaks = append(peaks, Peak{Index: i, Value: x[i]})
			}
			i = j + 1
			continue
		}
		i++
	}
	return peaks
}

// prominenceOf computes topological prominence: the peak's height above
// the higher of its left and right bases, where each base is the lowest
// value encountered while scanning outward until a taller sample (or the
// array edge) is reached.
func prominenceOf(x []float64, idx int) float64 {
	height := x[idx]

	leftMin := height
	for i := idx - 1; i >= 0; i-- {
		if x[i] > height {
			break
		}
		if x[i] < leftMin {
			leftMin = x[i]
		}
	}
	rightMin := height
	for i := idx + 1; i < len(x); i++ {
		if x[i] > height {
			break
		}
		if x[i] < rightMin {
			rightMin = x[i]
		}
	}
	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return height - base
}

// widthOf measures the contour width at height = peak.Value -
// relHeight*peak.Prominence, linearly interpolating the crossing points.
func widthOf(x []float64, p Peak, relHeight float64) float64 {
	level := p.Value - relHeight*p.Prominence
	left := float64(p.Index)
	for i := p.Index; i > 0; i-- {
		if x[i-1] <= level {
			left = interp(float64(i-1), x[i-1], float64(i), x[i], level)
			break
		}
		if i == 1 {
			left = 0
		}
	}
	right := float64(p.Index)
	for i := p.Index; i < len(x)-1; i++ {
		if x[i+1] <= level {
			right = interp(float64(i), x[i], float64(i+1), x[i+1], level)
			break
		}
		if i == len(x)-2 {
			right = float64(len(x) - 1)
		}
	}
	return right - left
}

func interp(x0, y0, x1, y1, yTarget float64) float64 {
	if y1 == y0 {
		return x0
	}
	return x0 + (yTarget-y0)*(x1-x0)/(y1-y0)
}

func filterPeaks(peaks []Peak, keep func(Peak) bool) []Peak {
	out := peaks[:0:0]
	for _, p := range peaks {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// enforceDistance removes peaks closer than minDistance samples to a
// higher-priority (higher-prominence) peak. Priority ties break by
// higher amplitude, then by lower index.
func enforceDistance(peaks []Peak, minDistance int) []Peak {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sortByPriority(peaks, order)

	kept := make([]bool, len(peaks))
	for _, i := range order {
		ok := true
		for j, isKept := range kept {
			if !isKept {
				continue
			}
			if abs(peaks[i].Index-peaks[j].Index) < minDistance {
				ok = false
				break
			}
		}
		kept[i] = ok
	}
	var out []Peak
	for i, isKept := range kept {
		if isKept {
			out = append(out, peaks[i])
		}
	}
	return out
}

func sortByPriority(peaks []Peak, order []int) {
	less := func(a, b int) bool {
		pa, pb := peaks[order[a]], peaks[order[b]]
		if pa.Prominence != pb.Prominence {
			return pa.Prominence > pb.Prominence
		}
		if pa.Value != pb.Value {
			return pa.Value > pb.Value
		}
		return pa.Index < pb.Index
	}
	// insertion sort: peak counts in this domain are small (tens to low
	// thousands of spikes/events per trace).
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
