package imaging

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// maskThresholdLow and maskThresholdHigh bound the normalized-intensity
	// band treated as "heart region". This is a visualization heuristic
	// standing in for real segmentation.
	maskThresholdLow  = 0.3
	maskThresholdHigh = 0.8

	// minRegionPixels is the smallest thresholded area accepted before the
	// mask is replaced wholesale by the synthetic disc.
	minRegionPixels = 100

	// maskNormEps guards the mask normalizer against division by zero on
	// constant slices. The display normalizer deliberately does not use an
	// epsilon; the two routines must stay separate (flat slices must yield
	// an empty thresholded mask here but an all-zero image there).
	maskNormEps = 1e-8
)

// Mask is a boolean region-of-interest map with the same shape as the
// slice it was derived from.
type Mask struct {
	Bits   []bool
	D0, D1 int
}

// At reports whether plane coordinate (i, j) is inside the region.
func (m *Mask) At(i, j int) bool {
	return m.Bits[i*m.D1+j]
}

// Count returns the number of in-region pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// DeriveRegionMask produces the heart-region mask for a slice: an
// epsilon-guarded min-max normalization followed by a band-pass threshold,
// with a centered disc substituted when the thresholded area is degenerate.
// A well-defined mask is always returned, even for flat or noisy input.
func DeriveRegionMask(s *Slice) *Mask {
	min := floats.Min(s.Data)
	max := floats.Max(s.Data)
	scale := max - min + maskNormEps

	mask := &Mask{Bits: make([]bool, len(s.Data)), D0: s.D0, D1: s.D1}
	count := 0
	for i, v := range s.Data {
		norm := (v - min) / scale
		if norm > maskThresholdLow && norm < maskThresholdHigh {
			mask.Bits[i] = true
			count++
		}
	}

	if count < minRegionPixels {
		return discMask(s.D0, s.D1)
	}
	return mask
}

// discMask marks all pixels strictly inside a disc centered on the plane,
// with radius a quarter of the smaller extent. Used when thresholding finds
// too little structure to highlight.
func discMask(d0, d1 int) *Mask {
	centerI, centerJ := d0/2, d1/2
	radius := d0
	if d1 < d0 {
		radius = d1
	}
	radius /= 4

	mask := &Mask{Bits: make([]bool, d0*d1), D0: d0, D1: d1}
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			di := float64(i - centerI)
			dj := float64(j - centerJ)
			if math.Sqrt(di*di+dj*dj) < float64(radius) {
				mask.Bits[i*d1+j] = true
			}
		}
	}
	return mask
}
