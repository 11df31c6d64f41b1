package imaging

import (
	"math"
	"testing"
)

// gradientSlice builds a d0×d1 slice whose values ramp linearly from 0 to 1
// across the flattened pixel order.
func gradientSlice(d0, d1 int) *Slice {
	s := &Slice{Data: make([]float64, d0*d1), D0: d0, D1: d1}
	n := float64(len(s.Data) - 1)
	for i := range s.Data {
		s.Data[i] = float64(i) / n
	}
	return s
}

func flatSlice(d0, d1 int, value float64) *Slice {
	s := &Slice{Data: make([]float64, d0*d1), D0: d0, D1: d1}
	for i := range s.Data {
		s.Data[i] = value
	}
	return s
}

func TestMaskShapeMatchesSlice(t *testing.T) {
	for _, dims := range [][2]int{{20, 20}, {7, 31}, {3, 3}} {
		s := gradientSlice(dims[0], dims[1])
		m := DeriveRegionMask(s)

		if m.D0 != s.D0 || m.D1 != s.D1 {
			t.Errorf("Expected mask shape %dx%d, got %dx%d", s.D0, s.D1, m.D0, m.D1)
		}
		if len(m.Bits) != len(s.Data) {
			t.Errorf("Expected %d mask bits, got %d", len(s.Data), len(m.Bits))
		}
	}
}

func TestBandPassThreshold(t *testing.T) {
	// A 20×20 ramp normalizes to ~[0,1], so roughly half the 400 pixels
	// fall inside the (0.3, 0.8) band and the threshold result is kept.
	s := gradientSlice(20, 20)
	m := DeriveRegionMask(s)

	if m.Count() < minRegionPixels {
		t.Fatalf("Expected thresholded mask with at least %d pixels, got %d",
			minRegionPixels, m.Count())
	}

	// A mid-band pixel must be marked, pixels outside the band must not.
	midIdx := len(s.Data) / 2 // normalized ≈ 0.5
	if !m.Bits[midIdx] {
		t.Error("Expected mid-intensity pixel inside the region")
	}
	if m.Bits[0] {
		t.Error("Expected lowest-intensity pixel outside the region")
	}
	if m.Bits[len(s.Data)-1] {
		t.Error("Expected highest-intensity pixel outside the region")
	}
}

func TestThresholdBoundsAreStrict(t *testing.T) {
	// Values sitting exactly on the band edges after normalization must be
	// excluded: the band is 0.3 < v < 0.8, not inclusive.
	s := &Slice{Data: make([]float64, 200), D0: 10, D1: 20}
	for i := range s.Data {
		switch {
		case i < 50:
			s.Data[i] = 0.0
		case i < 150:
			s.Data[i] = 0.5
		default:
			s.Data[i] = 1.0
		}
	}
	m := DeriveRegionMask(s)

	// 100 mid pixels pass: just enough to keep the thresholded mask.
	if got := m.Count(); got != 100 {
		t.Errorf("Expected exactly 100 in-region pixels, got %d", got)
	}
	if m.Bits[0] || m.Bits[199] {
		t.Error("Expected extreme-intensity pixels outside the region")
	}
}

func TestFlatSliceFallsBackToDisc(t *testing.T) {
	// max == min makes the epsilon-guarded normalizer produce all zeros,
	// so nothing passes the band and the disc fallback kicks in.
	s := flatSlice(40, 40, 7.5)
	m := DeriveRegionMask(s)

	if m.Count() == 0 {
		t.Fatal("Expected non-empty disc fallback mask")
	}

	// Disc center (20, 20), radius 10.
	if !m.At(20, 20) {
		t.Error("Expected disc center inside the region")
	}
	if !m.At(20, 29) {
		t.Error("Expected pixel at distance 9 inside the region")
	}
	if m.At(20, 30) {
		t.Error("Expected pixel at distance 10 outside the region (strict bound)")
	}
	if m.At(0, 0) {
		t.Error("Expected corner outside the region")
	}
}

func TestSparseSliceFallsBackToDisc(t *testing.T) {
	// Fewer than 100 pixels in the band: the thresholded mask is discarded.
	s := flatSlice(40, 40, 0)
	for i := 0; i < 50; i++ {
		s.Data[i] = 0.5
	}
	s.Data[len(s.Data)-1] = 1.0

	m := DeriveRegionMask(s)

	if !m.At(20, 20) {
		t.Error("Expected disc fallback centered on the slice")
	}
	if m.At(0, 9) {
		t.Error("Expected band pixel dropped in favor of the disc")
	}
}

func TestDiscDegeneratesToEmptyForTinySlices(t *testing.T) {
	// min(3,3)/4 == 0: the disc has no interior under a strict bound.
	s := flatSlice(3, 3, 1.0)
	m := DeriveRegionMask(s)

	if got := m.Count(); got != 0 {
		t.Errorf("Expected empty mask for radius 0, got %d pixels", got)
	}
}

func TestDiscUsesSmallerExtent(t *testing.T) {
	m := discMask(40, 12) // radius min(40,12)/4 = 3

	if !m.At(20, 6) {
		t.Error("Expected disc center inside the region")
	}
	if m.At(20, 9) {
		t.Error("Expected pixel at distance 3 outside the region (strict bound)")
	}
	if m.At(20, 6+2) == false {
		t.Error("Expected pixel at distance 2 inside the region")
	}

	for i := 0; i < m.D0; i++ {
		for j := 0; j < m.D1; j++ {
			di, dj := float64(i-20), float64(j-6)
			inside := math.Sqrt(di*di+dj*dj) < 3
			if m.At(i, j) != inside {
				t.Fatalf("Disc membership mismatch at (%d,%d)", i, j)
			}
		}
	}
}
