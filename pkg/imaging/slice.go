package imaging

import (
	"fmt"

	"cardioscan/internal/models"
)

// Slice is a 2D cross-section extracted from a volume at a fixed index
// along one axis. Data is row-major: element (i, j) of a D0×D1 plane sits
// at Data[i*D1+j].
type Slice struct {
	Data   []float64
	D0, D1 int
}

// At returns the intensity at plane coordinates (i, j).
func (s *Slice) At(i, j int) float64 {
	return s.Data[i*s.D1+j]
}

// CenterIndices returns the deterministic center index per axis: the
// integer floor of extent/2. Axial fixes the last axis, coronal the middle
// axis, sagittal the first.
func CenterIndices(v *models.Volume) map[models.Axis]int {
	return map[models.Axis]int{
		models.Axial:    v.Nz / 2,
		models.Coronal:  v.Ny / 2,
		models.Sagittal: v.Nx / 2,
	}
}

// SliderRanges reports the valid index range and chosen center per axis,
// for the viewer's slice-position sliders.
func SliderRanges(v *models.Volume) map[models.Axis]SliderRange {
	centers := CenterIndices(v)
	return map[models.Axis]SliderRange{
		models.Axial:    {Min: 0, Max: v.Nz - 1, Value: centers[models.Axial]},
		models.Coronal:  {Min: 0, Max: v.Ny - 1, Value: centers[models.Coronal]},
		models.Sagittal: {Min: 0, Max: v.Nx - 1, Value: centers[models.Sagittal]},
	}
}

// ExtractSlice copies the 2D plane at the given index along the given axis.
// The remaining two axes keep their natural order, so an axial slice is
// (x, y), a coronal slice (x, z) and a sagittal slice (y, z).
func ExtractSlice(v *models.Volume, axis models.Axis, index int) (*Slice, error) {
	switch axis {
	case models.Axial:
		if index < 0 || index >= v.Nz {
			return nil, fmt.Errorf("axial index %d out of range [0,%d)", index, v.Nz)
		}
		s := &Slice{Data: make([]float64, v.Nx*v.Ny), D0: v.Nx, D1: v.Ny}
		for i := 0; i < v.Nx; i++ {
			for j := 0; j < v.Ny; j++ {
				s.Data[i*s.D1+j] = v.At(i, j, index)
			}
		}
		return s, nil

	case models.Coronal:
		if index < 0 || index >= v.Ny {
			return nil, fmt.Errorf("coronal index %d out of range [0,%d)", index, v.Ny)
		}
		s := &Slice{Data: make([]float64, v.Nx*v.Nz), D0: v.Nx, D1: v.Nz}
		for i := 0; i < v.Nx; i++ {
			for j := 0; j < v.Nz; j++ {
				s.Data[i*s.D1+j] = v.At(i, index, j)
			}
		}
		return s, nil

	case models.Sagittal:
		if index < 0 || index >= v.Nx {
			return nil, fmt.Errorf("sagittal index %d out of range [0,%d)", index, v.Nx)
		}
		s := &Slice{Data: make([]float64, v.Ny*v.Nz), D0: v.Ny, D1: v.Nz}
		for i := 0; i < v.Ny; i++ {
			for j := 0; j < v.Nz; j++ {
				s.Data[i*s.D1+j] = v.At(index, i, j)
			}
		}
		return s, nil

	default:
		return nil, fmt.Errorf("invalid axis: %s", axis)
	}
}

// ExtractCenterSlice extracts the plane at the axis's center index.
func ExtractCenterSlice(v *models.Volume, axis models.Axis) (*Slice, error) {
	return ExtractSlice(v, axis, CenterIndices(v)[axis])
}
