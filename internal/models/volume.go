package models

import "fmt"

// Axis identifies one of the three anatomical viewing planes.
type Axis string

const (
	// Axial fixes the last volume axis (XY plane).
	Axial Axis = "axial"

	// Coronal fixes the middle volume axis (XZ plane).
	Coronal Axis = "coronal"

	// Sagittal fixes the first volume axis (YZ plane).
	Sagittal Axis = "sagittal"
)

// Axes lists the viewing planes in the order they are reported.
var Axes = []Axis{Axial, Coronal, Sagittal}

// Volume represents a 3D scan volume loaded from a NIfTI container.
type Volume struct {
	// Data is the voxel intensities as a 1D array with the first axis
	// varying fastest, matching the NIfTI on-disk ordering.
	Data []float64

	// Nx, Ny, Nz are the extents of the three spatial axes in voxels.
	Nx, Ny, Nz int

	// Spacing is the physical size of one voxel step along each axis in mm.
	// Always three positive values; defaults to 1.0 per axis when the
	// source header lacks usable resolution information.
	Spacing [3]float64
}

// Shape returns the voxel extents as a triple.
func (v *Volume) Shape() [3]int {
	return [3]int{v.Nx, v.Ny, v.Nz}
}

// At returns the voxel intensity at (x, y, z). Bounds are the caller's
// responsibility; indices come from extents the Volume itself reported.
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[z*v.Nx*v.Ny+y*v.Nx+x]
}

// SizeString formats the voxel extents the way the API reports them.
func (v *Volume) SizeString() string {
	return fmt.Sprintf("%d × %d × %d", v.Nx, v.Ny, v.Nz)
}
