package imaging

import "fmt"

const (
	// heartBoundsFraction approximates how much of the scan bounding box
	// the heart occupies. The numeric measurements are derived from volume
	// shape and spacing only; the region mask drives the overlay, not
	// these numbers.
	heartBoundsFraction = 0.3

	// heartTissueDensity is the assumed tissue density in g/cm³.
	heartTissueDensity = 1.06
)

// Measurements holds the derived physical quantities for a scan.
type Measurements struct {
	LengthCm  float64
	WidthCm   float64
	DepthCm   float64
	VolumeCm3 float64
	WeightG   float64
}

// MeasurementReport is the formatted, presentation-ready form of
// Measurements, matching the API's measurement strings.
type MeasurementReport struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Depth  string `json:"depth"`
	Volume string `json:"volume"`
	Weight string `json:"weight"`
}

// ComputeMeasurements derives physical extents from shape × spacing,
// converts to centimeters, and estimates enclosed volume and mass from the
// bounding box.
func ComputeMeasurements(shape [3]int, spacing [3]float64) Measurements {
	lengthCm := float64(shape[0]) * spacing[0] / 10
	widthCm := float64(shape[1]) * spacing[1] / 10
	depthCm := float64(shape[2]) * spacing[2] / 10

	volumeCm3 := lengthCm * widthCm * depthCm * heartBoundsFraction

	return Measurements{
		LengthCm:  lengthCm,
		WidthCm:   widthCm,
		DepthCm:   depthCm,
		VolumeCm3: volumeCm3,
		WeightG:   volumeCm3 * heartTissueDensity,
	}
}

// Report formats the measurements for presentation.
func (m Measurements) Report() MeasurementReport {
	return MeasurementReport{
		Length: fmt.Sprintf("%.1f cm", m.LengthCm),
		Width:  fmt.Sprintf("%.1f cm", m.WidthCm),
		Depth:  fmt.Sprintf("%.1f cm", m.DepthCm),
		Volume: fmt.Sprintf("%.1f cm³", m.VolumeCm3),
		Weight: fmt.Sprintf("~%.0f g", m.WeightG),
	}
}
