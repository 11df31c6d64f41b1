// Package imaging implements the scan processing core: it extracts the
// center slice along each anatomical axis of a loaded volume, derives a
// heart-region mask per slice, composites a translucent overlay onto the
// grayscale rendering, and aggregates physical measurements and viewer
// metadata into a single result.
package imaging

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"cardioscan/internal/models"
	"cardioscan/pkg/nifti"
)

// ScanMetadata is the fixed descriptive block attached to every analysis.
type ScanMetadata struct {
	AnatomicalArea string `json:"anatomical_area"`
	Categories     string `json:"categories"`
	DataVolume     string `json:"data_volume"`
	FileFormat     string `json:"file_format"`
}

// Resolution summarizes voxel spacing and volume extents for display.
type Resolution struct {
	SpacingMm string `json:"spacing_mm"`
	ImageSize string `json:"image_size"`
	NumSlices string `json:"num_slices"`
}

// SliderRange describes the valid slice-index range along one axis and the
// center index the pipeline rendered.
type SliderRange struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Value int `json:"value"`
}

// Result aggregates everything one analysis produces. It lives only for
// the request/response cycle; the debug PNGs on disk are its only residue.
type Result struct {
	Meta         ScanMetadata                `json:"scan_metadata"`
	Resolution   Resolution                  `json:"resolution"`
	Measurements MeasurementReport           `json:"measurements"`
	Slices       map[models.Axis]string      `json:"slices"`
	Sliders      map[models.Axis]SliderRange `json:"sliders"`
}

// Pipeline runs the load → slice → mask → render → measure sequence for
// one scan. There is no internal parallelism or caching: each request is a
// single synchronous pass, and any stage failure aborts the whole run with
// no partial per-axis output.
type Pipeline struct {
	renderer *Renderer
	logger   *zap.Logger
}

// NewPipeline creates a pipeline writing slice images into slicesDir.
func NewPipeline(slicesDir string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		renderer: NewRenderer(slicesDir),
		logger:   logger,
	}
}

// Process loads the scan at path and renders its center slices. Loader
// failures surface as models.InvalidInputError; everything downstream as
// models.ProcessingError.
func (p *Pipeline) Process(path string) (*Result, error) {
	p.logger.Info("loading scan", zap.String("path", path))

	vol, err := nifti.Load(path)
	if err != nil {
		return nil, err
	}

	return p.ProcessVolume(vol)
}

// ProcessVolume renders an already-loaded volume.
func (p *Pipeline) ProcessVolume(vol *models.Volume) (*Result, error) {
	p.logger.Info("volume loaded",
		zap.String("shape", vol.SizeString()),
		zap.Float64("spacing_x", vol.Spacing[0]),
		zap.Float64("spacing_y", vol.Spacing[1]),
		zap.Float64("spacing_z", vol.Spacing[2]))

	centers := CenterIndices(vol)
	slices := make(map[models.Axis]string, len(models.Axes))

	for _, axis := range models.Axes {
		sl, err := ExtractSlice(vol, axis, centers[axis])
		if err != nil {
			return nil, &models.ProcessingError{
				Stage: fmt.Sprintf("%s slice extraction", axis),
				Err:   err,
			}
		}

		p.logger.Debug("slice extracted",
			zap.String("axis", string(axis)),
			zap.Int("index", centers[axis]),
			zap.Float64("mean_intensity", stat.Mean(sl.Data, nil)),
			zap.Float64("stddev_intensity", stat.StdDev(sl.Data, nil)))

		mask := DeriveRegionMask(sl)
		uri, err := p.renderer.Render(sl, mask, axis)
		if err != nil {
			return nil, &models.ProcessingError{
				Stage: fmt.Sprintf("%s slice rendering", axis),
				Err:   err,
			}
		}

		p.logger.Debug("slice rendered",
			zap.String("axis", string(axis)),
			zap.Int("region_pixels", mask.Count()))

		slices[axis] = uri
	}

	measurements := ComputeMeasurements(vol.Shape(), vol.Spacing)
	p.logger.Info("measurements computed",
		zap.Float64("volume_cm3", measurements.VolumeCm3),
		zap.Float64("weight_g", measurements.WeightG))

	return &Result{
		Meta: ScanMetadata{
			AnatomicalArea: "Heart / Cardiovascular",
			Categories:     "CT Scan, Cardiology",
			DataVolume:     vol.SizeString(),
			FileFormat:     "NIfTI (.nii.gz)",
		},
		Resolution: Resolution{
			SpacingMm: fmt.Sprintf("%.2f × %.2f × %.2f",
				vol.Spacing[0], vol.Spacing[1], vol.Spacing[2]),
			ImageSize: vol.SizeString(),
			NumSlices: fmt.Sprintf("%d", vol.Nz),
		},
		Measurements: measurements.Report(),
		Slices:       slices,
		Sliders:      SliderRanges(vol),
	}, nil
}
