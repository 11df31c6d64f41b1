package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	imglib "github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"

	"cardioscan/internal/models"
)

// overlayColor is the heart-region overlay fill: red at 40% opacity.
var overlayColor = color.NRGBA{R: 255, G: 0, B: 0, A: 102}

// Renderer turns a slice and its region mask into an embeddable PNG. Every
// render also persists a debug copy under the renderer's slices directory,
// named {axis}_heart_segmented.png and overwritten on each request.
type Renderer struct {
	// slicesDir is where debug copies are written. It is an explicit
	// parameter rather than a package-level path so isolated runs do not
	// collide on disk.
	slicesDir string
}

// NewRenderer creates a renderer writing debug copies into slicesDir.
func NewRenderer(slicesDir string) *Renderer {
	return &Renderer{slicesDir: slicesDir}
}

// Render composites the grayscale slice with the translucent region
// overlay, encodes it as PNG and returns it as a base64 data URI. The
// debug copy on disk is byte-identical to the URI payload.
func (r *Renderer) Render(s *Slice, m *Mask, axis models.Axis) (string, error) {
	if m.D0 != s.D0 || m.D1 != s.D1 {
		return "", fmt.Errorf("mask shape %dx%d does not match slice %dx%d",
			m.D0, m.D1, s.D0, s.D1)
	}

	encoded, err := renderPNG(s, m)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.slicesDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create slices directory: %w", err)
	}
	outPath := filepath.Join(r.slicesDir, fmt.Sprintf("%s_heart_segmented.png", axis))
	if err := os.WriteFile(outPath, encoded, 0644); err != nil {
		return "", fmt.Errorf("failed to save %s slice: %w", axis, err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(encoded), nil
}

// renderPNG builds the composited raster. Non-finite intensities are zeroed
// first; the display normalization maps a constant slice to all black
// rather than guarding with an epsilon, which is the documented degenerate
// behavior (and differs from the mask normalizer on purpose).
func renderPNG(s *Slice, m *Mask) ([]byte, error) {
	data := make([]float64, len(s.Data))
	for i, v := range s.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			data[i] = 0
		} else {
			data[i] = v
		}
	}

	min := floats.Min(data)
	max := floats.Max(data)
	scale := max - min

	// Natural orientation first: plane row i down, column j across.
	base := image.NewNRGBA(image.Rect(0, 0, s.D1, s.D0))
	overlay := image.NewNRGBA(image.Rect(0, 0, s.D1, s.D0))
	for i := 0; i < s.D0; i++ {
		for j := 0; j < s.D1; j++ {
			var norm float64
			if scale != 0 {
				norm = (data[i*s.D1+j] - min) / scale
			}
			g := uint8(norm * 255)
			base.SetNRGBA(j, i, color.NRGBA{R: g, G: g, B: g, A: 255})
			if m.At(i, j) {
				overlay.SetNRGBA(j, i, overlayColor)
			}
		}
	}

	composited := imglib.Overlay(base, overlay, image.Pt(0, 0), 1.0)

	// Display convention: first plane axis horizontal, origin at the
	// bottom. Transpose maps (j,i)->(i,j), FlipV then puts row 0 at the
	// bottom edge.
	oriented := imglib.FlipV(imglib.Transpose(composited))

	var buf bytes.Buffer
	if err := png.Encode(&buf, oriented); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
