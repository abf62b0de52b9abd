// Package canvas holds the pure geometry and editing state behind the
// shop photograph views: cover-fit coordinate mapping, drag panning, and
// the hotspot editing session.
package canvas

import "math"

// Size is a width/height pair in pixels.
type Size struct {
	W float64
	H float64
}

func (s Size) valid() bool {
	return s.W > 0 && s.H > 0 && !math.IsInf(s.W, 0) && !math.IsInf(s.H, 0) &&
		!math.IsNaN(s.W) && !math.IsNaN(s.H)
}

// CoverMetrics is a snapshot of how a natural image is scaled and cropped
// to fill a container ("cover" fit: the image fills the container on at
// least one axis and the excess on the other axis is cropped).
type CoverMetrics struct {
	Scale     float64
	ScaledW   float64
	ScaledH   float64
	OverflowX float64
	OverflowY float64
	CropX     float64
	CropY     float64

	// Degenerate is set when either size is unknown or zero; percentage
	// points then fall back to percent-of-container placement so hotspots
	// stay visible before image metrics arrive.
	Degenerate bool

	container Size
}

// Cover computes the cover-fit metrics for a natural image inside a
// container under a horizontal pan offset. The pan is clamped to the
// actual overflow; vertical cropping is always centered.
func Cover(natural, container Size, pan float64) CoverMetrics {
	if !natural.valid() || !container.valid() {
		return CoverMetrics{Degenerate: true, container: container}
	}

	scale := math.Max(container.W/natural.W, container.H/natural.H)
	scaledW := natural.W * scale
	scaledH := natural.H * scale
	overflowX := math.Max(0, scaledW-container.W)
	overflowY := math.Max(0, scaledH-container.H)

	clamped := clampPan(pan, overflowX)

	return CoverMetrics{
		Scale:     scale,
		ScaledW:   scaledW,
		ScaledH:   scaledH,
		OverflowX: overflowX,
		OverflowY: overflowY,
		CropX:     clamped + overflowX/2,
		CropY:     overflowY / 2,
		container: container,
	}
}

// ClampPan bounds a requested pan offset to the crop window the metrics
// allow: [-overflowX/2, overflowX/2], exactly zero when nothing overflows.
func (m CoverMetrics) ClampPan(pan float64) float64 {
	return clampPan(pan, m.OverflowX)
}

func clampPan(pan, overflowX float64) float64 {
	if overflowX <= 0 || math.IsNaN(pan) {
		return 0
	}
	half := overflowX / 2
	return math.Max(-half, math.Min(half, pan))
}

// ToPixels maps a percentage point (0-100 of the natural image) to a pixel
// position relative to the container's top-left. Points inside the cropped
// region land outside the container and are clipped by the caller.
func (m CoverMetrics) ToPixels(xPct, yPct float64) (float64, float64) {
	if m.Degenerate {
		return xPct / 100 * m.container.W, yPct / 100 * m.container.H
	}
	return xPct/100*m.ScaledW - m.CropX, yPct/100*m.ScaledH - m.CropY
}

// ToPercent is the inverse of ToPixels for the same metrics snapshot.
func (m CoverMetrics) ToPercent(xPx, yPx float64) (float64, float64) {
	if m.Degenerate {
		if !m.container.valid() {
			return 0, 0
		}
		return xPx / m.container.W * 100, yPx / m.container.H * 100
	}
	return (xPx + m.CropX) / m.ScaledW * 100, (yPx + m.CropY) / m.ScaledH * 100
}

// Visible reports whether a pixel position lies inside the container.
func (m CoverMetrics) Visible(xPx, yPx float64) bool {
	return xPx >= 0 && yPx >= 0 && xPx <= m.container.W && yPx <= m.container.H
}

// ClampPercent bounds a percentage coordinate to [0,100]. Non-finite
// values are corrected to the nearest bound rather than dropped.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
