package canvas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCover_FillsContainer(t *testing.T) {
	cases := []struct {
		name      string
		natural   Size
		container Size
	}{
		{"wide image in square container", Size{W: 1600, H: 900}, Size{W: 800, H: 800}},
		{"tall image in wide container", Size{W: 900, H: 1600}, Size{W: 1200, H: 600}},
		{"matching aspect", Size{W: 1000, H: 500}, Size{W: 500, H: 250}},
		{"upscaling", Size{W: 100, H: 100}, Size{W: 700, H: 300}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Cover(tc.natural, tc.container, 0)

			// Cover-fit always fills at least one axis exactly and never
			// leaves a gap on the other.
			assert.GreaterOrEqual(t, m.ScaledW, tc.container.W-1e-9)
			assert.GreaterOrEqual(t, m.ScaledH, tc.container.H-1e-9)
			fillsWidth := math.Abs(m.ScaledW-tc.container.W) < 1e-9
			fillsHeight := math.Abs(m.ScaledH-tc.container.H) < 1e-9
			assert.True(t, fillsWidth || fillsHeight)
		})
	}
}

func TestCover_ExampleScenario(t *testing.T) {
	m := Cover(Size{W: 1600, H: 900}, Size{W: 800, H: 800}, 0)

	assert.InDelta(t, 800.0/900.0, m.Scale, 1e-9)
	assert.InDelta(t, 1422.2222, m.ScaledW, 0.001)
	assert.InDelta(t, 800, m.ScaledH, 1e-9)
	assert.InDelta(t, 622.2222, m.OverflowX, 0.001)
	assert.InDelta(t, 0, m.OverflowY, 1e-9)

	// A pan request far past the edge clamps to half the overflow.
	assert.InDelta(t, 311.1111, m.ClampPan(1000), 0.001)
	assert.InDelta(t, -311.1111, m.ClampPan(-1000), 0.001)
}

func TestClampPan_ZeroOverflow(t *testing.T) {
	// Image narrower than the container: drags are accepted but the
	// offset stays pinned at zero.
	m := Cover(Size{W: 400, H: 800}, Size{W: 800, H: 800}, 0)

	assert.Equal(t, 0.0, m.OverflowX)
	assert.Equal(t, 0.0, m.ClampPan(250))
	assert.Equal(t, 0.0, m.ClampPan(-250))
}

func TestClampPan_NonFinite(t *testing.T) {
	m := Cover(Size{W: 1600, H: 900}, Size{W: 800, H: 800}, 0)

	assert.Equal(t, 0.0, m.ClampPan(math.NaN()))
	assert.InDelta(t, m.OverflowX/2, m.ClampPan(math.Inf(1)), 1e-9)
}

func TestCoordinateRoundTrip(t *testing.T) {
	m := Cover(Size{W: 1600, H: 900}, Size{W: 800, H: 800}, 120)

	points := [][2]float64{
		{0, 0}, {50, 50}, {100, 100}, {12.5, 87.5}, {33.3, 66.6},
	}
	for _, p := range points {
		px, py := m.ToPixels(p[0], p[1])
		x, y := m.ToPercent(px, py)
		assert.InDelta(t, p[0], x, 1e-9)
		assert.InDelta(t, p[1], y, 1e-9)
	}
}

func TestCover_DegenerateFallsBackToContainerPercent(t *testing.T) {
	// Natural size unknown: positions are plain percent-of-container so
	// hotspots stay visible before image metrics load.
	m := Cover(Size{}, Size{W: 800, H: 600}, 0)

	assert.True(t, m.Degenerate)
	x, y := m.ToPixels(50, 50)
	assert.InDelta(t, 400, x, 1e-9)
	assert.InDelta(t, 300, y, 1e-9)

	px, py := m.ToPercent(400, 300)
	assert.InDelta(t, 50, px, 1e-9)
	assert.InDelta(t, 50, py, 1e-9)
}

func TestCover_PanShiftsWindowLeft(t *testing.T) {
	base := Cover(Size{W: 1600, H: 900}, Size{W: 800, H: 800}, 0)
	panned := Cover(Size{W: 1600, H: 900}, Size{W: 800, H: 800}, 100)

	x0, _ := base.ToPixels(50, 50)
	x1, _ := panned.ToPixels(50, 50)
	// Increasing pan moves the crop window right, so the same image point
	// renders further left.
	assert.Less(t, x1, x0)
}

func TestVisible(t *testing.T) {
	m := Cover(Size{W: 1600, H: 900}, Size{W: 800, H: 800}, 0)

	// Centered crop: the left edge of the image is cropped out.
	x, y := m.ToPixels(0, 50)
	assert.False(t, m.Visible(x, y))

	x, y = m.ToPixels(50, 50)
	assert.True(t, m.Visible(x, y))
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercent(-5))
	assert.Equal(t, 100.0, ClampPercent(250))
	assert.Equal(t, 42.5, ClampPercent(42.5))
	assert.Equal(t, 0.0, ClampPercent(math.NaN()))
	assert.Equal(t, 100.0, ClampPercent(math.Inf(1)))
}
