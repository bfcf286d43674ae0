package app

import (
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toth-andor/drone/internal/flight"
)

func testTrack(n int) *TrackData {
	track := NewTrackData()
	for i := 0; i < n; i++ {
		track.Update(flight.Tick{
			Seq:       int64(i),
			Timestamp: float64(i+1) * 0.01,
			Throttle:  0.6,
			FrontLeft: 0.5, FrontRight: 0.5, RearLeft: 0.5, RearRight: 0.5,
			Gyro:     r3.Vector{X: 0.2},
			Position: r3.Vector{Y: float64(i) * 0.05},
		})
	}
	return track
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestNewTrackRendererDefaults(t *testing.T) {
	renderer, err := NewTrackRenderer(RenderConfig{})
	require.NoError(t, err)

	assert.Equal(t, defaultPlotWidth, renderer.config.Width)
	assert.Equal(t, float64(fontSize), renderer.config.FontSize)
	assert.Equal(t, defaultLeftBorder, renderer.config.BorderConfig.Left)
	assert.Equal(t, defaultRibbonHeight, renderer.config.RibbonHeight)
}

func TestRenderEmptyTrack(t *testing.T) {
	renderer, err := NewTrackRenderer(RenderConfig{})
	require.NoError(t, err)

	_, err = renderer.Render(NewTrackData())
	assert.Error(t, err)
}

func TestRenderImageSize(t *testing.T) {
	renderer, err := NewTrackRenderer(RenderConfig{Width: 300})
	require.NoError(t, err)

	img, err := renderer.Render(testTrack(200))
	require.NoError(t, err)

	bands := renderer.layout()
	wantWidth := defaultLeftBorder + 300 + defaultRightBorder
	wantHeight := bands[len(bands)-1].rect.Max.Y + defaultBottomBorder

	assert.Equal(t, wantWidth, img.Bounds().Dx())
	assert.Equal(t, wantHeight, img.Bounds().Dy())
}

func TestRenderLayoutBands(t *testing.T) {
	renderer, err := NewTrackRenderer(RenderConfig{})
	require.NoError(t, err)

	bands := renderer.layout()
	require.Len(t, bands, 10)

	// Four rotor ribbons, four input strips, the two trace bands
	assert.Equal(t, "FL", bands[0].label)
	assert.Equal(t, "thr", bands[4].label)
	assert.Equal(t, bandGyro, bands[8].kind)
	assert.Equal(t, bandAltitude, bands[9].kind)

	for i := 1; i < len(bands); i++ {
		assert.Greater(t, bands[i].rect.Min.Y, bands[i-1].rect.Max.Y,
			"band %d overlaps band %d", i, i-1)
	}
}

func TestRenderRibbonFollowsSpeed(t *testing.T) {
	renderer, err := NewTrackRenderer(RenderConfig{
		Width:         100,
		ColorTheme:    GrayscaleTheme,
		NoAnnotations: true,
	})
	require.NoError(t, err)

	// Front left rotor idles for the first half, then runs at full speed
	track := NewTrackData()
	for i := 0; i < 100; i++ {
		speed := 0.0
		if i >= 50 {
			speed = 1.0
		}
		track.Update(flight.Tick{Timestamp: float64(i+1) * 0.01, FrontLeft: speed})
	}

	img, err := renderer.Render(track)
	require.NoError(t, err)

	rect := renderer.layout()[0].rect
	midY := (rect.Min.Y + rect.Max.Y) / 2

	rLow, _, _, _ := img.At(rect.Min.X+5, midY).RGBA()
	rHigh, _, _, _ := img.At(rect.Max.X-5, midY).RGBA()
	assert.Less(t, rLow, rHigh)
}

func TestRenderAltitudeProfile(t *testing.T) {
	renderer, err := NewTrackRenderer(RenderConfig{
		Width:         100,
		NoAnnotations: true,
	})
	require.NoError(t, err)

	// Grounded for the first half, then hovering at five meters
	track := NewTrackData()
	for i := 0; i < 100; i++ {
		altitude := 0.0
		if i >= 50 {
			altitude = 5.0
		}
		track.Update(flight.Tick{Timestamp: float64(i+1) * 0.01, Position: r3.Vector{Y: altitude}})
	}

	img, err := renderer.Render(track)
	require.NoError(t, err)

	bands := renderer.layout()
	rect := bands[len(bands)-1].rect
	nearTop := rect.Min.Y + 2

	assert.True(t, isWhite(img.At(rect.Min.X+5, nearTop)), "grounded half should be empty near the band top")
	assert.False(t, isWhite(img.At(rect.Max.X-5, nearTop)), "hovering half should be filled near the band top")

	// The ground line row is always filled
	assert.False(t, isWhite(img.At(rect.Min.X+5, rect.Max.Y-1)))
}

func TestRenderGyroTrace(t *testing.T) {
	renderer, err := NewTrackRenderer(RenderConfig{
		Width:         100,
		NoAnnotations: true,
	})
	require.NoError(t, err)

	// Constant positive roll rate pins the X trace to one row
	track := NewTrackData()
	for i := 0; i < 100; i++ {
		track.Update(flight.Tick{Timestamp: float64(i+1) * 0.01, Gyro: r3.Vector{X: 2}})
	}

	img, err := renderer.Render(track)
	require.NoError(t, err)

	bands := renderer.layout()
	rect := bands[8].rect
	bounds := track.GyroBounds()
	traceY := valueToY(2, bounds, rect)

	assert.False(t, isWhite(img.At(rect.Min.X+50, traceY)))
}

func TestRenderWithAnnotations(t *testing.T) {
	renderer, err := NewTrackRenderer(RenderConfig{Width: 400, Title: "hover test"})
	require.NoError(t, err)

	img, err := renderer.Render(testTrack(300))
	require.NoError(t, err)

	// The info bar and legend leave non-white pixels in the bottom border
	bottom := img.Bounds().Max.Y - defaultBottomBorder/2
	marked := 0
	for x := 0; x < img.Bounds().Max.X; x++ {
		if !isWhite(img.At(x, bottom)) {
			marked++
		}
	}
	assert.Greater(t, marked, 0)
}

func TestTickIndexAt(t *testing.T) {
	assert.Equal(t, 0, tickIndexAt(0, 100, 1000))
	assert.Equal(t, 999, tickIndexAt(99, 100, 1000))
	assert.Equal(t, 0, tickIndexAt(5, 1, 1000))
	assert.Equal(t, 0, tickIndexAt(5, 100, 1))
}

func TestValueToY(t *testing.T) {
	area := image.Rect(0, 100, 10, 200)
	bounds := SignalBounds{Min: 0, Max: 1}

	assert.Equal(t, 199, valueToY(0, bounds, area))
	assert.Equal(t, 100, valueToY(1, bounds, area))
	assert.Equal(t, 100, valueToY(5, bounds, area))
	assert.Equal(t, 199, valueToY(-5, bounds, area))
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0s"},
		{0.5, "500ms"},
		{2.5, "2.5s"},
		{30, "30s"},
		{90, "1m30s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSeconds(tt.seconds))
	}
}

func TestCalculateNiceTimeStep(t *testing.T) {
	// 30 seconds across 1200px wants 8 labels; 5s is the first standard
	// step that yields at least that spacing
	assert.Equal(t, 5.0, calculateNiceTimeStep(30, 1200))

	// Short tracks fall back to the midpoint
	assert.Equal(t, 0.025, calculateNiceTimeStep(0.05, 1200))
}
