package app

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for speed visualization.
// Each theme is optimized for different visualization needs:
// - ClassicTheme: Traditional ribbon display (blue to red)
// - GrayscaleTheme: Monochrome visualization
// - JungleTheme: Nature-inspired colors for better contrast
// - ThermalTheme: Heat map visualization
// - MarineTheme: Water-depth inspired colors
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorMapSize = 256 // Default number of colors in the map

	hueStart = 236.0
)

var validColorThemes = map[ColorTheme]struct{}{
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
}

// Fixed colors of the trace bands.
var (
	gyroXColor    = colorful.Color{R: 0.86, G: 0.27, B: 0.27}
	gyroYColor    = colorful.Color{R: 0.22, G: 0.66, B: 0.32}
	gyroZColor    = colorful.Color{R: 0.23, G: 0.42, B: 0.86}
	altitudeColor = colorful.Color{R: 0.35, G: 0.55, B: 0.78}

	zeroLineColor = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
)

// SignalBounds is the value range mapped onto a color gradient or a trace
// band.
type SignalBounds struct {
	Min float64
	Max float64
}

// unitBounds covers rotor speeds and pilot inputs, which are clamped to
// [0, 1] before they are recorded.
func unitBounds() SignalBounds {
	return SignalBounds{Min: 0, Max: 1}
}

// ColorMapper provides efficient value-to-color mapping with support for
// different color themes and adjustable value bounds
type ColorMapper struct {
	colorMap      []color.Color // Pre-computed colors
	theme         func(float64) color.Color
	themeName     ColorTheme
	size          int     // Cache size
	valuePerIndex float64 // Value range per index step
	boundsMin     float64 // Cached bounds.Min
}

// NewColorMapper creates a new color mapper with specified theme and bounds.
// Uses default size (256) for the color map.
func NewColorMapper(theme ColorTheme, bounds SignalBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a new color mapper with specified size.
// Size determines the number of pre-computed colors in the map.
func NewColorMapperWithSize(theme ColorTheme, bounds SignalBounds, size int) *ColorMapper {
	if size <= 0 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap:  make([]color.Color, size),
		theme:     getColorTheme(theme),
		themeName: theme,
		size:      size,
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds updates the value bounds and recomputes the color map
func (cm *ColorMapper) UpdateBounds(bounds SignalBounds) {
	cm.boundsMin = bounds.Min
	cm.valuePerIndex = (bounds.Max - bounds.Min) / float64(cm.size-1)

	// Rebuild color map
	for i := 0; i < cm.size; i++ {
		normalized := float64(i) / float64(cm.size-1)
		cm.colorMap[i] = cm.theme(normalized)
	}
}

// GetColor returns a color for the given value
func (cm *ColorMapper) GetColor(v float64) color.Color {
	if math.IsNaN(v) || cm.valuePerIndex <= 0 {
		return cm.colorMap[0] // Return min color for degenerate input
	}

	// Convert value to index
	index := int((v - cm.boundsMin) / cm.valuePerIndex)

	// Clamp index to valid range
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= cm.size {
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

// ThemeName returns the current color theme name
func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}

// Size returns the color map size
func (cm *ColorMapper) Size() int {
	return cm.size
}

// Color theme implementations
func getColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case GrayscaleTheme:
		return func(v float64) color.Color {
			level := math.Pow(v, 0.7)
			return colorful.Color{R: level, G: level, B: level}
		}

	case JungleTheme:
		return func(v float64) color.Color {
			return colorful.Hsv(120-(v*60), 1.0, 0.3+(math.Pow(v, 0.6)*0.7))
		}

	case ThermalTheme:
		stops := []colorful.Color{
			{},                 // black
			{R: 1},             // red
			{R: 1, G: 1},       // yellow
			{R: 1, G: 1, B: 1}, // white
		}
		return func(v float64) color.Color {
			return blendStops(stops, v)
		}

	case MarineTheme:
		return func(v float64) color.Color {
			return colorful.Hsv(240-(v*60), 1.0-(v*0.8), 0.3+(math.Pow(v, 0.6)*0.7))
		}

	default: // ClassicTheme
		return func(v float64) color.Color {
			return colorful.Hsv(hueStart-(v*hueStart), 0.9+(v*0.1), math.Pow(v, 0.7))
		}
	}
}

// blendStops interpolates between gradient stops in Lab space. Lab blending
// can leave the RGB gamut, so the result is clamped.
func blendStops(stops []colorful.Color, v float64) color.Color {
	v = math.Max(0, math.Min(1, v))
	pos := v * float64(len(stops)-1)

	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	return stops[i].BlendLab(stops[i+1], pos-float64(i)).Clamped()
}
