package app

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewColorMapperDefaults(t *testing.T) {
	cm := NewColorMapper(ClassicTheme, unitBounds())

	assert.Equal(t, DefaultColorMapSize, cm.Size())
	assert.Equal(t, ClassicTheme, cm.ThemeName())
}

func TestColorMapperSizeFallback(t *testing.T) {
	cm := NewColorMapperWithSize(ClassicTheme, unitBounds(), -5)
	assert.Equal(t, DefaultColorMapSize, cm.Size())
}

func TestColorMapperClamps(t *testing.T) {
	cm := NewColorMapper(GrayscaleTheme, unitBounds())

	assert.Equal(t, cm.GetColor(0), cm.GetColor(-3))
	assert.Equal(t, cm.GetColor(1), cm.GetColor(7))
	assert.Equal(t, cm.GetColor(0), cm.GetColor(math.NaN()))
}

func TestColorMapperGradient(t *testing.T) {
	cm := NewColorMapper(GrayscaleTheme, unitBounds())

	r0, g0, b0, _ := cm.GetColor(0).RGBA()
	r1, g1, b1, _ := cm.GetColor(1).RGBA()

	// Grayscale keeps the channels equal and grows with the value
	assert.Equal(t, r0, g0)
	assert.Equal(t, g0, b0)
	assert.Equal(t, r1, g1)
	assert.Equal(t, g1, b1)
	assert.Less(t, r0, r1)
}

func TestColorMapperUpdateBounds(t *testing.T) {
	cm := NewColorMapper(ClassicTheme, unitBounds())
	before := cm.GetColor(0.5)

	cm.UpdateBounds(SignalBounds{Min: 0.5, Max: 10})
	after := cm.GetColor(0.5)

	assert.NotEqual(t, before, after)
	assert.Equal(t, cm.GetColor(0), after)
}

func TestColorThemesAreDistinct(t *testing.T) {
	themes := []ColorTheme{ClassicTheme, GrayscaleTheme, JungleTheme, ThermalTheme, MarineTheme}

	seen := make(map[string]ColorTheme, len(themes))
	for _, theme := range themes {
		cm := NewColorMapper(theme, unitBounds())
		r, g, b, a := cm.GetColor(0.75).RGBA()
		seen[fmt.Sprintf("%d/%d/%d/%d", r, g, b, a)] = theme
	}

	assert.Len(t, seen, len(themes))
}

func TestValidColorThemes(t *testing.T) {
	for _, theme := range []ColorTheme{ClassicTheme, GrayscaleTheme, JungleTheme, ThermalTheme, MarineTheme} {
		_, ok := validColorThemes[theme]
		assert.True(t, ok, "theme %s not registered", theme)
	}
}

func TestThermalThemeEndpoints(t *testing.T) {
	cm := NewColorMapper(ThermalTheme, unitBounds())

	r, g, b, _ := cm.GetColor(0).RGBA()
	assert.Zero(t, r)
	assert.Zero(t, g)
	assert.Zero(t, b)

	r, g, b, _ = cm.GetColor(1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
}
