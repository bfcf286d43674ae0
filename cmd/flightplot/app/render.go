package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/toth-andor/drone/internal/flight"
)

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkHeight = 5
	pixelsPerLabel = 150.0

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 90
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	// Default band sizes in pixels
	defaultPlotWidth    = 1200
	defaultRibbonHeight = 36
	defaultStripHeight  = 18
	defaultTraceHeight  = 110

	bandGap    = 4  // Between bands of the same group
	sectionGap = 10 // Extra space before a new group

	legendWidth  = 128
	legendHeight = 10
)

// BorderConfig defines the sizes of white space around the plot area
type BorderConfig struct {
	Top    int // Space for the time scale
	Left   int // Space for band labels
	Bottom int // Space for the information bar and legend
	Right  int // Right padding
}

// RenderConfig holds all configuration options for flight track visualization
type RenderConfig struct {
	// Visual configuration
	Title        string     // Session label drawn on the information bar
	Width        int        // Plot area width in pixels (0 for default)
	FontSize     float64    // Font size in points
	ColorTheme   ColorTheme // Color scheme for speed ribbons
	ColorMapSize int        // Number of colors in gradient (0 for default)

	// Band heights in pixels (0 for defaults)
	RibbonHeight int // One rotor speed ribbon
	StripHeight  int // One pilot input row
	TraceHeight  int // Body rate and altitude bands

	// Annotations (time scale, labels, legend, information bar)
	NoAnnotations bool

	// Border configuration
	BorderConfig BorderConfig
}

// TrackRenderer handles the visualization of recorded flight sessions
type TrackRenderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

// NewTrackRenderer creates a new track renderer with the given configuration
func NewTrackRenderer(config RenderConfig) (*TrackRenderer, error) {
	// Set defaults for zero values
	if config.Width == 0 {
		config.Width = defaultPlotWidth
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.RibbonHeight == 0 {
		config.RibbonHeight = defaultRibbonHeight
	}
	if config.StripHeight == 0 {
		config.StripHeight = defaultStripHeight
	}
	if config.TraceHeight == 0 {
		config.TraceHeight = defaultTraceHeight
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	return &TrackRenderer{config: config}, nil
}

type bandKind int

const (
	bandRibbon bandKind = iota
	bandGyro
	bandAltitude
)

// band is one horizontal strip of the plot area.
type band struct {
	kind    bandKind
	label   string
	height  int
	section bool // Starts a new band group
	value   func(flight.Tick) float64
	rect    image.Rectangle
}

// layout arranges the bands of the plot area from top to bottom.
func (r *TrackRenderer) layout() []band {
	bands := []band{
		{kind: bandRibbon, label: "FL", height: r.config.RibbonHeight,
			value: func(t flight.Tick) float64 { return t.FrontLeft }},
		{kind: bandRibbon, label: "FR", height: r.config.RibbonHeight,
			value: func(t flight.Tick) float64 { return t.FrontRight }},
		{kind: bandRibbon, label: "RL", height: r.config.RibbonHeight,
			value: func(t flight.Tick) float64 { return t.RearLeft }},
		{kind: bandRibbon, label: "RR", height: r.config.RibbonHeight,
			value: func(t flight.Tick) float64 { return t.RearRight }},
		{kind: bandRibbon, label: "thr", height: r.config.StripHeight, section: true,
			value: func(t flight.Tick) float64 { return t.Throttle }},
		{kind: bandRibbon, label: "yaw", height: r.config.StripHeight,
			value: func(t flight.Tick) float64 { return t.YawRate }},
		{kind: bandRibbon, label: "pit", height: r.config.StripHeight,
			value: func(t flight.Tick) float64 { return t.Pitch }},
		{kind: bandRibbon, label: "rol", height: r.config.StripHeight,
			value: func(t flight.Tick) float64 { return t.Roll }},
		{kind: bandGyro, label: "gyro", height: r.config.TraceHeight, section: true},
		{kind: bandAltitude, label: "alt", height: r.config.TraceHeight, section: true},
	}

	left := r.config.BorderConfig.Left
	y := r.config.BorderConfig.Top
	for i := range bands {
		if bands[i].section && i > 0 {
			y += sectionGap
		}
		bands[i].rect = image.Rect(left, y, left+r.config.Width, y+bands[i].height)
		y += bands[i].height + bandGap
	}
	return bands
}

// Render creates an image of the recorded flight with annotations
func (r *TrackRenderer) Render(track *TrackData) (*image.RGBA, error) {
	if track == nil || len(track.Ticks) == 0 {
		return nil, errors.New("track has no ticks to render")
	}

	bands := r.layout()

	// Create image with space for borders
	fullWidth := r.config.BorderConfig.Left + r.config.Width + r.config.BorderConfig.Right
	fullHeight := bands[len(bands)-1].rect.Max.Y + r.config.BorderConfig.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	// Fill with white background
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	if r.colorMap == nil {
		r.colorMap = NewColorMapperWithSize(r.config.ColorTheme, unitBounds(), r.config.ColorMapSize)
	}

	// First draw annotations
	if !r.config.NoAnnotations {
		ann, err := newAnnotator(annotatorConfig{
			Title:    r.config.Title,
			FontSize: r.config.FontSize,
			Borders:  r.config.BorderConfig,
			Colors:   r.colorMap,
		})
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, track, bands); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	// Then render band data (overwriting any overlapping annotations)
	for _, b := range bands {
		switch b.kind {
		case bandRibbon:
			r.renderRibbon(img, b, track)
		case bandGyro:
			r.renderGyro(img, b.rect, track)
		case bandAltitude:
			r.renderAltitude(img, b.rect, track)
		}
	}

	return img, nil
}

// renderRibbon colors one per-tick value series at native tick resolution
// and resamples it into the band.
func (r *TrackRenderer) renderRibbon(img *image.RGBA, b band, track *TrackData) {
	strip := image.NewRGBA(image.Rect(0, 0, len(track.Ticks), 1))
	for i, tick := range track.Ticks {
		strip.Set(i, 0, r.colorMap.GetColor(b.value(tick)))
	}
	draw.CatmullRom.Scale(img, b.rect, strip, strip.Bounds(), draw.Src, nil)
}

// renderGyro draws the three body rate traces over a shared zero line.
func (r *TrackRenderer) renderGyro(img *image.RGBA, area image.Rectangle, track *TrackData) {
	bounds := track.GyroBounds()

	if bounds.Min < 0 && bounds.Max > 0 {
		zeroY := valueToY(0, bounds, area)
		for x := area.Min.X; x < area.Max.X; x++ {
			img.Set(x, zeroY, zeroLineColor)
		}
	}

	axes := []struct {
		color color.Color
		value func(flight.Tick) float64
	}{
		{gyroXColor, func(t flight.Tick) float64 { return t.Gyro.X }},
		{gyroYColor, func(t flight.Tick) float64 { return t.Gyro.Y }},
		{gyroZColor, func(t flight.Tick) float64 { return t.Gyro.Z }},
	}
	for _, axis := range axes {
		r.renderTrace(img, area, track, bounds, axis.value, axis.color)
	}
}

// renderTrace plots one value series as a connected line across the band.
func (r *TrackRenderer) renderTrace(img *image.RGBA, area image.Rectangle, track *TrackData,
	bounds SignalBounds, value func(flight.Tick) float64, c color.Color) {

	width := area.Dx()
	prevY := -1
	for x := 0; x < width; x++ {
		i := tickIndexAt(x, width, len(track.Ticks))
		y := valueToY(value(track.Ticks[i]), bounds, area)
		if prevY < 0 {
			prevY = y
		}

		// Vertical segment keeps steep slopes connected
		lo, hi := min(prevY, y), max(prevY, y)
		for yy := lo; yy <= hi; yy++ {
			img.Set(area.Min.X+x, yy, c)
		}
		prevY = y
	}
}

// renderAltitude fills the height profile from the ground line up.
func (r *TrackRenderer) renderAltitude(img *image.RGBA, area image.Rectangle, track *TrackData) {
	top := track.PeakAltitude
	if top <= 0 {
		top = 1
	}
	bounds := SignalBounds{Min: 0, Max: top}

	width := area.Dx()
	for x := 0; x < width; x++ {
		i := tickIndexAt(x, width, len(track.Ticks))
		y := valueToY(track.Ticks[i].Position.Y, bounds, area)
		for yy := y; yy < area.Max.Y; yy++ {
			img.Set(area.Min.X+x, yy, altitudeColor)
		}
	}
}

// valueToY maps a value within bounds onto a pixel row of the band.
func valueToY(v float64, bounds SignalBounds, area image.Rectangle) int {
	span := bounds.Max - bounds.Min
	ratio := 0.0
	if span > 0 {
		ratio = (v - bounds.Min) / span
	}
	ratio = math.Max(0, math.Min(1, ratio))
	return area.Max.Y - 1 - int(ratio*float64(area.Dy()-1))
}

// tickIndexAt maps a pixel column onto the tick recorded at that time.
func tickIndexAt(x, width, count int) int {
	if width <= 1 || count <= 1 {
		return 0
	}
	return x * (count - 1) / (width - 1)
}

// Internal annotator implementation
type annotatorConfig struct {
	Title    string
	FontSize float64
	Borders  BorderConfig
	Colors   *ColorMapper
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, track *TrackData, bands []band) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, *TrackData, []band) error
	}{
		{"drawing time scale", a.drawTimeScale},
		{"drawing band labels", a.drawBandLabels},
		{"drawing legend", a.drawLegend},
		{"drawing info bar", a.drawInfoBar},
	}
	for _, op := range ops {
		if err := op.fn(img, track, bands); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

func (a *annotator) drawTimeScale(img *image.RGBA, track *TrackData, bands []band) error {
	if track.Duration() <= 0 {
		return nil
	}

	area := bands[0].rect
	width := area.Dx()

	timeStep := calculateNiceTimeStep(track.Duration(), width)
	start := math.Ceil(track.TimeStart/timeStep) * timeStep

	// Get actual font height in pixels
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	textY := a.config.Borders.Top - tickMarkHeight - fontHeight/2

	for t := start; t <= track.TimeEnd+1e-9; t += timeStep {
		// Convert time to x coordinate
		xRatio := (t - track.TimeStart) / track.Duration()
		x := area.Min.X + int(xRatio*float64(width))

		// Draw tick mark
		for y := a.config.Borders.Top - tickMarkHeight; y < a.config.Borders.Top; y++ {
			img.Set(x, y, color.Black)
		}

		// Format and draw time label
		label := formatSeconds(t)
		labelWidth := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(labelWidth.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawBandLabels(img *image.RGBA, _ *TrackData, bands []band) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for _, b := range bands {
		if b.label == "" {
			continue
		}

		// Draw tick mark on the band's vertical center
		midY := (b.rect.Min.Y + b.rect.Max.Y) / 2
		for x := b.rect.Min.X - tickMarkHeight; x < b.rect.Min.X; x++ {
			img.Set(x, midY, color.Black)
		}

		// Center text vertically relative to the tick mark position
		textY := midY + fontHeight/2 - metrics.Descent.Round()

		labelWidth := font.MeasureString(a.fontFace, b.label)
		pt := freetype.Pt(b.rect.Min.X-tickMarkHeight-labelWidth.Round()-5, textY)
		if _, err := a.context.DrawString(b.label, pt); err != nil {
			return fmt.Errorf("drawing band label: %w", err)
		}
	}
	return nil
}

// drawLegend draws the speed color ramp in the bottom border.
func (a *annotator) drawLegend(img *image.RGBA, _ *TrackData, bands []band) error {
	area := bands[0].rect

	barMaxX := area.Max.X
	barMinX := barMaxX - legendWidth
	barMinY := img.Bounds().Max.Y - (a.config.Borders.Bottom+legendHeight)/2
	barMaxY := barMinY + legendHeight

	for x := barMinX; x < barMaxX; x++ {
		v := float64(x-barMinX) / float64(legendWidth-1)
		c := a.config.Colors.GetColor(v)
		for y := barMinY; y < barMaxY; y++ {
			img.Set(x, y, c)
		}
	}

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := (barMinY+barMaxY)/2 + fontHeight/2 - metrics.Descent.Round()

	// Bracket the ramp with its value range
	lowWidth := font.MeasureString(a.fontFace, "0")
	pt := freetype.Pt(barMinX-lowWidth.Round()-5, textY)
	if _, err := a.context.DrawString("0", pt); err != nil {
		return fmt.Errorf("drawing legend label: %w", err)
	}

	pt = freetype.Pt(barMaxX+5, textY)
	if _, err := a.context.DrawString("1", pt); err != nil {
		return fmt.Errorf("drawing legend label: %w", err)
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, track *TrackData, bands []band) error {
	var sb strings.Builder

	if a.config.Title != "" {
		sb.WriteString(fmt.Sprintf("Session: %s", a.config.Title))
		sb.WriteString("; ")
	}

	sb.WriteString(fmt.Sprintf("Ticks: %d @ %s", track.Count(), formatRate(track.Rate())))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Time: %s - %s",
		formatSeconds(track.TimeStart), formatSeconds(track.TimeEnd)))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Peak altitude: %0.2f m", track.PeakAltitude))

	// Calculate pixel resolution in time
	secondsPerPixel := track.Duration() / float64(bands[0].rect.Dx())

	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("1px = %s", formatInterval(secondsPerPixel)))

	// Center text vertically in bottom border
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.Borders.Bottom-fontHeight)/2 - metrics.Descent.Round()

	pt := freetype.Pt(a.config.Borders.Left, textY)
	if _, err := a.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}

	return nil
}

// Helper functions

func calculateNiceTimeStep(duration float64, width int) float64 {
	// Standard step sizes in seconds
	steps := []float64{
		0.1, 0.2, 0.5,
		1, 2, 5,
		10, 15, 30,
		60, 120, 300, 600,
	}

	desiredSteps := float64(width) / pixelsPerLabel
	targetStep := duration / desiredSteps

	// Find the closest standard step size
	for _, step := range steps {
		if step >= targetStep {
			// If this step would give us at least 2 points
			if duration/step >= 2 {
				return step
			}
			break
		}
	}

	// If we can't find a suitable step or would get too few points,
	// return half the duration to show at least the midpoint
	return duration / 2
}

func formatSeconds(seconds float64) string {
	switch {
	case seconds == 0:
		return "0s"
	case seconds >= 60:
		m := int(seconds) / 60
		return fmt.Sprintf("%dm%02.0fs", m, seconds-float64(m*60))
	case seconds >= 10:
		return fmt.Sprintf("%.0fs", seconds)
	case seconds >= 1:
		return fmt.Sprintf("%.1fs", seconds)
	default:
		return fmt.Sprintf("%.0fms", seconds*1000)
	}
}

func formatRate(rate float64) string {
	fract, suffix := humanize.ComputeSI(rate)
	return fmt.Sprintf("%0.2f %sHz", fract, suffix)
}

func formatInterval(seconds float64) string {
	fract, suffix := humanize.ComputeSI(seconds)
	return fmt.Sprintf("%0.2f %ss", fract, suffix)
}
