package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	dpi      = 120.0
	fontSize = 10.0

	panelWidth     = 900
	panelHeight    = 180
	panelGap       = 10
	tickMarkLen    = 5
	pixelsPerLabel = 150

	// Border sizes in pixels
	defaultTopBorder    = 30
	defaultLeftBorder   = 90
	defaultBottomBorder = 50
	defaultRightBorder  = 30
)

var (
	panelBackground = color.RGBA{R: 0xf7, G: 0xf7, B: 0xf7, A: 0xff}
	gridColor       = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
	lineColor       = color.RGBA{R: 0x1f, G: 0x4e, B: 0xa1, A: 0xff}
)

// RenderConfig holds the chart renderer options.
type RenderConfig struct {
	FontPath      string // TTF file for annotations; required unless disabled
	NoAnnotations bool
}

// ChartRenderer draws one strip-chart panel per telemetry series,
// stacked on a shared flight-time axis.
type ChartRenderer struct {
	config RenderConfig
}

func NewChartRenderer(config RenderConfig) *ChartRenderer {
	return &ChartRenderer{config: config}
}

// Render creates the chart image for the accumulated flight data.
func (r *ChartRenderer) Render(data *ChartData) (*image.RGBA, error) {
	panels := len(data.Series)
	fullWidth := defaultLeftBorder + panelWidth + defaultRightBorder
	fullHeight := defaultTopBorder + panels*(panelHeight+panelGap) - panelGap + defaultBottomBorder

	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	var ann *annotator
	if !r.config.NoAnnotations {
		var err error
		if ann, err = newAnnotator(r.config.FontPath); err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		ann.context.SetClip(img.Bounds())
		ann.context.SetDst(img)
	}

	for i, series := range data.Series {
		area := image.Rect(
			defaultLeftBorder,
			defaultTopBorder+i*(panelHeight+panelGap),
			defaultLeftBorder+panelWidth,
			defaultTopBorder+i*(panelHeight+panelGap)+panelHeight,
		)

		r.renderPanel(img, area, data, series)

		if ann != nil {
			if err := ann.annotatePanel(img, area, data, series); err != nil {
				return nil, fmt.Errorf("annotating %s panel: %w", series.Name, err)
			}
		}
	}

	if ann != nil {
		if err := ann.drawInfoBar(img, data); err != nil {
			return nil, fmt.Errorf("drawing info bar: %w", err)
		}
	}

	return img, nil
}

// renderPanel fills the panel background, draws the value grid, and
// plots the series as a connected polyline.
func (r *ChartRenderer) renderPanel(img *image.RGBA, area image.Rectangle, data *ChartData, series *Series) {
	draw.Draw(img, area, image.NewUniform(panelBackground), image.Point{}, draw.Src)

	lo, hi := series.Min, series.Max
	if hi-lo < 1e-9 {
		// Flat series: pad the range so the line sits mid-panel.
		lo, hi = lo-1, hi+1
	}

	for _, gy := range gridRows(area) {
		drawSegment(img, area.Min.X, gy, area.Max.X-1, gy, gridColor)
	}

	tMin, tMax := data.TimeMin(), data.TimeMax()
	tSpan := tMax - tMin
	if tSpan < 1e-9 {
		tSpan = 1
	}

	var prevX, prevY int
	for i, v := range series.Values {
		x := area.Min.X + int(float64(area.Dx()-1)*(data.Times[i]-tMin)/tSpan)
		y := area.Max.Y - 1 - int(float64(area.Dy()-1)*(v-lo)/(hi-lo))

		if i > 0 {
			drawSegment(img, prevX, prevY, x, y, lineColor)
		} else {
			img.Set(x, y, lineColor)
		}
		prevX, prevY = x, y
	}
}

// gridRows returns the Y coordinates of the horizontal guide lines.
func gridRows(area image.Rectangle) []int {
	const rows = 4
	ys := make([]int, 0, rows+1)
	for i := 0; i <= rows; i++ {
		ys = append(ys, area.Min.Y+i*(area.Dy()-1)/rows)
	}
	return ys
}

// drawSegment draws a line between two points, Bresenham-style.
func drawSegment(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		if e2 := 2 * e; e2 >= dy {
			e += dy
			x0 += sx
		} else {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// annotator draws scales and labels with a runtime-loaded TTF font.
type annotator struct {
	context  *freetype.Context
	fontFace font.Face
}

func newAnnotator(fontPath string) (*annotator, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    fontSize,
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

// annotatePanel draws the panel title, the value scale on the left edge
// and the flight-time scale under the panel.
func (a *annotator) annotatePanel(img *image.RGBA, area image.Rectangle, data *ChartData, series *Series) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	title := fmt.Sprintf("%s (%s)", series.Name, series.Unit)
	pt := freetype.Pt(area.Min.X, area.Min.Y-3)
	if _, err := a.context.DrawString(title, pt); err != nil {
		return fmt.Errorf("drawing title: %w", err)
	}

	// Value labels on the grid rows.
	lo, hi := series.Min, series.Max
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}
	rows := gridRows(area)
	for i, gy := range rows {
		v := hi - (hi-lo)*float64(i)/float64(len(rows)-1)
		label := formatValue(v)

		for x := area.Min.X - tickMarkLen; x < area.Min.X; x++ {
			img.Set(x, gy, color.Black)
		}

		textY := gy + fontHeight/2 - metrics.Descent.Round()
		width := font.MeasureString(a.fontFace, label)
		pt = freetype.Pt(area.Min.X-tickMarkLen-3-width.Round(), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing value label: %w", err)
		}
	}

	// Flight-time labels along the bottom edge.
	tMin, tMax := data.TimeMin(), data.TimeMax()
	step := niceTimeStep(tMax-tMin, area.Dx())
	for t := math.Ceil(tMin/step) * step; t <= tMax; t += step {
		xRatio := (t - tMin) / math.Max(tMax-tMin, 1e-9)
		x := area.Min.X + int(xRatio*float64(area.Dx()-1))

		for y := area.Max.Y; y < area.Max.Y+tickMarkLen; y++ {
			img.Set(x, y, color.Black)
		}

		label := fmt.Sprintf("%.0fs", t)
		width := font.MeasureString(a.fontFace, label)
		pt = freetype.Pt(x-width.Round()/2, area.Max.Y+tickMarkLen+fontHeight)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}

	return nil
}

// drawInfoBar writes the flight summary along the bottom border.
func (a *annotator) drawInfoBar(img *image.RGBA, data *ChartData) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s records", humanize.Comma(int64(data.Count()))))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Flight time: %.0fs - %.0fs", data.TimeMin(), data.TimeMax()))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Received: %s - %s",
		data.TimeStart.Local().Format(time.DateTime),
		data.TimeEnd.Local().Format(time.DateTime)))

	if rssi, ok := data.AverageRSSI(); ok {
		sb.WriteString("; ")
		sb.WriteString(fmt.Sprintf("Avg RSSI: %.0f dBm", rssi))
	}

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (defaultBottomBorder-fontHeight)/2 - metrics.Descent.Round()

	pt := freetype.Pt(defaultLeftBorder, textY)
	if _, err := a.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

// Helper functions

func formatValue(v float64) string {
	switch {
	case math.Abs(v) >= 10000:
		fract, suffix := humanize.ComputeSI(v)
		return fmt.Sprintf("%.1f%s", fract, suffix)
	case math.Abs(v) >= 100:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

func niceTimeStep(span float64, width int) float64 {
	steps := []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600}

	desiredLabels := float64(width) / pixelsPerLabel
	target := span / math.Max(desiredLabels, 1)

	for _, step := range steps {
		if step >= target && span/step >= 2 {
			return step
		}
	}
	return math.Max(span/2, 1)
}
