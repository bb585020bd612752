// Package preview draws polar candela diagrams of IES records, as a PNG via
// gonum/plot or as an interactive HTML page via go-echarts.
package preview

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/df07/go-ies-processor/pkg/ies"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultStep is the vertical sampling interval in degrees.
const DefaultStep = 5.0

// ErrUnsupportedRecord is returned for records the preview cannot sample.
var ErrUnsupportedRecord = errors.New("polar preview needs a type C record")

// Point is one sample of a polar curve. X and Y place the intensity in the
// diagram plane with the nadir pointing down (-Y).
type Point struct {
	Vertical float64 `json:"vertical"` // degrees from nadir
	Candela  float64 `json:"candela"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Curve is the closed outline of one plane pair, e.g. C0-C180.
type Curve struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

var planePairs = [...]struct {
	name       string
	horizontal float64
}{
	{"C0-C180", 0},
	{"C90-C270", 90},
}

// PolarCurves samples the C0-C180 and C90-C270 planes every step degrees.
// Each curve runs from the nadir up the first half plane to the zenith and
// back down the opposite half plane.
func PolarCurves(r *ies.Record, step float64) ([]Curve, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.PhotometricType != ies.PhotometricTypeC {
		return nil, fmt.Errorf("%w: got type %s", ErrUnsupportedRecord, r.PhotometricType)
	}
	if step <= 0 || step > 90 || math.IsNaN(step) {
		return nil, fmt.Errorf("step %g must be in (0, 90]", step)
	}

	var angles []float64
	for v := 0.0; v < 180; v += step {
		angles = append(angles, v)
	}
	angles = append(angles, 180)

	curves := make([]Curve, 0, len(planePairs))
	for _, pair := range planePairs {
		points := make([]Point, 0, 2*len(angles))
		for _, v := range angles {
			points = append(points, sample(r, pair.horizontal, v, 1))
		}
		for i := len(angles) - 1; i >= 0; i-- {
			points = append(points, sample(r, pair.horizontal+180, angles[i], -1))
		}
		curves = append(curves, Curve{Name: pair.name, Points: points})
	}
	return curves, nil
}

// sample evaluates the intensity in horizontal plane h at vertical angle v.
// side selects which half of the diagram the point is drawn on.
func sample(r *ies.Record, h, v, side float64) Point {
	theta, phi := mgl64.DegToRad(v), mgl64.DegToRad(h)
	dir := mgl64.Vec3{
		math.Sin(theta) * math.Cos(phi),
		math.Sin(theta) * math.Sin(phi),
		-math.Cos(theta),
	}
	cd := r.IntensityAt(dir)
	return Point{
		Vertical: v,
		Candela:  cd,
		X:        side * cd * math.Sin(theta),
		Y:        -cd * math.Cos(theta),
	}
}

var curveColors = []color.Color{
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
}

// WritePolarPNG renders the polar diagram as a size x size PNG.
func WritePolarPNG(w io.Writer, r *ies.Record, size vg.Length) error {
	curves, err := PolarCurves(r, DefaultStep)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Candela distribution"
	p.X.Label.Text = "cd"
	p.Y.Label.Text = "cd"
	p.Add(plotter.NewGrid())

	pad := axisExtent(curves)
	p.X.Min, p.X.Max = -pad, pad
	p.Y.Min, p.Y.Max = -pad, pad

	for i, c := range curves {
		xys := make(plotter.XYs, len(c.Points))
		for j, pt := range c.Points {
			xys[j] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("curve %s: %w", c.Name, err)
		}
		line.Color = curveColors[i%len(curveColors)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(c.Name, line)
	}
	p.Legend.Top = true

	wt, err := p.WriterTo(size, size, "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// WritePolarHTML renders the polar diagram as a standalone echarts page.
func WritePolarHTML(w io.Writer, r *ies.Record, title string) error {
	curves, err := PolarCurves(r, DefaultStep)
	if err != nil {
		return err
	}
	pad := axisExtent(curves)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "720px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("symmetry=%s max=%g cd", r.Symmetry(), r.MaxCandela())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "cd", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "cd", NameLocation: "middle", NameGap: 30}),
	)

	for _, c := range curves {
		data := make([]opts.ScatterData, 0, len(c.Points))
		for _, pt := range c.Points {
			data = append(data, opts.ScatterData{Value: []interface{}{pt.X, pt.Y, pt.Vertical, pt.Candela}})
		}
		scatter.AddSeries(c.Name, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// axisExtent is the largest |X| or |Y| over all curves plus a 10% margin.
// Both axes use it.
func axisExtent(curves []Curve) float64 {
	extent := 0.0
	for _, c := range curves {
		for _, pt := range c.Points {
			extent = math.Max(extent, math.Max(math.Abs(pt.X), math.Abs(pt.Y)))
		}
	}
	if extent == 0 {
		return 1
	}
	return extent * 1.1
}
