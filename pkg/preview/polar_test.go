package preview

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/df07/go-ies-processor/pkg/ies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

// A 0-90 degree axial distribution: 100 cd at the nadir falling to 80 cd at
// the horizon.
const axialData = "1 1000 1 3 1 1 2 0 0 0 1 1 0 0 45 90 0 100 90 80"

func mustParse(t *testing.T, data string) *ies.Record {
	t.Helper()
	rec, err := ies.ParseString(data)
	require.NoError(t, err)
	return rec
}

func TestPolarCurvesAxial(t *testing.T) {
	rec := mustParse(t, axialData)

	curves, err := PolarCurves(rec, 45)
	require.NoError(t, err)
	require.Len(t, curves, 2)
	assert.Equal(t, "C0-C180", curves[0].Name)
	assert.Equal(t, "C90-C270", curves[1].Name)

	pts := curves[0].Points
	// 0, 45, 90, 135, 180 out and back.
	require.Len(t, pts, 10)

	assert.Equal(t, 0.0, pts[0].Vertical)
	assert.InDelta(t, 100, pts[0].Candela, 1e-9)
	assert.InDelta(t, 0, pts[0].X, 1e-9)
	assert.InDelta(t, -100, pts[0].Y, 1e-9)

	assert.InDelta(t, 80, pts[2].Candela, 1e-9)
	assert.InDelta(t, 80, pts[2].X, 1e-9)
	assert.InDelta(t, 0, pts[2].Y, 1e-9)

	// Upper hemisphere is dark.
	assert.Equal(t, 0.0, pts[3].Candela)
	assert.Equal(t, 0.0, pts[4].Candela)

	// The return half mirrors the outbound half.
	for i := 0; i < 5; i++ {
		out, back := pts[i], pts[9-i]
		assert.Equal(t, out.Vertical, back.Vertical)
		assert.InDelta(t, out.Candela, back.Candela, 1e-9)
		assert.InDelta(t, -out.X, back.X, 1e-9)
		assert.InDelta(t, out.Y, back.Y, 1e-9)
	}

	// Axial records look the same in every plane.
	for i := range pts {
		assert.InDelta(t, pts[i].Candela, curves[1].Points[i].Candela, 1e-9)
	}
}

func TestPolarCurvesPlanes(t *testing.T) {
	// Plane symmetric: C0 = 100, C90 = 50, C180 = 10 everywhere below the horizon.
	rec := mustParse(t, "1 1000 1 2 3 1 2 0 0 0 1 1 0 0 90 0 90 180 100 100 50 50 10 10")

	curves, err := PolarCurves(rec, 90)
	require.NoError(t, err)

	// Points: 0, 90, 180 outbound then 180, 90, 0 on the opposite plane.
	c0 := curves[0].Points
	require.Len(t, c0, 6)
	assert.InDelta(t, 100, c0[1].Candela, 1e-9)
	assert.InDelta(t, 100, c0[1].X, 1e-9)
	assert.InDelta(t, 10, c0[4].Candela, 1e-9)
	assert.InDelta(t, -10, c0[4].X, 1e-9)

	// C270 folds onto C90.
	c90 := curves[1].Points
	assert.InDelta(t, 50, c90[1].Candela, 1e-9)
	assert.InDelta(t, 50, c90[4].Candela, 1e-9)
}

func TestPolarCurvesRejects(t *testing.T) {
	rec := mustParse(t, axialData)

	for _, step := range []float64{0, -5, 91, math.NaN()} {
		_, err := PolarCurves(rec, step)
		assert.Error(t, err, "step %v", step)
	}

	typeB := mustParse(t, "1 1000 1 2 2 2 2 0 0 0 1 1 0 0 90 0 90 1 2 3 4")
	_, err := PolarCurves(typeB, 5)
	assert.ErrorIs(t, err, ErrUnsupportedRecord)

	_, err = PolarCurves(ies.NewRecord(), 5)
	assert.ErrorIs(t, err, ies.InvalidDataInIESFile)
}

func TestWritePolarPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePolarPNG(&buf, mustParse(t, axialData), 3*vg.Inch))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")), "output is not a PNG")
}

func TestWritePolarHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePolarHTML(&buf, mustParse(t, axialData), "Downlight"))

	page := buf.String()
	assert.True(t, strings.Contains(page, "<html"), "missing html element")
	assert.Contains(t, page, "Downlight")
	assert.Contains(t, page, "C0-C180")
	assert.Contains(t, page, "C90-C270")
}

func TestAxisExtent(t *testing.T) {
	assert.Equal(t, 1.0, axisExtent(nil))
	curves := []Curve{{Points: []Point{{X: -40, Y: 10}, {X: 5, Y: -100}}}}
	assert.InDelta(t, 110, axisExtent(curves), 1e-9)
}
