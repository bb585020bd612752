package ies

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordSymmetry(t *testing.T) {
	tests := []struct {
		name           string
		last           float64
		planes         int
		want           Symmetry
		axial          bool
		quadrant       bool
		planeSymmetric bool
	}{
		{"axial", 0, 1, SymmetryAxial, true, false, false},
		{"quadrant", 90, 3, SymmetryQuadrant, false, true, false},
		{"plane", 180, 5, SymmetryPlane, false, false, true},
		{"none 270", 270, 4, SymmetryNone, false, false, false},
		{"none 360", 360, 5, SymmetryNone, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newTestRecord(tt.last, tt.planes)
			if !rec.IsValid() {
				t.Fatalf("test record invalid: %v", rec.Validate())
			}
			if got := rec.Symmetry(); got != tt.want {
				t.Errorf("Symmetry() = %v, want %v", got, tt.want)
			}
			if got := rec.IsAxiallySymmetric(); got != tt.axial {
				t.Errorf("IsAxiallySymmetric() = %v, want %v", got, tt.axial)
			}
			if got := rec.IsQuadrantSymmetric(); got != tt.quadrant {
				t.Errorf("IsQuadrantSymmetric() = %v, want %v", got, tt.quadrant)
			}
			if got := rec.IsPlaneSymmetric(); got != tt.planeSymmetric {
				t.Errorf("IsPlaneSymmetric() = %v, want %v", got, tt.planeSymmetric)
			}
		})
	}
}

func TestEmptyRecordHasNoSymmetry(t *testing.T) {
	rec := NewRecord()
	assert.False(t, rec.IsAxiallySymmetric())
	assert.False(t, rec.IsQuadrantSymmetric())
	assert.False(t, rec.IsPlaneSymmetric())
	assert.Equal(t, SymmetryNone, rec.Symmetry())
	assert.False(t, rec.IsValid())
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Record)
		valid  bool
	}{
		{"unchanged", func(r *Record) {}, true},
		{"top hemisphere", func(r *Record) { r.VerticalAngles = []float64{90, 135, 180} }, true},
		{"full sphere", func(r *Record) { r.VerticalAngles = []float64{0, 90, 180} }, true},
		{"zero candela", func(r *Record) { r.CandelaValues = make([]float64, len(r.CandelaValues)) }, true},
		{"negative scale factors are not policed", func(r *Record) { r.CandelaMultiplier = -3 }, true},
		{"one vertical angle", func(r *Record) {
			r.VerticalAngleCount = 1
			r.VerticalAngles = r.VerticalAngles[:1]
		}, false},
		{"count mismatch", func(r *Record) { r.VerticalAngles = r.VerticalAngles[:2] }, false},
		{"candela length mismatch", func(r *Record) { r.CandelaValues = r.CandelaValues[1:] }, false},
		{"negative candela", func(r *Record) { r.CandelaValues[2] = -0.5 }, false},
		{"infinite candela", func(r *Record) { r.CandelaValues[0] = math.Inf(1) }, false},
		{"nan angle", func(r *Record) { r.VerticalAngles[1] = math.NaN() }, false},
		{"unsorted vertical", func(r *Record) { r.VerticalAngles[0], r.VerticalAngles[1] = 45, 0 }, false},
		{"unsorted horizontal", func(r *Record) { r.HorizontalAngles[1], r.HorizontalAngles[2] = 180, 90 }, false},
		{"photometric type zero", func(r *Record) { r.PhotometricType = 0 }, false},
		{"unit type zero", func(r *Record) { r.UnitType = 0 }, false},
		{"first horizontal not zero", func(r *Record) { r.HorizontalAngles[0] = 10 }, false},
		{"last horizontal past 360", func(r *Record) { r.HorizontalAngles[len(r.HorizontalAngles)-1] = 400 }, false},
		{"type A ranges", func(r *Record) {
			r.PhotometricType = PhotometricTypeA
			r.VerticalAngles = []float64{-90, 0, 90}
			r.HorizontalAngles = []float64{-90, 0, 90}
		}, true},
		{"type B with type C horizontal range", func(r *Record) { r.PhotometricType = PhotometricTypeB }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newTestRecord(180, 3)
			tt.mutate(rec)
			err := rec.Validate()
			if got := err == nil; got != tt.valid {
				t.Fatalf("Validate() = %v, want valid %v", err, tt.valid)
			}
			if !tt.valid && !errors.Is(err, InvalidDataInIESFile) {
				t.Errorf("Validate() error = %v, want %v", err, InvalidDataInIESFile)
			}
			if rec.IsValid() != tt.valid {
				t.Errorf("IsValid() = %v, want %v", rec.IsValid(), tt.valid)
			}
		})
	}
}

func TestRecordClear(t *testing.T) {
	rec := newTestRecord(90, 3)
	rec.ExtraHeaderText = "header\n"
	rec.Clear()

	assert.Equal(t, Record{}, *rec)
	assert.False(t, rec.IsValid())
}

func TestRecordClone(t *testing.T) {
	rec := newTestRecord(90, 3)
	clone := rec.Clone()
	assert.Equal(t, rec, clone)

	clone.CandelaValues[0] = 999
	clone.VerticalAngles[1] = 30
	clone.HorizontalAngles[1] = 60
	assert.Equal(t, 100.0, rec.CandelaValues[0])
	assert.Equal(t, 45.0, rec.VerticalAngles[1])
	assert.Equal(t, 45.0, rec.HorizontalAngles[1])
}

func TestRecordCandelaIndexing(t *testing.T) {
	rec := newTestRecord(180, 3)
	// Plane h holds 100*(h+1) - 10*v.
	assert.Equal(t, 100.0, rec.Candela(0, 0))
	assert.Equal(t, 80.0, rec.Candela(0, 2))
	assert.Equal(t, 290.0, rec.Candela(2, 1))
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "C", PhotometricTypeC.String())
	assert.Equal(t, "B", PhotometricTypeB.String())
	assert.Equal(t, "A", PhotometricTypeA.String())
	assert.Equal(t, "PhotometricType(7)", PhotometricType(7).String())
	assert.Equal(t, "feet", UnitFeet.String())
	assert.Equal(t, "meters", UnitMeters.String())
	assert.Equal(t, "UnitType(0)", UnitType(0).String())
}
