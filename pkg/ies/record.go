package ies

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// PhotometricType identifies the goniometer coordinate system of a file
type PhotometricType int

const (
	PhotometricTypeC PhotometricType = 1
	PhotometricTypeB PhotometricType = 2
	PhotometricTypeA PhotometricType = 3
)

func (t PhotometricType) String() string {
	switch t {
	case PhotometricTypeC:
		return "C"
	case PhotometricTypeB:
		return "B"
	case PhotometricTypeA:
		return "A"
	default:
		return fmt.Sprintf("PhotometricType(%d)", int(t))
	}
}

// UnitType is the unit of the luminous opening dimensions
type UnitType int

const (
	UnitFeet   UnitType = 1
	UnitMeters UnitType = 2
)

func (u UnitType) String() string {
	switch u {
	case UnitFeet:
		return "feet"
	case UnitMeters:
		return "meters"
	default:
		return fmt.Sprintf("UnitType(%d)", int(u))
	}
}

// Symmetry is the lateral symmetry class implied by the last horizontal angle
type Symmetry string

const (
	SymmetryAxial    Symmetry = "axial"
	SymmetryQuadrant Symmetry = "quadrant"
	SymmetryPlane    Symmetry = "plane"
	SymmetryNone     Symmetry = "none"
)

// Record is the in-memory form of one LM-63 file. The zero value is the
// cleared state. A Record owns its slices; use Clone before sharing
type Record struct {
	LampCount         int     `json:"lampCount"`
	LumensPerLamp     float64 `json:"lumensPerLamp"` // -1 means absolute photometry
	CandelaMultiplier float64 `json:"candelaMultiplier"`

	VerticalAngleCount   int `json:"verticalAngleCount"`
	HorizontalAngleCount int `json:"horizontalAngleCount"`

	PhotometricType PhotometricType `json:"photometricType"`
	UnitType        UnitType        `json:"unitType"`

	// Luminous opening
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Height float64 `json:"height"`

	BallastFactor float64 `json:"ballastFactor"`
	VersionNumber float64 `json:"versionNumber"`
	InputWatts    float64 `json:"inputWatts"`

	VerticalAngles   []float64 `json:"verticalAngles"`
	HorizontalAngles []float64 `json:"horizontalAngles"`

	// Horizontal-major: all vertical samples for HorizontalAngles[0] first
	CandelaValues []float64 `json:"candelaValues"`

	// Lines before TILT=, kept verbatim for re-export
	ExtraHeaderText string `json:"extraHeaderText,omitempty"`
}

// NewRecord returns a cleared Record
func NewRecord() *Record {
	return &Record{}
}

// Clear resets r to the zero state so the instance can be reused
func (r *Record) Clear() {
	*r = Record{}
}

// Clone returns a deep copy of r
func (r *Record) Clone() *Record {
	c := *r
	c.VerticalAngles = append([]float64(nil), r.VerticalAngles...)
	c.HorizontalAngles = append([]float64(nil), r.HorizontalAngles...)
	c.CandelaValues = append([]float64(nil), r.CandelaValues...)
	return &c
}

// IsValid reports whether every record invariant holds
func (r *Record) IsValid() bool {
	return r.Validate() == nil
}

// Validate checks the record invariants and returns the first violation as
// an InvalidDataInIESFile error
func (r *Record) Validate() error {
	if err := r.validate(); err != nil {
		return newError(InvalidDataInIESFile, "validate", "", err)
	}
	return nil
}

func (r *Record) validate() error {
	if r == nil {
		return errors.New("record is nil")
	}
	if r.VerticalAngleCount < 2 {
		return fmt.Errorf("vertical angle count %d must be at least 2", r.VerticalAngleCount)
	}
	if r.HorizontalAngleCount < 1 {
		return fmt.Errorf("horizontal angle count %d must be at least 1", r.HorizontalAngleCount)
	}
	if len(r.VerticalAngles) != r.VerticalAngleCount {
		return fmt.Errorf("declared %d vertical angles, have %d", r.VerticalAngleCount, len(r.VerticalAngles))
	}
	if len(r.HorizontalAngles) != r.HorizontalAngleCount {
		return fmt.Errorf("declared %d horizontal angles, have %d", r.HorizontalAngleCount, len(r.HorizontalAngles))
	}
	if want := r.VerticalAngleCount * r.HorizontalAngleCount; len(r.CandelaValues) != want {
		return fmt.Errorf("expected %d candela values, have %d", want, len(r.CandelaValues))
	}
	if r.PhotometricType < PhotometricTypeC || r.PhotometricType > PhotometricTypeA {
		return fmt.Errorf("photometric type %d out of range", r.PhotometricType)
	}
	if r.UnitType != UnitFeet && r.UnitType != UnitMeters {
		return fmt.Errorf("unit type %d out of range", r.UnitType)
	}
	if !allFinite(r.VerticalAngles) || !allFinite(r.HorizontalAngles) || !allFinite(r.CandelaValues) {
		return fmt.Errorf("non-finite value in angle or candela data")
	}
	if !sort.Float64sAreSorted(r.VerticalAngles) {
		return fmt.Errorf("vertical angles are not in increasing order")
	}
	if !sort.Float64sAreSorted(r.HorizontalAngles) {
		return fmt.Errorf("horizontal angles are not in increasing order")
	}
	if lowest := floats.Min(r.CandelaValues); lowest < 0 {
		return fmt.Errorf("negative candela value %g", lowest)
	}
	return r.validateAngleRanges()
}

// validateAngleRanges applies the LM-63 first/last angle rules
func (r *Record) validateAngleRanges() error {
	vFirst, vLast := r.VerticalAngles[0], r.VerticalAngles[len(r.VerticalAngles)-1]
	hFirst, hLast := r.HorizontalAngles[0], r.HorizontalAngles[len(r.HorizontalAngles)-1]

	if r.PhotometricType != PhotometricTypeC {
		if !(vFirst == -90 || vFirst == 0) || vLast != 90 {
			return fmt.Errorf("type %s vertical range [%g, %g] must be [-90, 90] or [0, 90]", r.PhotometricType, vFirst, vLast)
		}
		if !(hFirst == -90 || hFirst == 0) || hLast != 90 {
			return fmt.Errorf("type %s horizontal range [%g, %g] must be [-90, 90] or [0, 90]", r.PhotometricType, hFirst, hLast)
		}
		return nil
	}

	switch {
	case vFirst == 0 && vLast == 90: // bottom hemisphere
	case vFirst == 90 && vLast == 180: // top hemisphere
	case vFirst == 0 && vLast == 180:
	default:
		return fmt.Errorf("vertical range [%g, %g] must be [0, 90], [90, 180] or [0, 180]", vFirst, vLast)
	}

	if hFirst != 0 {
		return fmt.Errorf("first horizontal angle %g must be 0", hFirst)
	}
	switch {
	case hLast == 0, hLast == 90, hLast == 180:
	case hLast > 180 && hLast <= 360:
	default:
		return fmt.Errorf("last horizontal angle %g must be 0, 90, 180 or in (180, 360]", hLast)
	}
	return nil
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (r *Record) lastHorizontalAngle() (float64, bool) {
	if len(r.HorizontalAngles) == 0 {
		return 0, false
	}
	return r.HorizontalAngles[len(r.HorizontalAngles)-1], true
}

// IsAxiallySymmetric reports whether the last horizontal angle is 0
func (r *Record) IsAxiallySymmetric() bool {
	last, ok := r.lastHorizontalAngle()
	return ok && last == 0
}

// IsQuadrantSymmetric reports whether the last horizontal angle is 90
func (r *Record) IsQuadrantSymmetric() bool {
	last, ok := r.lastHorizontalAngle()
	return ok && last == 90
}

// IsPlaneSymmetric reports whether the last horizontal angle is 180
func (r *Record) IsPlaneSymmetric() bool {
	last, ok := r.lastHorizontalAngle()
	return ok && last == 180
}

// Symmetry classifies the distribution. A record without horizontal angles
// reports SymmetryNone
func (r *Record) Symmetry() Symmetry {
	switch {
	case r.IsAxiallySymmetric():
		return SymmetryAxial
	case r.IsQuadrantSymmetric():
		return SymmetryQuadrant
	case r.IsPlaneSymmetric():
		return SymmetryPlane
	default:
		return SymmetryNone
	}
}

// Candela returns the raw sample for horizontal index h and vertical index v
func (r *Record) Candela(h, v int) float64 {
	return r.CandelaValues[h*r.VerticalAngleCount+v]
}
