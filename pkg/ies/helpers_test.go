package ies

import (
	"os"
	"path/filepath"
	"testing"
)

// minimalIES is the smallest useful file: one lamp, a 0-90 degree vertical
// sweep and a single horizontal plane.
const minimalIES = "IESNA:LM-63-2002\n" +
	"[TEST] minimal\n" +
	"[MANUFAC] df07\n" +
	"TILT=NONE\n" +
	"1 1000 1 2 1 1 2 0 0 0\n" +
	"1 1 0\n" +
	"0 90\n" +
	"0\n" +
	"100 80\n"

// newTestRecord builds a valid type C record with vertical angles 0, 45, 90
// and horizontal planes from 0 to lastHorizontal in equal steps.
func newTestRecord(lastHorizontal float64, planes int) *Record {
	if lastHorizontal == 0 {
		planes = 1
	}
	vertical := []float64{0, 45, 90}
	horizontal := make([]float64, planes)
	for i := range horizontal {
		if planes > 1 {
			horizontal[i] = lastHorizontal * float64(i) / float64(planes-1)
		}
	}
	candela := make([]float64, 0, len(vertical)*planes)
	for h := 0; h < planes; h++ {
		for v := range vertical {
			candela = append(candela, float64(100*(h+1)-10*v))
		}
	}
	return &Record{
		LampCount:            1,
		LumensPerLamp:        1000,
		CandelaMultiplier:    1,
		VerticalAngleCount:   len(vertical),
		HorizontalAngleCount: planes,
		PhotometricType:      PhotometricTypeC,
		UnitType:             UnitMeters,
		BallastFactor:        1,
		VersionNumber:        1,
		VerticalAngles:       vertical,
		HorizontalAngles:     horizontal,
		CandelaValues:        candela,
	}
}

// writeTestFile writes content to name inside a fresh temp directory.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}
