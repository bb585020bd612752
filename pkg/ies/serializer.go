package ies

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultHeader is written by WriteIES when a record carries no header text
const DefaultHeader = "IESNA:LM-63-2002\n"

// Serialize renders rec as the data block the renderer's IES light accepts.
//
// Layout, one space between values and "\n" after each line:
//
//	lamps lumens multiplier vCount hCount photometricType unitType width length height
//	ballast version watts
//	vertical angles
//	horizontal angles
//	candela values for horizontal angle 0
//	... one line per horizontal angle
//
// Counts and types are decimal integers; every other number is written as
// the shortest fixed-point text that parses back to the same float64, so
// ParseString(Serialize(r)) reproduces r exactly. ExtraHeaderText is not
// part of the output
func Serialize(rec *Record) (string, error) {
	if err := rec.validate(); err != nil {
		return "", newError(InvalidDataInIESFile, "serialize", "", err)
	}

	var b strings.Builder
	writeLine(&b,
		strconv.Itoa(rec.LampCount),
		formatFloat(rec.LumensPerLamp),
		formatFloat(rec.CandelaMultiplier),
		strconv.Itoa(rec.VerticalAngleCount),
		strconv.Itoa(rec.HorizontalAngleCount),
		strconv.Itoa(int(rec.PhotometricType)),
		strconv.Itoa(int(rec.UnitType)),
		formatFloat(rec.Width),
		formatFloat(rec.Length),
		formatFloat(rec.Height),
	)
	writeLine(&b,
		formatFloat(rec.BallastFactor),
		formatFloat(rec.VersionNumber),
		formatFloat(rec.InputWatts),
	)
	writeFloats(&b, rec.VerticalAngles)
	writeFloats(&b, rec.HorizontalAngles)
	for h := 0; h < rec.HorizontalAngleCount; h++ {
		start := h * rec.VerticalAngleCount
		writeFloats(&b, rec.CandelaValues[start:start+rec.VerticalAngleCount])
	}
	return b.String(), nil
}

// WriteIES writes rec as a complete LM-63 file: the preserved header text,
// TILT=NONE and the serialized data block
func WriteIES(w io.Writer, rec *Record) error {
	body, err := Serialize(rec)
	if err != nil {
		return err
	}

	header := rec.ExtraHeaderText
	if header == "" {
		header = DefaultHeader
	} else if !strings.HasSuffix(header, "\n") {
		header += "\n"
	}

	if _, err := io.WriteString(w, header+"TILT=NONE\n"+body); err != nil {
		return fmt.Errorf("write IES data: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeFloats(b *strings.Builder, values []float64) {
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = formatFloat(v)
	}
	writeLine(b, fields...)
}

func writeLine(b *strings.Builder, fields ...string) {
	b.WriteString(strings.Join(fields, " "))
	b.WriteByte('\n')
}
