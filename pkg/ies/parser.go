package ies

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

// parseState is a position in the fixed LM-63 field order
type parseState int

const (
	stateLampCount parseState = iota
	stateLumens
	stateMultiplier
	stateVerticalCount
	stateHorizontalCount
	statePhotometricType
	stateUnitType
	stateWidth
	stateLength
	stateHeight
	stateBallast
	stateVersion
	stateWatts
	stateVerticalAngles
	stateHorizontalAngles
	stateCandela
	stateDone
)

var stateNames = [...]string{
	stateLampCount:        "lamp count",
	stateLumens:           "lumens per lamp",
	stateMultiplier:       "candela multiplier",
	stateVerticalCount:    "vertical angle count",
	stateHorizontalCount:  "horizontal angle count",
	statePhotometricType:  "photometric type",
	stateUnitType:         "unit type",
	stateWidth:            "width",
	stateLength:           "length",
	stateHeight:           "height",
	stateBallast:          "ballast factor",
	stateVersion:          "version",
	stateWatts:            "input watts",
	stateVerticalAngles:   "vertical angles",
	stateHorizontalAngles: "horizontal angles",
	stateCandela:          "candela values",
	stateDone:             "done",
}

func (s parseState) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("parseState(%d)", int(s))
}

// maxCandelaValues caps V*H so a corrupt header cannot demand an absurd grid
const maxCandelaValues = 1 << 24

// stateFunc consumes one token in its state and advances the parser when
// the field (or array) is complete
type stateFunc func(p *fieldParser, token string) error

var transitions = map[parseState]stateFunc{
	stateLampCount:        intField(func(r *Record, v int) { r.LampCount = v }),
	stateLumens:           floatField(func(r *Record, v float64) { r.LumensPerLamp = v }),
	stateMultiplier:       floatField(func(r *Record, v float64) { r.CandelaMultiplier = v }),
	stateVerticalCount:    consumeVerticalCount,
	stateHorizontalCount:  consumeHorizontalCount,
	statePhotometricType:  intField(func(r *Record, v int) { r.PhotometricType = PhotometricType(v) }),
	stateUnitType:         intField(func(r *Record, v int) { r.UnitType = UnitType(v) }),
	stateWidth:            floatField(func(r *Record, v float64) { r.Width = v }),
	stateLength:           floatField(func(r *Record, v float64) { r.Length = v }),
	stateHeight:           floatField(func(r *Record, v float64) { r.Height = v }),
	stateBallast:          floatField(func(r *Record, v float64) { r.BallastFactor = v }),
	stateVersion:          floatField(func(r *Record, v float64) { r.VersionNumber = v }),
	stateWatts:            floatField(func(r *Record, v float64) { r.InputWatts = v }),
	stateVerticalAngles:   arrayField(func(r *Record) *[]float64 { return &r.VerticalAngles }, func(r *Record) int { return r.VerticalAngleCount }),
	stateHorizontalAngles: arrayField(func(r *Record) *[]float64 { return &r.HorizontalAngles }, func(r *Record) int { return r.HorizontalAngleCount }),
	stateCandela:          arrayField(func(r *Record) *[]float64 { return &r.CandelaValues }, func(r *Record) int { return r.VerticalAngleCount * r.HorizontalAngleCount }),
}

// fieldParser walks the token stream through the LM-63 field order
type fieldParser struct {
	rec   *Record
	state parseState
	pos   int // index of the token being consumed
}

func (p *fieldParser) consume(token string) error {
	if p.state == stateDone {
		return p.fail(ParseFailed, fmt.Errorf("unexpected trailing token %q", token))
	}
	return transitions[p.state](p, token)
}

func (p *fieldParser) fail(code ErrorCode, err error) error {
	return newError(code, "parse", "", fmt.Errorf("token %d (%s): %w", p.pos, p.state, err))
}

func intField(set func(*Record, int)) stateFunc {
	return func(p *fieldParser, token string) error {
		v, err := parseInt(token)
		if err != nil {
			return p.fail(InvalidDataInIESFile, err)
		}
		set(p.rec, v)
		p.state++
		return nil
	}
}

func floatField(set func(*Record, float64)) stateFunc {
	return func(p *fieldParser, token string) error {
		v, err := parseFloat(token)
		if err != nil {
			return p.fail(InvalidDataInIESFile, err)
		}
		set(p.rec, v)
		p.state++
		return nil
	}
}

func arrayField(slice func(*Record) *[]float64, want func(*Record) int) stateFunc {
	return func(p *fieldParser, token string) error {
		v, err := parseFloat(token)
		if err != nil {
			return p.fail(InvalidDataInIESFile, err)
		}
		values := slice(p.rec)
		*values = append(*values, v)
		if len(*values) == want(p.rec) {
			p.state++
		}
		return nil
	}
}

func consumeVerticalCount(p *fieldParser, token string) error {
	v, err := parseInt(token)
	if err != nil {
		return p.fail(InvalidDataInIESFile, err)
	}
	if v < 2 {
		return p.fail(ParseFailed, fmt.Errorf("need at least 2 vertical angles, got %d", v))
	}
	p.rec.VerticalAngleCount = v
	p.state++
	return nil
}

func consumeHorizontalCount(p *fieldParser, token string) error {
	h, err := parseInt(token)
	if err != nil {
		return p.fail(InvalidDataInIESFile, err)
	}
	if h < 1 {
		return p.fail(ParseFailed, fmt.Errorf("need at least 1 horizontal angle, got %d", h))
	}
	if p.rec.VerticalAngleCount > maxCandelaValues/h {
		return p.fail(ParseFailed, fmt.Errorf("%d x %d candela grid is too large", p.rec.VerticalAngleCount, h))
	}
	p.rec.HorizontalAngleCount = h
	p.state++
	return nil
}

// parseInt accepts integers and integral floats such as "1.0"
func parseInt(token string) (int, error) {
	if v, err := strconv.Atoi(token); err == nil {
		return v, nil
	}
	f, err := parseFloat(token)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%q is not an integer", token)
	}
	return int(f), nil
}

func parseFloat(token string) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", token)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", token)
	}
	return v, nil
}

// ParseTokens runs the field parser over tokens and stores the result in
// out. Parsing is all-or-nothing: out is only written when every field was
// read and the record validates
func ParseTokens(tokens *Tokens, out *Record) error {
	scratch := &Record{ExtraHeaderText: tokens.Header}
	p := &fieldParser{rec: scratch, state: stateLampCount}

	for i, token := range tokens.Values {
		p.pos = i
		if err := p.consume(token); err != nil {
			return err
		}
	}

	if p.state != stateDone {
		p.pos = len(tokens.Values)
		return p.fail(UnexpectedEndOfFile, fmt.Errorf("input ended after %d tokens", len(tokens.Values)))
	}

	if err := scratch.validate(); err != nil {
		return newError(InvalidDataInIESFile, "parse", "", err)
	}

	*out = *scratch
	return nil
}

// Decode tokenizes and parses an LM-63 stream
func Decode(reader io.Reader) (*Record, error) {
	tokens, err := Tokenize(reader)
	if err != nil {
		return nil, err
	}
	rec := &Record{}
	if err := ParseTokens(tokens, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ParseString parses a bare data block, the inverse of Serialize
func ParseString(data string) (*Record, error) {
	rec := &Record{}
	if err := ParseTokens(TokenizeString(data), rec); err != nil {
		return nil, err
	}
	return rec, nil
}
