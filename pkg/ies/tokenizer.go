package ies

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// maxLineLength bounds a single input line. LM-63 asks for 256 characters
// but exporters routinely write whole candela planes on one line
const maxLineLength = 1 << 20

const byteOrderMark = "\ufeff"

// Tokens is the tokenizer output: the numeric tokens of the data block in
// file order, and the header text that preceded the TILT= line. Header lines
// are joined with "\n" whatever the file's line endings were, and a leading
// UTF-8 byte order mark is dropped
type Tokens struct {
	Values []string
	Header string
}

// Tokenize reads an LM-63 file body. Lines up to the TILT= line are kept as
// header text; everything after it is split on whitespace and commas.
// Only TILT=NONE is supported
func Tokenize(reader io.Reader) (*Tokens, error) {
	tokens := &Tokens{}
	var header strings.Builder
	inData := false
	first := true

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, byteOrderMark)
			first = false
		}
		if inData {
			tokens.Values = append(tokens.Values, splitFields(line)...)
			continue
		}

		tilt, ok := tiltValue(line)
		if !ok {
			header.WriteString(line)
			header.WriteByte('\n')
			continue
		}
		if !strings.EqualFold(tilt, "NONE") {
			return nil, newError(ParseFailed, "tokenize", "", fmt.Errorf("unsupported TILT=%s", tilt))
		}
		inData = true
	}

	if err := scanner.Err(); err != nil {
		return nil, newError(FailedToReadFile, "tokenize", "", err)
	}
	if !inData {
		return nil, newError(ParseFailed, "tokenize", "", fmt.Errorf("missing TILT= line"))
	}

	tokens.Header = header.String()
	return tokens, nil
}

// TokenizeString splits a bare data block with no header and no TILT line,
// such as the output of Serialize
func TokenizeString(data string) *Tokens {
	return &Tokens{Values: splitFields(data)}
}

// tiltValue returns the value of a TILT= line
func tiltValue(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 5 || !strings.EqualFold(trimmed[:5], "TILT=") {
		return "", false
	}
	return strings.TrimSpace(trimmed[5:]), true
}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}
