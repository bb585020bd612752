package ies

import (
	"errors"
	"fmt"
)

// ErrorCode is the result kind of an IES operation. It implements error so a
// code can be used directly as an errors.Is target
type ErrorCode int

const (
	Success              ErrorCode = iota
	NoFile                         // empty path
	NotIESFile                     // wrong file extension, rejected before I/O
	FailedToReadFile               // open or read failure
	InvalidDataInIESFile           // value parsed but breaks a record invariant
	ParseFailed                    // structural grammar violation
	UnexpectedEndOfFile            // tokens ran out before the grammar finished
)

var errorCodeNames = map[ErrorCode]string{
	Success:              "success",
	NoFile:               "no file",
	NotIESFile:           "not an IES file",
	FailedToReadFile:     "failed to read file",
	InvalidDataInIESFile: "invalid data in IES file",
	ParseFailed:          "parse failed",
	UnexpectedEndOfFile:  "unexpected end of file",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("error code %d", int(c))
}

func (c ErrorCode) Error() string { return c.String() }

// Error is returned by every failing operation in this package
type Error struct {
	Code ErrorCode
	Op   string // "parse", "update", "serialize", ...
	Path string // file path, when the operation had one
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Code.String()
	if e.Path != "" {
		msg = e.Op + " " + e.Path + ": " + e.Code.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches an ErrorCode target against the error's code
func (e *Error) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// CodeOf extracts the ErrorCode carried by err. A nil error is Success and an
// error from outside this package is ParseFailed
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return ParseFailed
}

func newError(code ErrorCode, op, path string, err error) *Error {
	return &Error{Code: code, Op: op, Path: path, Err: err}
}
