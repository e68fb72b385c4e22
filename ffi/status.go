// Package ffi is the foreign boundary of fluency expressed in plain Go:
// status codes, opaque handles, text marshalling and a flat function table
// that the cgo library exports symbol by symbol.
package ffi

import (
	"errors"

	"github.com/goliatone/go-fluency"
)

// Status is the result code returned by every table operation.
type Status int32

const (
	Ok Status = iota
	InvalidLocale
	InvalidUnicode
	NullPointer
	MissingValue
	InvalidNumber
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case InvalidLocale:
		return "invalid locale"
	case InvalidUnicode:
		return "invalid unicode"
	case NullPointer:
		return "null pointer"
	case MissingValue:
		return "missing value"
	case InvalidNumber:
		return "invalid number"
	default:
		return "unknown status"
	}
}

func (s Status) IsOk() bool    { return s == Ok }
func (s Status) IsError() bool { return s != Ok }

// StatusFromError maps engine errors onto status codes. Unknown errors and
// handle misuse map to NullPointer.
func StatusFromError(err error) Status {
	switch {
	case err == nil:
		return Ok
	case errors.Is(err, fluency.ErrInvalidLocale):
		return InvalidLocale
	case errors.Is(err, fluency.ErrMissingValue):
		return MissingValue
	case errors.Is(err, fluency.ErrInvalidNumber):
		return InvalidNumber
	case errors.Is(err, ErrInvalidUnicode):
		return InvalidUnicode
	default:
		return NullPointer
	}
}
