package ffi

import (
	"strings"
	"unicode/utf8"
)

// Text converts foreign bytes into a string. Nil input is a null pointer;
// input that is not UTF-8 is rejected before any other work.
func Text(b []byte) (string, Status) {
	if b == nil {
		return "", NullPointer
	}
	if !utf8.Valid(b) {
		return "", InvalidUnicode
	}
	return string(b), Ok
}

// ForeignText returns s as a NUL terminated buffer. Text with an embedded
// NUL cannot cross the boundary and yields ok=false.
func ForeignText(s string) ([]byte, bool) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, false
	}
	out := make([]byte, len(s)+1)
	copy(out, s)
	return out, true
}

// Flatten copies items into a slice whose capacity equals its length, the
// shape a caller frees with a single length argument.
func Flatten[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
