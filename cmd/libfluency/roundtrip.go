package main

/*
#include <stdlib.h>
#include "fluency.h"
*/
import "C"

import (
	"unsafe"

	"github.com/goliatone/go-fluency/ffi"
)

// Go typed drivers for the C marshalling helpers, used by the package tests.

// readStringArray copies n entries of arr. NULL entries come back as nil.
func readStringArray(arr **C.char, n C.size_t) []*string {
	if arr == nil {
		return nil
	}
	items := unsafe.Slice(arr, int(n))
	out := make([]*string, len(items))
	for i, p := range items {
		if p != nil {
			s := C.GoString(p)
			out[i] = &s
		}
	}
	return out
}

func roundTripStrings(items []string) []*string {
	arr, n := cStringArray(items)
	defer freeStringArray(arr, n)
	return readStringArray(arr, n)
}

func roundTripHandles(hs []ffi.Handle) []ffi.Handle {
	arr, n := handleArray(hs)
	if arr == nil {
		return nil
	}
	defer C.free(unsafe.Pointer(arr))
	items := unsafe.Slice(arr, int(n))
	out := make([]ffi.Handle, len(items))
	for i, h := range items {
		out[i] = ffi.Handle(h)
	}
	return out
}

// roundTripText sends s out as a C string and reads it back. ok is false
// when s cannot cross the boundary.
func roundTripText(s string) (b []byte, ok bool) {
	p := cString(s)
	if p == nil {
		return nil, false
	}
	defer C.free(unsafe.Pointer(p))
	return goBytes(p), true
}

// roundTripDiagnostics runs diags through the out-parameter pair used by
// add_resource and format_*, starting from a stale length.
func roundTripDiagnostics(diags []string) (entries []*string, n int, null bool) {
	var errs **C.char
	errsLen := C.size_t(99)
	clearDiagnostics(&errs, &errsLen)
	writeDiagnostics(diags, &errs, &errsLen)
	defer freeStringArray(errs, errsLen)
	return readStringArray(errs, errsLen), int(errsLen), errs == nil
}
