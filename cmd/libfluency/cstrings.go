package main

/*
#include <stdlib.h>
#include <string.h>
#include "fluency.h"
*/
import "C"

import (
	"unsafe"

	"github.com/goliatone/go-fluency/ffi"
)

// goBytes copies a NUL terminated C string. NULL maps to nil so the table
// reports NullPointer; the empty string maps to an empty, non-nil slice.
func goBytes(p *C.char) []byte {
	if p == nil {
		return nil
	}
	n := int(C.strlen(p))
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
	return out
}

// cString returns a malloc'd copy of s, or NULL when s holds a NUL byte.
func cString(s string) *C.char {
	if _, ok := ffi.ForeignText(s); !ok {
		return nil
	}
	return C.CString(s)
}

// cStringArray returns a malloc'd array of exactly len(items) strings.
func cStringArray(items []string) (**C.char, C.size_t) {
	flat := ffi.Flatten(items)
	if len(flat) == 0 {
		return nil, 0
	}
	mem := C.malloc(C.size_t(len(flat)) * C.size_t(unsafe.Sizeof(uintptr(0))))
	arr := unsafe.Slice((**C.char)(mem), len(flat))
	for i, s := range flat {
		arr[i] = cString(s)
	}
	return (**C.char)(mem), C.size_t(len(flat))
}

// handleArray returns a malloc'd array of exactly len(hs) handles.
func handleArray(hs []ffi.Handle) (*C.FluencyAttribute, C.size_t) {
	flat := ffi.Flatten(hs)
	if len(flat) == 0 {
		return nil, 0
	}
	mem := C.malloc(C.size_t(len(flat)) * C.size_t(unsafe.Sizeof(C.FluencyAttribute(0))))
	arr := unsafe.Slice((*C.FluencyAttribute)(mem), len(flat))
	for i, h := range flat {
		arr[i] = C.FluencyAttribute(h)
	}
	return (*C.FluencyAttribute)(mem), C.size_t(len(flat))
}

func freeStringArray(arr **C.char, n C.size_t) {
	if arr == nil {
		return
	}
	for _, p := range unsafe.Slice(arr, int(n)) {
		C.free(unsafe.Pointer(p))
	}
	C.free(unsafe.Pointer(arr))
}

func result(status ffi.Status) C.FluencyResult {
	return C.FluencyResult(status)
}
