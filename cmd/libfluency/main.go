// Command libfluency builds the fluency C library:
//
//	go build -buildmode=c-shared -o libfluency.so ./cmd/libfluency
//
// Every function returns a FluencyResult and writes its outputs through
// pointer arguments. Strings and arrays handed to the caller are owned by
// the caller and released with the matching fluency_destroy_* call.
package main

/*
#include <stdlib.h>
#include "fluency.h"
*/
import "C"

import (
	"log/slog"
	"sync"
	"unsafe"

	"github.com/goliatone/go-fluency"
	"github.com/goliatone/go-fluency/ffi"
)

var (
	tableOnce sync.Once
	table     *ffi.Table
)

func lib() *ffi.Table {
	tableOnce.Do(func() {
		cfg, err := fluency.LoadEnvConfig()
		if err != nil {
			cfg, _ = fluency.LoadEnvConfigFrom(map[string]string{})
		}
		logger := cfg.Logger()
		if err != nil {
			logger.Warn("ignoring invalid environment", slog.Any("error", err))
		}
		table = ffi.NewTable(
			ffi.WithLogger(logger),
			ffi.WithBundleOptions(cfg.BundleOptions()...),
		)
	})
	return table
}

func main() {}

//export fluency_is_ok
func fluency_is_ok(res C.FluencyResult) C.bool {
	return C.bool(ffi.Status(res).IsOk())
}

//export fluency_is_error
func fluency_is_error(res C.FluencyResult) C.bool {
	return C.bool(ffi.Status(res).IsError())
}

//export fluency_create_bundle
func fluency_create_bundle(locale *C.char, out *C.FluencyBundle) C.FluencyResult {
	if out == nil {
		return result(ffi.NullPointer)
	}
	h, status := lib().CreateBundle(goBytes(locale))
	*out = C.FluencyBundle(h)
	return result(status)
}

//export fluency_destroy_bundle
func fluency_destroy_bundle(bundle C.FluencyBundle) {
	lib().DestroyBundle(ffi.Handle(bundle))
}

func writeDiagnostics(diags []string, errs ***C.char, errsLen *C.size_t) {
	if errs == nil || errsLen == nil {
		return
	}
	*errs, *errsLen = cStringArray(diags)
}

func clearDiagnostics(errs ***C.char, errsLen *C.size_t) {
	if errs != nil {
		*errs = nil
	}
	if errsLen != nil {
		*errsLen = 0
	}
}

//export fluency_add_resource
func fluency_add_resource(bundle C.FluencyBundle, text *C.char, errs ***C.char, errsLen *C.size_t) C.FluencyResult {
	clearDiagnostics(errs, errsLen)
	status, diags := lib().AddResource(ffi.Handle(bundle), goBytes(text))
	writeDiagnostics(diags, errs, errsLen)
	return result(status)
}

//export fluency_add_resource_overriding
func fluency_add_resource_overriding(bundle C.FluencyBundle, text *C.char, errs ***C.char, errsLen *C.size_t) C.FluencyResult {
	clearDiagnostics(errs, errsLen)
	status, diags := lib().AddResourceOverriding(ffi.Handle(bundle), goBytes(text))
	writeDiagnostics(diags, errs, errsLen)
	return result(status)
}

//export fluency_set_use_isolating
func fluency_set_use_isolating(bundle C.FluencyBundle, enabled C.bool) C.FluencyResult {
	return result(lib().SetUseIsolating(ffi.Handle(bundle), bool(enabled)))
}

//export fluency_has_message
func fluency_has_message(bundle C.FluencyBundle, id *C.char, out *C.bool) C.FluencyResult {
	if out == nil {
		return result(ffi.NullPointer)
	}
	ok, status := lib().HasMessage(ffi.Handle(bundle), goBytes(id))
	*out = C.bool(ok)
	return result(status)
}

//export fluency_get_message
func fluency_get_message(bundle C.FluencyBundle, id *C.char, out *C.FluencyMessage) C.FluencyResult {
	if out == nil {
		return result(ffi.NullPointer)
	}
	h, status := lib().GetMessage(ffi.Handle(bundle), goBytes(id))
	*out = C.FluencyMessage(h)
	return result(status)
}

//export fluency_destroy_message
func fluency_destroy_message(message C.FluencyMessage) {
	lib().DestroyMessage(ffi.Handle(message))
}

//export fluency_create_args
func fluency_create_args(out *C.FluencyArgs) C.FluencyResult {
	if out == nil {
		return result(ffi.NullPointer)
	}
	*out = C.FluencyArgs(lib().CreateArgs())
	return result(ffi.Ok)
}

//export fluency_create_args_with_capacity
func fluency_create_args_with_capacity(out *C.FluencyArgs, capacity C.size_t) C.FluencyResult {
	if out == nil {
		return result(ffi.NullPointer)
	}
	*out = C.FluencyArgs(lib().CreateArgsWithCapacity(uint64(capacity)))
	return result(ffi.Ok)
}

//export fluency_destroy_args
func fluency_destroy_args(args C.FluencyArgs) {
	lib().DestroyArgs(ffi.Handle(args))
}

//export fluency_set_arg_string
func fluency_set_arg_string(args C.FluencyArgs, key, value *C.char) C.FluencyResult {
	return result(lib().SetArgString(ffi.Handle(args), goBytes(key), goBytes(value)))
}

//export fluency_set_arg_try_number
func fluency_set_arg_try_number(args C.FluencyArgs, key, value *C.char) C.FluencyResult {
	return result(lib().SetArgTryNumber(ffi.Handle(args), goBytes(key), goBytes(value)))
}

//export fluency_set_arg_i8
func fluency_set_arg_i8(args C.FluencyArgs, key *C.char, value C.int8_t) C.FluencyResult {
	return result(lib().SetArgInt(ffi.Handle(args), goBytes(key), int64(value)))
}

//export fluency_set_arg_i16
func fluency_set_arg_i16(args C.FluencyArgs, key *C.char, value C.int16_t) C.FluencyResult {
	return result(lib().SetArgInt(ffi.Handle(args), goBytes(key), int64(value)))
}

//export fluency_set_arg_i32
func fluency_set_arg_i32(args C.FluencyArgs, key *C.char, value C.int32_t) C.FluencyResult {
	return result(lib().SetArgInt(ffi.Handle(args), goBytes(key), int64(value)))
}

//export fluency_set_arg_i64
func fluency_set_arg_i64(args C.FluencyArgs, key *C.char, value C.int64_t) C.FluencyResult {
	return result(lib().SetArgInt(ffi.Handle(args), goBytes(key), int64(value)))
}

//export fluency_set_arg_u8
func fluency_set_arg_u8(args C.FluencyArgs, key *C.char, value C.uint8_t) C.FluencyResult {
	return result(lib().SetArgUint(ffi.Handle(args), goBytes(key), uint64(value)))
}

//export fluency_set_arg_u16
func fluency_set_arg_u16(args C.FluencyArgs, key *C.char, value C.uint16_t) C.FluencyResult {
	return result(lib().SetArgUint(ffi.Handle(args), goBytes(key), uint64(value)))
}

//export fluency_set_arg_u32
func fluency_set_arg_u32(args C.FluencyArgs, key *C.char, value C.uint32_t) C.FluencyResult {
	return result(lib().SetArgUint(ffi.Handle(args), goBytes(key), uint64(value)))
}

//export fluency_set_arg_u64
func fluency_set_arg_u64(args C.FluencyArgs, key *C.char, value C.uint64_t) C.FluencyResult {
	return result(lib().SetArgUint(ffi.Handle(args), goBytes(key), uint64(value)))
}

//export fluency_set_arg_f32
func fluency_set_arg_f32(args C.FluencyArgs, key *C.char, value C.float) C.FluencyResult {
	return result(lib().SetArgFloat(ffi.Handle(args), goBytes(key), float64(value)))
}

//export fluency_set_arg_f64
func fluency_set_arg_f64(args C.FluencyArgs, key *C.char, value C.double) C.FluencyResult {
	return result(lib().SetArgFloat(ffi.Handle(args), goBytes(key), float64(value)))
}

//export fluency_get_attribute
func fluency_get_attribute(message C.FluencyMessage, id *C.char, out *C.FluencyAttribute) C.FluencyResult {
	if out == nil {
		return result(ffi.NullPointer)
	}
	h, status := lib().GetAttribute(ffi.Handle(message), goBytes(id))
	*out = C.FluencyAttribute(h)
	return result(status)
}

//export fluency_get_attributes
func fluency_get_attributes(message C.FluencyMessage, out **C.FluencyAttribute, outLen *C.size_t) C.FluencyResult {
	if out == nil || outLen == nil {
		return result(ffi.NullPointer)
	}
	*out, *outLen = nil, 0
	hs, status := lib().GetAttributes(ffi.Handle(message))
	if status != ffi.Ok {
		return result(status)
	}
	*out, *outLen = handleArray(hs)
	return result(status)
}

//export fluency_destroy_attribute
func fluency_destroy_attribute(attribute C.FluencyAttribute) {
	lib().DestroyAttribute(ffi.Handle(attribute))
}

//export fluency_destroy_attributes
func fluency_destroy_attributes(attributes *C.FluencyAttribute, n C.size_t) {
	if attributes == nil {
		return
	}
	items := unsafe.Slice(attributes, int(n))
	hs := make([]ffi.Handle, len(items))
	for i, h := range items {
		hs[i] = ffi.Handle(h)
	}
	lib().DestroyAttributes(hs)
	C.free(unsafe.Pointer(attributes))
}

//export fluency_get_attribute_id
func fluency_get_attribute_id(attribute C.FluencyAttribute, out **C.char) C.FluencyResult {
	if out == nil {
		return result(ffi.NullPointer)
	}
	*out = nil
	id, status := lib().GetAttributeID(ffi.Handle(attribute))
	if status != ffi.Ok {
		return result(status)
	}
	*out = cString(id)
	return result(status)
}

func writeFormatted(text string, diags []string, status ffi.Status, out **C.char, errs ***C.char, errsLen *C.size_t) C.FluencyResult {
	if status != ffi.Ok {
		return result(status)
	}
	*out = cString(text)
	writeDiagnostics(diags, errs, errsLen)
	return result(status)
}

//export fluency_format_message
func fluency_format_message(bundle C.FluencyBundle, message C.FluencyMessage, args C.FluencyArgs, out **C.char, errs ***C.char, errsLen *C.size_t) C.FluencyResult {
	if out == nil {
		return result(ffi.NullPointer)
	}
	*out = nil
	clearDiagnostics(errs, errsLen)
	text, diags, status := lib().FormatMessage(ffi.Handle(bundle), ffi.Handle(message), ffi.Handle(args))
	return writeFormatted(text, diags, status, out, errs, errsLen)
}

//export fluency_format_attribute
func fluency_format_attribute(bundle C.FluencyBundle, attribute C.FluencyAttribute, args C.FluencyArgs, out **C.char, errs ***C.char, errsLen *C.size_t) C.FluencyResult {
	if out == nil {
		return result(ffi.NullPointer)
	}
	*out = nil
	clearDiagnostics(errs, errsLen)
	text, diags, status := lib().FormatAttribute(ffi.Handle(bundle), ffi.Handle(attribute), ffi.Handle(args))
	return writeFormatted(text, diags, status, out, errs, errsLen)
}

//export fluency_destroy_string
func fluency_destroy_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}

//export fluency_destroy_str_array
func fluency_destroy_str_array(arr **C.char, n C.size_t) {
	freeStringArray(arr, n)
}
