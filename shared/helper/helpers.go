package helper

import (
	"reflect"
	"runtime"
)

// GetTypedValueOf2 safely asserts the result of a comma-ok getter to the expected type T.
// A present nil value yields the zero value of T and ok == true,
// so nil-able slice types survive a round trip through an `any`.
func GetTypedValueOf2[T any](getFn func() (any, bool)) (res T, ok bool) {
	var raw any
	if raw, ok = getFn(); !ok {
		return
	}
	if raw == nil {
		return res, true
	}
	res, ok = raw.(T)
	return
}

// IsNil reports whether v is nil, including typed nils stored in an interface
// (nil pointers, maps, slices, funcs, channels and interfaces).
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

// FuncName returns the fully qualified name of a function value,
// or "<nil>" / "<not a func>" when fn cannot be resolved.
func FuncName(fn any) string {
	if fn == nil {
		return "<nil>"
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return "<not a func>"
	}
	if rv.IsNil() {
		return "<nil>"
	}
	if f := runtime.FuncForPC(rv.Pointer()); f != nil {
		return f.Name()
	}
	return "<unknown>"
}
