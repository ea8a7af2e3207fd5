package pmap

import "reflect"

// same reports whether a and b are the same value for the purpose of
// change detection. Comparable values use ==, so two distinct pointers to
// equal structs differ. Maps and slices are the same only when they share
// their underlying storage. Anything else, funcs included, is always
// considered changed.
func same(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() &&
			va.Len() == vb.Len() &&
			va.Cap() == vb.Cap()
	case reflect.Func:
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return false
}
