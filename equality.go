package pagecursor

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// Comparator reports whether two records are structurally equal.
type Comparator[T any] func(a, b T) bool

// DefaultComparator compares records field by field, unexported fields
// included. Nil and empty maps/slices are different values.
func DefaultComparator[T any]() Comparator[T] {
	return func(a, b T) bool {
		return cmp.Equal(a, b, cmp.Exporter(func(reflect.Type) bool { return true }))
	}
}

// Cloner returns a copy of a record that shares no mutable state with it.
type Cloner[T any] func(rec T) T

// DefaultCloner deep-copies maps, slices, arrays, pointers, interfaces and
// exported struct fields. Unexported fields are copied shallowly.
func DefaultCloner[T any]() Cloner[T] {
	return func(rec T) T {
		v := reflect.ValueOf(&rec).Elem()
		out := reflect.New(v.Type()).Elem()
		out.Set(deepCopy(v))

		ret, _ := out.Interface().(T)
		return ret
	}
}

func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		ret := reflect.New(v.Type().Elem())
		ret.Elem().Set(deepCopy(v.Elem()))
		return ret
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		ret := reflect.New(v.Type()).Elem()
		ret.Set(deepCopy(v.Elem()))
		return ret
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		ret := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			ret.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return ret
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		ret := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			ret.Index(i).Set(deepCopy(v.Index(i)))
		}
		return ret
	case reflect.Array:
		ret := reflect.New(v.Type()).Elem()
		for i := range v.Len() {
			ret.Index(i).Set(deepCopy(v.Index(i)))
		}
		return ret
	case reflect.Struct:
		ret := reflect.New(v.Type()).Elem()
		ret.Set(v)
		for i := range v.NumField() {
			if f := ret.Field(i); f.CanSet() {
				f.Set(deepCopy(v.Field(i)))
			}
		}
		return ret
	default:
		return v
	}
}
