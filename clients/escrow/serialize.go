package escrow

import (
	"fmt"
	"reflect"
)

// Serializable is implemented by domain values that control their own
// payload shape. Structure calls it instead of reflecting over struct
// fields, so implementation-only state such as a transaction's bound client
// can never reach the wire.
type Serializable interface {
	StructuredForm() interface{}
}

// Structure converts v into a value composed only of slices, string-keyed
// maps and scalars, ready for JSON encoding. Sequences keep their element
// order. Values that are neither Serializable nor a sequence or mapping are
// returned unchanged.
func Structure(v interface{}) interface{} {
	if v == nil {
		return nil
	}

	if s, ok := v.(Serializable); ok {
		return s.StructuredForm()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Structure(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Structure(iter.Value().Interface())
		}
		return out
	default:
		// scalars and unrecognized values pass through unchanged
		return v
	}
}
