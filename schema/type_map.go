package schema

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

// ErrUnsupportedType marks a record member whose declared Go type has no
// FieldType mapping. Wrapped errors carry the member name and type.
var ErrUnsupportedType = errors.New("unsupported field type")

// Pre-initialize reflect.Type values to avoid repeated allocations.
var (
	timeType  = reflect.TypeOf(time.Time{})
	bytesType = reflect.TypeOf([]byte{})
)

// FieldTypeOf maps a declared Go type onto its logical FieldType.
//
// The mapping is intentionally closed: time.Time and []byte are handled
// structurally, everything else resolves through the type's kind. Unsigned
// widths widen into the next signed type; uint and uint64 have no lossless
// signed home and are rejected.
func FieldTypeOf(t reflect.Type) (FieldType, error) {
	if t == nil {
		return 0, fmt.Errorf("%w: <nil>", ErrUnsupportedType)
	}

	switch t {
	case timeType:
		return TypeTimestamp, nil
	case bytesType:
		return TypeBytes, nil
	}

	switch t.Kind() {
	case reflect.String:
		return TypeString, nil
	case reflect.Bool:
		return TypeBool, nil
	case reflect.Int8, reflect.Int16:
		return TypeInt16, nil
	case reflect.Int32:
		return TypeInt32, nil
	case reflect.Int, reflect.Int64:
		return TypeInt64, nil
	case reflect.Uint8, reflect.Uint16:
		return TypeInt32, nil
	case reflect.Uint32:
		return TypeInt64, nil
	case reflect.Float32:
		return TypeFloat32, nil
	case reflect.Float64:
		return TypeFloat64, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}
