// Package getter discovers and binds field value getters for record types.
// A Getter extracts one named field from a record instance; a Factory
// produces the ordered getter sequence for a type. Factories must be
// deterministic: the same type always yields the same getters in the same
// order, since cached extraction plans and schemas are built from them.
package getter

import "reflect"

// Getter extracts the value of one named field from a record instance.
// Implementations are pure; they carry no state beyond the name and
// accessor binding.
type Getter interface {
	// Name returns the derived schema field name.
	Name() string
	// Type returns the declared Go type of the extracted value.
	Type() reflect.Type
	// Get extracts the field value from the given instance. Errors
	// propagate unchanged to the conversion caller.
	Get(instance any) (any, error)
}

// Factory produces the ordered getter sequence for a record type. Multiple
// factories may be configured on one row factory; their outputs concatenate
// in configured order, which defines schema field order.
type Factory interface {
	GenerateGetters(t reflect.Type) ([]Getter, error)
}
