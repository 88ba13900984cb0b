package schema

import (
	"fmt"
	"time"
)

// Row is an ordered sequence of field values bound to a Schema. Rows are
// built fresh on every conversion and are safe for the caller to retain;
// nothing in the factory aliases them afterwards.
type Row struct {
	schema *Schema
	values []any
}

// NewRow binds values to a schema. The value count must match the field
// count exactly; values[i] belongs to schema.Field(i).
func NewRow(s *Schema, values []any) (*Row, error) {
	if s == nil {
		return nil, fmt.Errorf("row requires a schema")
	}
	if len(values) != s.NumFields() {
		return nil, fmt.Errorf("row has %d values for %d schema fields", len(values), s.NumFields())
	}
	return &Row{schema: s, values: values}, nil
}

// Schema returns the schema this row is bound to.
func (r *Row) Schema() *Schema {
	return r.schema
}

// Values returns the ordered field values. The slice is owned by the row.
func (r *Row) Values() []any {
	return r.values
}

// Value returns the value at field position i.
func (r *Row) Value(i int) any {
	return r.values[i]
}

// Get returns the value of the named field.
func (r *Row) Get(name string) (any, error) {
	i, ok := r.schema.FieldIndex(name)
	if !ok {
		return nil, fmt.Errorf("row has no field %q", name)
	}
	return r.values[i], nil
}

// GetString returns the named field as a string.
func (r *Row) GetString(name string) (string, error) {
	v, err := r.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q holds %T, not string", name, v)
	}
	return s, nil
}

// GetBool returns the named field as a bool.
func (r *Row) GetBool(name string) (bool, error) {
	v, err := r.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %q holds %T, not bool", name, v)
	}
	return b, nil
}

// GetInt64 returns the named field as an int64, widening any smaller
// integer representation the type map admits.
func (r *Row) GetInt64(name string) (int64, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("field %q holds %T, not an integer", name, v)
	}
}

// GetFloat64 returns the named field as a float64, widening float32.
func (r *Row) GetFloat64(name string) (float64, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("field %q holds %T, not a float", name, v)
	}
}

// GetTime returns the named field as a time.Time.
func (r *Row) GetTime(name string) (time.Time, error) {
	v, err := r.Get(name)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("field %q holds %T, not time.Time", name, v)
	}
	return t, nil
}

// GetBytes returns the named field as a byte slice.
func (r *Row) GetBytes(name string) ([]byte, error) {
	v, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("field %q holds %T, not []byte", name, v)
	}
	return b, nil
}
