package schema

import (
	"fmt"

	"github.com/google/uuid"
)

// FieldType is the logical type of a schema field. The set is closed:
// record types whose members do not map onto one of these are rejected
// during schema construction.
type FieldType int

const (
	TypeString FieldType = iota
	TypeBool
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeBytes
	TypeTimestamp
)

var fieldTypeNames = map[FieldType]string{
	TypeString:    "string",
	TypeBool:      "bool",
	TypeInt16:     "int16",
	TypeInt32:     "int32",
	TypeInt64:     "int64",
	TypeFloat32:   "float32",
	TypeFloat64:   "float64",
	TypeBytes:     "bytes",
	TypeTimestamp: "timestamp",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("fieldtype(%d)", int(t))
}

// Field is one named, typed slot in a Schema. Field order is carried by
// the owning Schema, not by the Field itself.
type Field struct {
	Name string
	Type FieldType
}

// Schema is an ordered field-name-to-field-type mapping describing a
// record type's shape. Immutable after construction. Each Schema carries
// a random identity so independently built schemas are distinguishable
// even when structurally equal.
type Schema struct {
	id     uuid.UUID
	fields []Field
	index  map[string]int
}

// New builds a schema over the given fields, preserving their order.
// Duplicate field names are rejected.
func New(fields ...Field) (*Schema, error) {
	s := &Schema{
		id:     uuid.New(),
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)

	for i, f := range s.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema field %d has empty name", i)
		}
		if _, exists := s.index[f.Name]; exists {
			return nil, fmt.Errorf("duplicate schema field %q", f.Name)
		}
		s.index[f.Name] = i
	}
	return s, nil
}

// ID returns the schema's identity, assigned at construction.
func (s *Schema) ID() uuid.UUID {
	return s.id
}

// NumFields returns the number of fields in the schema.
func (s *Schema) NumFields() int {
	return len(s.fields)
}

// Field returns the field at position i.
func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// Fields returns a copy of the ordered field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldIndex returns the position of the named field.
func (s *Schema) FieldIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Equal reports structural equality: same field names, types and order.
// Schema identity is ignored.
func (s *Schema) Equal(other *Schema) bool {
	if other == nil || len(s.fields) != len(other.fields) {
		return false
	}
	for i, f := range s.fields {
		if other.fields[i] != f {
			return false
		}
	}
	return true
}

func (s *Schema) String() string {
	out := "schema("
	for i, f := range s.fields {
		if i > 0 {
			out += ", "
		}
		out += f.Name + " " + f.Type.String()
	}
	return out + ")"
}
