package getter

import (
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/rowkit/schema"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// MethodFactory discovers accessor methods on a record type. Every exported
// method named Get<Member> that takes no arguments and returns a single
// value (optionally paired with an error) contributes one field; the field
// name is derived from <Member> via the naming strategy.
//
// Enumeration follows reflect.Type.Method order, which is lexicographic by
// method name. That order is part of the factory's contract: it fixes
// schema field order for every type converted through it.
type MethodFactory struct {
	naming schema.FieldNamingStrategy
}

// NewMethodFactory creates an accessor-method factory. A nil naming
// strategy selects lowerCamel field names.
func NewMethodFactory(naming schema.FieldNamingStrategy) *MethodFactory {
	if naming == nil {
		naming = schema.NewFieldNamingStrategy(schema.FieldLowerCamel)
	}
	return &MethodFactory{naming: naming}
}

// GenerateGetters returns one getter per conforming accessor method, in
// method enumeration order.
func (f *MethodFactory) GenerateGetters(t reflect.Type) ([]Getter, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot generate getters for nil type")
	}

	getters := make([]Getter, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)

		member, ok := schema.StripAccessorPrefix(m.Name)
		if !ok {
			continue
		}

		// Func includes the receiver as the first argument.
		mt := m.Type
		if mt.NumIn() != 1 {
			continue
		}

		var hasErr bool
		switch mt.NumOut() {
		case 1:
			if mt.Out(0) == errType {
				continue
			}
		case 2:
			if mt.Out(0) == errType || mt.Out(1) != errType {
				continue
			}
			hasErr = true
		default:
			continue
		}

		getters = append(getters, &methodGetter{
			name:    f.naming.FieldName(member),
			typ:     mt.Out(0),
			recv:    t,
			index:   m.Index,
			method:  m.Name,
			withErr: hasErr,
		})
	}
	return getters, nil
}

type methodGetter struct {
	name    string
	typ     reflect.Type
	recv    reflect.Type
	index   int
	method  string
	withErr bool
}

func (g *methodGetter) Name() string {
	return g.name
}

func (g *methodGetter) Type() reflect.Type {
	return g.typ
}

func (g *methodGetter) Get(instance any) (any, error) {
	v := reflect.ValueOf(instance)
	if !v.IsValid() {
		return nil, fmt.Errorf("cannot read %s on nil instance", g.method)
	}
	if v.Type() != g.recv {
		return nil, fmt.Errorf("getter for %s bound to %s, got %s", g.method, g.recv, v.Type())
	}

	results := v.Method(g.index).Call(nil)
	if g.withErr && !results[1].IsNil() {
		return nil, fmt.Errorf("%s: %w", g.method, results[1].Interface().(error))
	}
	return results[0].Interface(), nil
}
