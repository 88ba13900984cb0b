package getter

import (
	"fmt"
	"reflect"
	"sync"
	"time"
	"unsafe"

	"github.com/Konsultn-Engineering/rowkit/schema"
)

// getterCreators maps field types to compiled offset-read constructors.
// Reads for registered types skip reflection entirely when the instance is
// addressable (passed as a pointer).
var getterCreators = sync.Map{}

func registerGetterCreator[T any]() {
	zeroType := reflect.TypeOf(*new(T))

	getterCreators.Store(zeroType, func(offset uintptr) func(unsafe.Pointer) any {
		return func(structPtr unsafe.Pointer) any {
			return *(*T)(unsafe.Add(structPtr, offset))
		}
	})
}

func init() {
	registerGetterCreator[string]()
	registerGetterCreator[bool]()
	registerGetterCreator[int16]()
	registerGetterCreator[int32]()
	registerGetterCreator[int64]()
	registerGetterCreator[int]()
	registerGetterCreator[float32]()
	registerGetterCreator[float64]()
	registerGetterCreator[time.Time]()
	registerGetterCreator[[]byte]()
}

func createDirectGetterForType(fieldType reflect.Type, offset uintptr) func(unsafe.Pointer) any {
	if creator, ok := getterCreators.Load(fieldType); ok {
		return creator.(func(uintptr) func(unsafe.Pointer) any)(offset)
	}
	return nil
}

// FieldFactory discovers exported struct fields in declaration order. Field
// names are derived from the Go field names via the naming strategy; values
// are read through a precompiled offset fast path for registered types,
// with a reflect fallback for everything else.
type FieldFactory struct {
	naming schema.FieldNamingStrategy
}

// NewFieldFactory creates a struct-field factory. A nil naming strategy
// selects lowerCamel field names.
func NewFieldFactory(naming schema.FieldNamingStrategy) *FieldFactory {
	if naming == nil {
		naming = schema.NewFieldNamingStrategy(schema.FieldLowerCamel)
	}
	return &FieldFactory{naming: naming}
}

// GenerateGetters returns one getter per exported, non-anonymous struct
// field, in declaration order. The type may be a struct or a pointer to
// one; anything else is rejected.
func (f *FieldFactory) GenerateGetters(t reflect.Type) ([]Getter, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot generate getters for nil type")
	}

	base := t
	viaPtr := false
	if base.Kind() == reflect.Ptr {
		base = base.Elem()
		viaPtr = true
	}
	if base.Kind() != reflect.Struct {
		return nil, fmt.Errorf("invalid record type: %s (expected struct)", base.Kind())
	}

	getters := make([]Getter, 0, base.NumField())
	for i := 0; i < base.NumField(); i++ {
		sf := base.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}

		g := &fieldGetter{
			name:  f.naming.FieldName(sf.Name),
			typ:   sf.Type,
			recv:  t,
			index: sf.Index,
		}
		// The offset fast path needs a stable address, so it only applies
		// to pointer instances.
		if viaPtr {
			g.direct = createDirectGetterForType(sf.Type, sf.Offset)
		}
		getters = append(getters, g)
	}
	return getters, nil
}

type fieldGetter struct {
	name   string
	typ    reflect.Type
	recv   reflect.Type
	index  []int
	direct func(unsafe.Pointer) any
}

func (g *fieldGetter) Name() string {
	return g.name
}

func (g *fieldGetter) Type() reflect.Type {
	return g.typ
}

func (g *fieldGetter) Get(instance any) (any, error) {
	v := reflect.ValueOf(instance)
	if !v.IsValid() {
		return nil, fmt.Errorf("cannot read field %q from nil instance", g.name)
	}
	if v.Type() != g.recv {
		return nil, fmt.Errorf("getter for field %q bound to %s, got %s", g.name, g.recv, v.Type())
	}

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("cannot read field %q from nil pointer", g.name)
		}
		if g.direct != nil {
			return g.direct(unsafe.Pointer(v.Pointer())), nil
		}
		v = v.Elem()
	}
	return v.FieldByIndex(g.index).Interface(), nil
}
