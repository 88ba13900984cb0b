// Package rowkit converts application record structs into generic,
// schema-typed rows for data-processing pipelines. A RowFactory derives a
// field schema from a record type's accessors, builds the extraction plan
// once, and reuses it for every later conversion of the same type.
package rowkit

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/rowkit/cache"
	"github.com/Konsultn-Engineering/rowkit/getter"
	"github.com/Konsultn-Engineering/rowkit/schema"
)

// ErrNilInstance is returned when Create is called with a nil record.
// Passing nil is a programming error; there are no null-row semantics.
var ErrNilInstance = errors.New("nil record instance")

// RowTypeFactory derives a schema from an ordered getter sequence, one
// field per getter, inferring each field's type from the getter's declared
// type. Implementations must preserve getter order.
type RowTypeFactory interface {
	CreateRowType(getters []getter.Getter) (*schema.Schema, error)
}

// DefaultRowTypeFactory maps getter types through the schema type map.
type DefaultRowTypeFactory struct{}

func (DefaultRowTypeFactory) CreateRowType(getters []getter.Getter) (*schema.Schema, error) {
	fields := make([]schema.Field, 0, len(getters))
	for _, g := range getters {
		ft, err := schema.FieldTypeOf(g.Type())
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", g.Name(), err)
		}
		fields = append(fields, schema.Field{Name: g.Name(), Type: ft})
	}
	return schema.New(fields...)
}

// RowFactory converts record instances to rows. Extraction plans are cached
// per runtime type for the lifetime of the factory instance; the cache is
// never shared between factories and never serialized.
//
// Note that the cache key is the exact runtime type passed to Create, so T
// and *T resolve to separate plans and may expose different accessor sets.
type RowFactory struct {
	rowTypeFactory  RowTypeFactory
	getterFactories []getter.Factory
	naming          schema.FieldNamingStrategy
	plans           cache.PlanCache
}

// Option configures a RowFactory.
type Option func(*RowFactory)

// WithRowTypeFactory replaces the default schema derivation.
func WithRowTypeFactory(rtf RowTypeFactory) Option {
	return func(f *RowFactory) {
		if rtf != nil {
			f.rowTypeFactory = rtf
		}
	}
}

// WithGetterFactories replaces the default accessor-method discovery.
// Factory outputs concatenate in the given order, which defines schema
// field order.
func WithGetterFactories(factories ...getter.Factory) Option {
	return func(f *RowFactory) {
		f.getterFactories = factories
	}
}

// WithNaming sets the field naming strategy used by the default
// accessor-method factory. Ignored when WithGetterFactories is given.
func WithNaming(naming schema.FieldNamingStrategy) Option {
	return func(f *RowFactory) {
		f.naming = naming
	}
}

// WithCacheSize bounds the plan cache to an LRU of the given size. Sizes
// below one keep the default unbounded cache.
func WithCacheSize(size int) Option {
	return func(f *RowFactory) {
		if plans, err := cache.NewLRUPlanCache(size); err == nil {
			f.plans = plans
		}
	}
}

// New creates a RowFactory. Without options it discovers fields through
// accessor methods (Get-prefixed, lowerCamel field names) and maps types
// through the default schema derivation.
func New(options ...Option) *RowFactory {
	f := &RowFactory{
		rowTypeFactory: DefaultRowTypeFactory{},
		plans:          cache.NewPlanCache(),
	}
	for _, opt := range options {
		opt(f)
	}
	if len(f.getterFactories) == 0 {
		f.getterFactories = []getter.Factory{getter.NewMethodFactory(f.naming)}
	}
	return f
}

// GetRowType returns the schema for the given record type, building and
// caching the type's plan if absent.
func (f *RowFactory) GetRowType(t reflect.Type) (*schema.Schema, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrNilInstance)
	}
	plan, err := f.plan(t)
	if err != nil {
		return nil, err
	}
	return plan.Schema, nil
}

// Create converts a record instance to a row bound to the cached schema of
// the instance's runtime type. Field values are extracted in schema field
// order; any getter failure aborts the call with no partial row.
func (f *RowFactory) Create(record any) (*schema.Row, error) {
	if record == nil {
		return nil, ErrNilInstance
	}

	plan, err := f.plan(reflect.TypeOf(record))
	if err != nil {
		return nil, err
	}

	values := make([]any, len(plan.Getters))
	for i, g := range plan.Getters {
		v, err := g.Get(record)
		if err != nil {
			return nil, fmt.Errorf("extract field %q: %w", g.Name(), err)
		}
		values[i] = v
	}
	return schema.NewRow(plan.Schema, values)
}

func (f *RowFactory) plan(t reflect.Type) (*cache.RowPlan, error) {
	return f.plans.GetOrBuild(t, func() (*cache.RowPlan, error) {
		return f.buildPlan(t)
	})
}

// buildPlan runs every getter factory in configured order, concatenates
// their outputs, and derives the schema from the combined sequence. It is
// pure: a failure caches nothing and a racing duplicate build is harmless.
func (f *RowFactory) buildPlan(t reflect.Type) (*cache.RowPlan, error) {
	var getters []getter.Getter
	for _, gf := range f.getterFactories {
		gs, err := gf.GenerateGetters(t)
		if err != nil {
			return nil, fmt.Errorf("generate getters for %s: %w", t, err)
		}
		getters = append(getters, gs...)
	}

	s, err := f.rowTypeFactory.CreateRowType(getters)
	if err != nil {
		return nil, fmt.Errorf("create row type for %s: %w", t, err)
	}
	if s.NumFields() != len(getters) {
		return nil, fmt.Errorf("row type for %s has %d fields for %d getters", t, s.NumFields(), len(getters))
	}
	return &cache.RowPlan{Schema: s, Getters: getters}, nil
}
