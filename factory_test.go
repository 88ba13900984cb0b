package rowkit

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/rowkit/getter"
	"github.com/Konsultn-Engineering/rowkit/schema"
)

// =========================================================================
// Test Record Types
// =========================================================================

type person struct {
	name string
	age  int64
}

func (p person) GetName() string { return p.name }
func (p person) GetAge() int64   { return p.age }

type tagged struct{}

func (tagged) GetLabels() map[string]string { return nil }

type fragile struct {
	fail bool
}

func (f fragile) GetValue() (string, error) {
	if f.fail {
		return "", errors.New("accessor blew up")
	}
	return "ok", nil
}

type bare struct{}

// =========================================================================
// Test Doubles
// =========================================================================

type countingGetterFactory struct {
	mu    sync.Mutex
	calls int
	inner getter.Factory
}

func (f *countingGetterFactory) GenerateGetters(t reflect.Type) ([]getter.Getter, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.inner.GenerateGetters(t)
}

func (f *countingGetterFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type countingRowTypeFactory struct {
	mu    sync.Mutex
	calls int
	inner RowTypeFactory
}

func (f *countingRowTypeFactory) CreateRowType(getters []getter.Getter) (*schema.Schema, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.inner.CreateRowType(getters)
}

func (f *countingRowTypeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type failOnceRowTypeFactory struct {
	calls int
	inner RowTypeFactory
}

func (f *failOnceRowTypeFactory) CreateRowType(getters []getter.Getter) (*schema.Schema, error) {
	f.calls++
	if f.calls == 1 {
		return nil, errors.New("schema construction failed")
	}
	return f.inner.CreateRowType(getters)
}

type staticGetter struct {
	name  string
	typ   reflect.Type
	value any
}

func (g staticGetter) Name() string         { return g.name }
func (g staticGetter) Type() reflect.Type   { return g.typ }
func (g staticGetter) Get(any) (any, error) { return g.value, nil }

type staticFactory struct {
	getters []getter.Getter
}

func (f staticFactory) GenerateGetters(reflect.Type) ([]getter.Getter, error) {
	return f.getters, nil
}

// =========================================================================
// Conversion Tests
// =========================================================================

func TestCreateFieldMapping(t *testing.T) {
	f := New()
	row, err := f.Create(person{name: "Ada", age: 37})
	require.NoError(t, err)

	s := row.Schema()
	require.Equal(t, 2, s.NumFields())

	// Accessor enumeration is lexicographic, so GetAge precedes GetName.
	assert.Equal(t, schema.Field{Name: "age", Type: schema.TypeInt64}, s.Field(0))
	assert.Equal(t, schema.Field{Name: "name", Type: schema.TypeString}, s.Field(1))
	assert.Equal(t, []any{int64(37), "Ada"}, row.Values())

	name, err := row.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "Ada", name)

	age, err := row.GetInt64("age")
	require.NoError(t, err)
	assert.Equal(t, int64(37), age)
}

func TestCreateEmptySchema(t *testing.T) {
	f := New()
	row, err := f.Create(bare{})
	require.NoError(t, err)
	assert.Equal(t, 0, row.Schema().NumFields())
	assert.Empty(t, row.Values())
}

func TestCreateNilInstance(t *testing.T) {
	f := New()
	_, err := f.Create(nil)
	assert.ErrorIs(t, err, ErrNilInstance)

	_, err = f.GetRowType(nil)
	assert.Error(t, err)
}

// =========================================================================
// Schema and Caching Tests
// =========================================================================

func TestGetRowTypeDeterminism(t *testing.T) {
	f := New()
	typ := reflect.TypeOf(person{})

	first, err := f.GetRowType(typ)
	require.NoError(t, err)
	second, err := f.GetRowType(typ)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.True(t, first.Equal(second))
}

func TestCachingCorrectness(t *testing.T) {
	gf := &countingGetterFactory{inner: getter.NewMethodFactory(nil)}
	rtf := &countingRowTypeFactory{inner: DefaultRowTypeFactory{}}
	f := New(WithGetterFactories(gf), WithRowTypeFactory(rtf))

	p := person{name: "Ada", age: 37}

	s, err := f.GetRowType(reflect.TypeOf(p))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		row, err := f.Create(p)
		require.NoError(t, err)
		assert.Same(t, s, row.Schema())
	}

	// Both collaborators ran exactly once for the type.
	assert.Equal(t, 1, gf.count())
	assert.Equal(t, 1, rtf.count())
}

func TestRuntimeTypeIsCacheKey(t *testing.T) {
	f := New()

	valueRow, err := f.Create(person{name: "Ada", age: 37})
	require.NoError(t, err)
	ptrRow, err := f.Create(&person{name: "Ada", age: 37})
	require.NoError(t, err)

	// T and *T cache separately even when structurally identical.
	assert.NotSame(t, valueRow.Schema(), ptrRow.Schema())
	assert.True(t, valueRow.Schema().Equal(ptrRow.Schema()))
}

func TestOrderPreservationAcrossFactories(t *testing.T) {
	first := staticFactory{getters: []getter.Getter{
		staticGetter{name: "b", typ: reflect.TypeOf(""), value: "1"},
		staticGetter{name: "a", typ: reflect.TypeOf(""), value: "2"},
	}}
	second := staticFactory{getters: []getter.Getter{
		staticGetter{name: "c", typ: reflect.TypeOf(int64(0)), value: int64(3)},
	}}

	f := New(WithGetterFactories(first, second))
	row, err := f.Create(bare{})
	require.NoError(t, err)

	s := row.Schema()
	require.Equal(t, 3, s.NumFields())
	assert.Equal(t, "b", s.Field(0).Name)
	assert.Equal(t, "a", s.Field(1).Name)
	assert.Equal(t, "c", s.Field(2).Name)
	assert.Equal(t, []any{"1", "2", int64(3)}, row.Values())
}

func TestIDFactoryComposition(t *testing.T) {
	f := New(WithGetterFactories(
		getter.NewIDFactory("id", getter.UUIDGenerator{}),
		getter.NewMethodFactory(nil),
	))

	row, err := f.Create(person{name: "Ada", age: 37})
	require.NoError(t, err)

	s := row.Schema()
	require.Equal(t, 3, s.NumFields())
	assert.Equal(t, "id", s.Field(0).Name)
	assert.Equal(t, "age", s.Field(1).Name)
	assert.Equal(t, "name", s.Field(2).Name)

	id, err := row.GetString("id")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestWithCacheSize(t *testing.T) {
	f := New(WithCacheSize(1))

	rowA, err := f.Create(person{name: "Ada", age: 37})
	require.NoError(t, err)
	rowB, err := f.Create(fragile{})
	require.NoError(t, err)

	assert.Equal(t, 2, rowA.Schema().NumFields())
	assert.Equal(t, 1, rowB.Schema().NumFields())
}

// =========================================================================
// Concurrency Tests
// =========================================================================

func TestConcurrentFirstUse(t *testing.T) {
	f := New()
	const workers = 64

	schemas := make([]*schema.Schema, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			row, err := f.Create(person{name: "Ada", age: int64(i)})
			assert.NoError(t, err)
			schemas[i] = row.Schema()
		}(i)
	}

	close(start)
	wg.Wait()

	// Every caller observes the single surviving schema: no duplicated
	// fields, no partial entries.
	for i := 0; i < workers; i++ {
		require.NotNil(t, schemas[i])
		assert.Same(t, schemas[0], schemas[i])
		assert.Equal(t, 2, schemas[i].NumFields())
	}
}

// =========================================================================
// Failure Propagation Tests
// =========================================================================

func TestGetterFailurePropagates(t *testing.T) {
	rtf := &countingRowTypeFactory{inner: DefaultRowTypeFactory{}}
	f := New(WithRowTypeFactory(rtf))

	_, err := f.Create(fragile{fail: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accessor blew up")

	// The plan cached during the failed call is still valid.
	row, err := f.Create(fragile{fail: false})
	require.NoError(t, err)
	v, err := row.GetString("value")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	_, err = f.Create(fragile{fail: true})
	assert.Error(t, err)
	assert.Equal(t, 1, rtf.count())
}

func TestSchemaConstructionFailureNotCached(t *testing.T) {
	rtf := &failOnceRowTypeFactory{inner: DefaultRowTypeFactory{}}
	f := New(WithRowTypeFactory(rtf))
	typ := reflect.TypeOf(person{})

	_, err := f.GetRowType(typ)
	require.Error(t, err)

	// The type was not cached on failure; the retry rebuilds from scratch.
	s, err := f.GetRowType(typ)
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumFields())
	assert.Equal(t, 2, rtf.calls)
}

func TestUnsupportedTypeRejected(t *testing.T) {
	f := New()
	_, err := f.Create(tagged{})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)
}
