package cache

import (
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Konsultn-Engineering/rowkit/getter"
	"github.com/Konsultn-Engineering/rowkit/schema"
)

// RowPlan pairs a schema with the getters that feed it for one record
// type. Invariant: len(Getters) == Schema.NumFields() and Getters[i]
// produces the value for Schema.Field(i). Plans are immutable once built
// and live for the lifetime of the owning cache.
type RowPlan struct {
	Schema  *schema.Schema
	Getters []getter.Getter
}

// PlanCache resolves the RowPlan for a record type, building it on first
// use. Build runs outside the lock and must be pure: when two callers race
// on the same unseen type, both may build but only one insertion survives,
// and every caller observes the surviving plan.
type PlanCache interface {
	GetOrBuild(t reflect.Type, build func() (*RowPlan, error)) (*RowPlan, error)
}

type memPlanCache struct {
	mu   sync.RWMutex
	data map[reflect.Type]*RowPlan
}

// NewPlanCache returns an unbounded plan cache.
func NewPlanCache() PlanCache {
	return &memPlanCache{
		data: make(map[reflect.Type]*RowPlan),
	}
}

func (c *memPlanCache) GetOrBuild(t reflect.Type, build func() (*RowPlan, error)) (*RowPlan, error) {
	c.mu.RLock()
	if existing, ok := c.data[t]; ok {
		c.mu.RUnlock()
		return existing, nil
	}
	c.mu.RUnlock()

	plan, err := build()
	if err != nil {
		// Failed builds are not cached; the next caller retries from scratch.
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.data[t]; ok {
		return existing, nil
	}
	c.data[t] = plan
	return plan, nil
}

type lruPlanCache struct {
	mu   sync.Mutex
	data *lru.Cache[reflect.Type, *RowPlan]
}

// NewLRUPlanCache returns a plan cache bounded to size entries. Eviction is
// safe: plan building is pure, so an evicted type is simply rebuilt on its
// next use.
func NewLRUPlanCache(size int) (PlanCache, error) {
	data, err := lru.New[reflect.Type, *RowPlan](size)
	if err != nil {
		return nil, err
	}
	return &lruPlanCache{data: data}, nil
}

func (c *lruPlanCache) GetOrBuild(t reflect.Type, build func() (*RowPlan, error)) (*RowPlan, error) {
	if existing, ok := c.data.Get(t); ok {
		return existing, nil
	}

	plan, err := build()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.data.Get(t); ok {
		return existing, nil
	}
	c.data.Add(t, plan)
	return plan, nil
}
