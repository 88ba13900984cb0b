package getter

import (
	"crypto/rand"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator defines the interface for synthetic row ID generation.
type IDGenerator interface {
	Generate() (string, error)
	Type() string
}

// UUIDGenerator generates UUID v4 values.
type UUIDGenerator struct{}

func (g UUIDGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

func (g UUIDGenerator) Type() string {
	return "uuid"
}

// ULIDGenerator generates monotonic ULID values.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

func (g *ULIDGenerator) Type() string {
	return "ulid"
}

// SnowflakeGenerator generates Twitter Snowflake-like IDs.
type SnowflakeGenerator struct {
	mu        sync.Mutex
	machineID uint64
	sequence  uint64
	lastTime  uint64
	epoch     uint64
}

func NewSnowflakeGenerator(machineID uint64) *SnowflakeGenerator {
	epoch := uint64(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	return &SnowflakeGenerator{
		machineID: machineID & 0x3FF, // 10 bits
		epoch:     epoch,
	}
}

func (g *SnowflakeGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := uint64(time.Now().UnixMilli())
	if now < g.lastTime {
		return "", fmt.Errorf("clock moved backwards")
	}

	if now == g.lastTime {
		g.sequence = (g.sequence + 1) & 0xFFF // 12 bits
		if g.sequence == 0 {
			for now <= g.lastTime {
				now = uint64(time.Now().UnixMilli())
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastTime = now

	id := ((now - g.epoch) << 22) | (g.machineID << 12) | g.sequence
	return fmt.Sprintf("%d", id), nil
}

func (g *SnowflakeGenerator) Type() string {
	return "snowflake"
}

// IDFactory contributes a single synthetic string field whose value comes
// from an IDGenerator instead of the record instance. It composes with the
// discovery factories through ordinary factory concatenation, so the ID
// field's position follows the configured factory order.
type IDFactory struct {
	name string
	gen  IDGenerator
}

// NewIDFactory creates a synthetic-ID factory producing one field with the
// given name.
func NewIDFactory(name string, gen IDGenerator) *IDFactory {
	return &IDFactory{name: name, gen: gen}
}

func (f *IDFactory) GenerateGetters(t reflect.Type) ([]Getter, error) {
	if f.gen == nil {
		return nil, fmt.Errorf("id factory %q has no generator", f.name)
	}
	return []Getter{&idGetter{name: f.name, gen: f.gen}}, nil
}

type idGetter struct {
	name string
	gen  IDGenerator
}

func (g *idGetter) Name() string {
	return g.name
}

func (g *idGetter) Type() reflect.Type {
	return reflect.TypeOf("")
}

func (g *idGetter) Get(_ any) (any, error) {
	id, err := g.gen.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate %s id for field %q: %w", g.gen.Type(), g.name, err)
	}
	return id, nil
}
