// Package id provides centralized ID generation for the backend.
//
// All identifiers are ULIDs with a type-specific prefix (panel_*, surf_*,
// saga_*), which keeps logs readable and makes IDs lexicographically
// sortable by creation time.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// PanelID identifies a panel instance
type PanelID string

// SurfaceID identifies a workspace surface
type SurfaceID string

// SagaID identifies one bootstrap run
type SagaID string

const (
	PanelPrefix   = "panel"
	SurfacePrefix = "surf"
	SagaPrefix    = "saga"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source,
// useful for deterministic tests
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewPanelID generates a new panel ID
func NewPanelID() PanelID {
	return PanelID(Default().GenerateWithPrefix(PanelPrefix))
}

// NewSurfaceID generates a new surface ID
func NewSurfaceID() SurfaceID {
	return SurfaceID(Default().GenerateWithPrefix(SurfacePrefix))
}

// NewSagaID generates a new saga ID
func NewSagaID() SagaID {
	return SagaID(Default().GenerateWithPrefix(SagaPrefix))
}

func (id PanelID) String() string   { return string(id) }
func (id SurfaceID) String() string { return string(id) }
func (id SagaID) String() string    { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}
