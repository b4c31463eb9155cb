// Package snapshot persists a registry between runs so that queries do not
// have to re-read the design.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

// Current schema version - increment when Payload format changes
const SchemaVersion uint16 = 1

var (
	// ErrSnapshotNotFound is returned by Get when nothing has been saved.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSchemaMismatch is returned by Get for snapshots written by an
	// incompatible version.
	ErrSchemaMismatch = errors.New("snapshot schema mismatch")
)

// Payload is the serialised registry.
type Payload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16 `msgpack:"schema"`

	ID        string    `msgpack:"id"`
	CreatedAt time.Time `msgpack:"created_at"`

	// Defines are the `define names in effect at the end of ingestion
	Defines []string          `msgpack:"defines"`
	Modules []registry.Module `msgpack:"modules"`
}

// Store is a single-slot blob store for registry snapshots.
type Store interface {
	// Put replaces the stored snapshot.
	Put(ctx context.Context, p *Payload) error

	// Get returns the stored snapshot or ErrSnapshotNotFound.
	Get(ctx context.Context) (*Payload, error)
}

// NewPayload captures the modules and defines of reg.
func NewPayload(reg *registry.Registry) *Payload {
	return &Payload{
		Schema:    SchemaVersion,
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Defines:   reg.Defines().Names(),
		Modules:   reg.Modules(),
	}
}

// Save writes every module of reg to store.
func Save(ctx context.Context, store Store, reg *registry.Registry) (*Payload, error) {
	p := NewPayload(reg)
	if err := store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	return p, nil
}

// Load replaces the contents of reg with the stored snapshot and adds the
// saved defines to its define set.
func Load(ctx context.Context, store Store, reg *registry.Registry) (*Payload, error) {
	p, err := store.Get(ctx)
	if err != nil {
		return nil, err
	}
	reg.ReplaceAll(p.Modules)
	for _, d := range p.Defines {
		reg.Defines().Define(d)
	}
	return p, nil
}
