// Package store persists promoted candidates.
package store

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// CandidateStore is the persisted candidate pool. Records are append-only:
// saving a record for a fingerprint that already exists supersedes the
// older record without modifying it.
type CandidateStore interface {
	// Save appends a record. IDs must be unique.
	Save(ctx context.Context, record types.CandidateRecord) error
	// Get returns the record with the given ID.
	Get(ctx context.Context, id string) (optional.Option[types.CandidateRecord], error)
	// Latest returns the newest record for a genome fingerprint.
	Latest(ctx context.Context, fingerprint string) (optional.Option[types.CandidateRecord], error)
	// List returns the latest record of every fingerprint, best in-sample score first.
	List(ctx context.Context) ([]types.CandidateRecord, error)
	// History returns every record of a fingerprint, oldest first.
	History(ctx context.Context, fingerprint string) ([]types.CandidateRecord, error)
	// Close releases the underlying resources.
	Close() error
}
