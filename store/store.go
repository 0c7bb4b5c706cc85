// Package store defines the boundary to the application-owned local store of
// authored metadata rows. Concrete persistence lives under
// internal/providers/store.
package store

import (
	"context"

	"github.com/acrylJonny/metasync/metaobject"
)

// LocalStore persists locally authored metadata rows. Save assigns a LocalID
// on first save and enforces an optimistic-concurrency check: a write whose
// Version no longer matches the stored row fails with a ConflictError
// instead of silently overwriting.
type LocalStore interface {
	List(ctx context.Context, entityType metaobject.EntityType) ([]metaobject.MetadataObject, error)
	Get(ctx context.Context, localID string) (metaobject.MetadataObject, error)
	FindByURN(ctx context.Context, urn string) (metaobject.MetadataObject, bool, error)
	Save(ctx context.Context, obj metaobject.MetadataObject) (metaobject.MetadataObject, error)
	Delete(ctx context.Context, localID string) error
}

// ChangeSync mirrors local store changes into a version-control backend.
// Implementations are optional; a nil ChangeSync means rows live only on
// the local filesystem.
type ChangeSync interface {
	Init(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
	Close() error
}
