package orchestrator

import (
	"context"

	"github.com/acrylJonny/metasync/hierarchy"
	"github.com/acrylJonny/metasync/metaobject"
	"github.com/acrylJonny/metasync/reconciler"
	"github.com/acrylJonny/metasync/refcache"
)

// DeleteScope selects which side of the local/remote pair a deletion
// affects.
type DeleteScope string

const (
	DeleteLocalOnly  DeleteScope = "local_only"
	DeleteRemoteOnly DeleteScope = "remote_only"
	DeleteBoth       DeleteScope = "both"
)

func (s DeleteScope) Valid() bool {
	switch s {
	case DeleteLocalOnly, DeleteRemoteOnly, DeleteBoth:
		return true
	}
	return false
}

// Ref addresses one object for mutation by whichever identities the caller
// knows. At least one of LocalID and URN must be set.
type Ref struct {
	LocalID string
	URN     string
}

func (r Ref) Key() string {
	if r.LocalID != "" {
		return r.LocalID
	}
	return r.URN
}

// ItemError records one failed item of a bulk operation.
type ItemError struct {
	Item   string
	Reason error
}

// BulkResult aggregates per-item outcomes. One item's failure never aborts
// or rolls back the others.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []ItemError
}

func (r *BulkResult) recordSuccess() {
	r.Succeeded++
}

func (r *BulkResult) recordFailure(item string, reason error) {
	r.Failed++
	r.Errors = append(r.Errors, ItemError{Item: item, Reason: reason})
}

type SyncReader interface {
	Reconcile(ctx context.Context, entityType metaobject.EntityType) (reconciler.Buckets, error)
	ResolveHierarchy(ctx context.Context) (hierarchy.Tree, error)
}

type ReferenceReader interface {
	GetReferenceData(ctx context.Context) (refcache.Snapshot, error)
}

type Mutator interface {
	Push(ctx context.Context, localID string) (metaobject.MetadataObject, error)
	Pull(ctx context.Context, urn string) (metaobject.MetadataObject, error)
	Delete(ctx context.Context, ref Ref, scope DeleteScope) error
}

type BulkMutator interface {
	BulkPush(ctx context.Context, localIDs []string) BulkResult
	BulkDelete(ctx context.Context, refs []Ref, scope DeleteScope) BulkResult
}

type Orchestrator interface {
	SyncReader
	ReferenceReader
	Mutator
	BulkMutator
}
