package orchestrator

import (
	"context"
	"time"

	"github.com/acrylJonny/metasync/hierarchy"
	"github.com/acrylJonny/metasync/metaobject"
	"github.com/acrylJonny/metasync/reconciler"
	"github.com/acrylJonny/metasync/refcache"
)

// Reconcile classifies every object of one entity type across the current
// local and remote snapshots.
func (r *DefaultOrchestrator) Reconcile(
	ctx context.Context,
	entityType metaobject.EntityType,
) (reconciler.Buckets, error) {
	if !entityType.Valid() {
		return reconciler.Buckets{}, validationError("unsupported entity type", nil)
	}
	localStore, err := r.requireStore()
	if err != nil {
		return reconciler.Buckets{}, err
	}
	remoteCatalog, err := r.requireCatalog()
	if err != nil {
		return reconciler.Buckets{}, err
	}

	started := time.Now()

	local, err := localStore.List(ctx, entityType)
	if err != nil {
		return reconciler.Buckets{}, err
	}

	var remote []metaobject.MetadataObject
	err = r.withRetry(ctx, "listByType", func() error {
		var listErr error
		remote, listErr = remoteCatalog.ListByType(ctx, entityType)
		return listErr
	})
	if err != nil {
		return reconciler.Buckets{}, err
	}

	buckets, err := reconciler.Reconcile(local, remote)
	if err != nil {
		return reconciler.Buckets{}, err
	}
	if r.Metrics != nil {
		r.Metrics.observeReconcile(time.Since(started))
	}
	return buckets, nil
}

// ResolveHierarchy builds the merged glossary tree from both snapshots.
func (r *DefaultOrchestrator) ResolveHierarchy(ctx context.Context) (hierarchy.Tree, error) {
	localStore, err := r.requireStore()
	if err != nil {
		return hierarchy.Tree{}, err
	}
	remoteCatalog, err := r.requireCatalog()
	if err != nil {
		return hierarchy.Tree{}, err
	}

	var local []metaobject.MetadataObject
	for _, entityType := range []metaobject.EntityType{metaobject.EntityGlossaryNode, metaobject.EntityGlossaryTerm} {
		rows, err := localStore.List(ctx, entityType)
		if err != nil {
			return hierarchy.Tree{}, err
		}
		local = append(local, rows...)
	}

	var remote []metaobject.MetadataObject
	for _, entityType := range []metaobject.EntityType{metaobject.EntityGlossaryNode, metaobject.EntityGlossaryTerm} {
		var page []metaobject.MetadataObject
		err := r.withRetry(ctx, "listByType", func() error {
			var listErr error
			page, listErr = remoteCatalog.ListByType(ctx, entityType)
			return listErr
		})
		if err != nil {
			return hierarchy.Tree{}, err
		}
		remote = append(remote, page...)
	}

	tree, err := hierarchy.Resolve(local, remote)
	if err != nil {
		return hierarchy.Tree{}, err
	}
	for _, excluded := range tree.Excluded {
		r.logger().Info("hierarchy subtree excluded",
			"key", excluded.Object.Key(), "cause", excluded.Err.Error())
	}
	return tree, nil
}

// GetReferenceData returns the connection-scoped users/groups/ownership-type
// snapshot, refreshing it when stale.
func (r *DefaultOrchestrator) GetReferenceData(ctx context.Context) (refcache.Snapshot, error) {
	if r == nil || r.References == nil {
		return refcache.Snapshot{}, internalError("reference cache is not configured", nil)
	}
	return r.References.GetOrRefresh(ctx, r.ConnectionID)
}
