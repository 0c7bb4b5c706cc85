package orchestrator

import (
	"context"
	"fmt"

	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/metaobject"
)

// Delete removes an object from the requested side(s) of the local/remote
// pair. A local-scope delete leaves the remote object untouched; a
// remote-scope delete leaves the local row behind as local_only. Scope
// "both" is fail-closed: when the remote delete fails, the local row is
// kept so the pairing history is not orphaned. A remote-touching scope on a
// never-pushed row (no urn) is rejected with a ValidationError rather than
// silently degrading to a local removal; callers wanting that must ask for
// local scope explicitly.
func (r *DefaultOrchestrator) Delete(ctx context.Context, ref Ref, scope DeleteScope) error {
	err := r.delete(ctx, ref, scope)
	r.observe("delete", err)
	return err
}

func (r *DefaultOrchestrator) delete(ctx context.Context, ref Ref, scope DeleteScope) error {
	if !scope.Valid() {
		return validationError(fmt.Sprintf("unsupported delete scope %q", scope), nil)
	}
	if ref.LocalID == "" && ref.URN == "" {
		return validationError("delete requires a local id or a urn", nil)
	}
	localStore, err := r.requireStore()
	if err != nil {
		return err
	}

	row, hasRow, err := r.resolveLocalRow(ctx, ref)
	if err != nil {
		return err
	}
	urn := ref.URN
	if urn == "" && hasRow {
		urn = row.URN
	}

	deleteLocal := scope == DeleteLocalOnly || scope == DeleteBoth
	deleteRemote := scope == DeleteRemoteOnly || scope == DeleteBoth

	if deleteLocal && !hasRow {
		return notFoundError(fmt.Sprintf("no local row for %q", ref.Key()), nil)
	}
	if deleteRemote && urn == "" {
		return validationError(
			fmt.Sprintf("object %q has no urn, nothing to delete remotely", ref.Key()),
			nil,
		)
	}

	// Remote first: scope "both" must not remove the local row when the
	// remote call fails.
	if deleteRemote {
		remoteCatalog, err := r.requireCatalog()
		if err != nil {
			return err
		}
		err = r.withRetry(ctx, "delete", func() error {
			return remoteCatalog.Delete(ctx, urn)
		})
		if err != nil {
			// A urn that no longer resolves means the remote side is
			// already gone; only scope "both" may treat that as done.
			if !(scope == DeleteBoth && faults.IsCategory(err, faults.NotFoundError)) {
				return err
			}
		}
		r.logger().Info("deleted remote object", "urn", urn)
	}

	if deleteLocal {
		if err := localStore.Delete(ctx, row.LocalID); err != nil {
			if deleteRemote {
				return faults.NewTypedError(
					faults.InternalError,
					fmt.Sprintf("remote object %q deleted, but removing the local row failed", urn),
					err,
				)
			}
			return err
		}
		r.logger().Info("deleted local row", "localId", row.LocalID)
		r.commitLocalChange(ctx, fmt.Sprintf("delete %s %s", row.EntityType, row.Definition.Name))
	}

	return nil
}

func (r *DefaultOrchestrator) resolveLocalRow(ctx context.Context, ref Ref) (metaobject.MetadataObject, bool, error) {
	localStore, err := r.requireStore()
	if err != nil {
		return metaobject.MetadataObject{}, false, err
	}

	if ref.LocalID != "" {
		row, err := localStore.Get(ctx, ref.LocalID)
		if err != nil {
			if faults.IsCategory(err, faults.NotFoundError) {
				return metaobject.MetadataObject{}, false, nil
			}
			return metaobject.MetadataObject{}, false, err
		}
		return row, true, nil
	}

	row, exists, err := localStore.FindByURN(ctx, ref.URN)
	if err != nil {
		return metaobject.MetadataObject{}, false, err
	}
	return row, exists, nil
}
