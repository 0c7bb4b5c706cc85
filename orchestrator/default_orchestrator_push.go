package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/acrylJonny/metasync/catalog"
	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/metaobject"
)

// Push sends a locally authored or locally edited object to the remote
// catalog. A never-pushed row is created remotely and adopts the returned
// urn; a modified row updates the remote object in place. Pushing a row
// that is already in sync is rejected as a no-op.
func (r *DefaultOrchestrator) Push(ctx context.Context, localID string) (metaobject.MetadataObject, error) {
	obj, err := r.push(ctx, localID)
	r.observe("push", err)
	return obj, err
}

func (r *DefaultOrchestrator) push(ctx context.Context, localID string) (metaobject.MetadataObject, error) {
	localStore, err := r.requireStore()
	if err != nil {
		return metaobject.MetadataObject{}, err
	}
	remoteCatalog, err := r.requireCatalog()
	if err != nil {
		return metaobject.MetadataObject{}, err
	}

	row, err := localStore.Get(ctx, localID)
	if err != nil {
		return metaobject.MetadataObject{}, err
	}
	if err := metaobject.ValidateDefinition(row.EntityType, row.Definition); err != nil {
		return metaobject.MetadataObject{}, err
	}

	definition, err := r.resolveOwnerRefs(ctx, row.Definition)
	if err != nil {
		return metaobject.MetadataObject{}, err
	}
	row.Definition = definition

	state, err := r.classifyForPush(ctx, remoteCatalog, row)
	if err != nil {
		return metaobject.MetadataObject{}, err
	}

	switch state {
	case metaobject.StateLocalOnly:
		var urn string
		err = r.withRetry(ctx, "create", func() error {
			var createErr error
			urn, createErr = remoteCatalog.Create(ctx, row.EntityType, row.Definition)
			return createErr
		})
		if err != nil {
			return metaobject.MetadataObject{}, err
		}
		row.URN = urn

	case metaobject.StateModified:
		err = r.withRetry(ctx, "update", func() error {
			return remoteCatalog.Update(ctx, row.URN, row.Definition)
		})
		if err != nil {
			return metaobject.MetadataObject{}, err
		}

	case metaobject.StateSynced:
		return metaobject.MetadataObject{}, validationError(
			fmt.Sprintf("object %q is already synced, nothing to push", row.Key()),
			nil,
		)

	default:
		return metaobject.MetadataObject{}, internalError(
			fmt.Sprintf("unexpected push classification %q", state),
			nil,
		)
	}

	fingerprint, err := metaobject.Fingerprint(row.EntityType, row.Definition)
	if err != nil {
		return metaobject.MetadataObject{}, err
	}
	row.Fingerprint = fingerprint

	saved, err := localStore.Save(ctx, row)
	if err != nil {
		return metaobject.MetadataObject{}, err
	}

	r.logger().Info("pushed object", "localId", saved.LocalID, "urn", saved.URN,
		"entityType", saved.EntityType)
	r.commitLocalChange(ctx, fmt.Sprintf("push %s %s", saved.EntityType, saved.Definition.Name))
	return saved, nil
}

// classifyForPush derives the row's sync state against the live remote
// object, mirroring the reconciler's bucketing for a single key.
func (r *DefaultOrchestrator) classifyForPush(
	ctx context.Context,
	remoteCatalog catalog.RemoteCatalog,
	row metaobject.MetadataObject,
) (metaobject.SyncState, error) {
	if row.URN == "" {
		return metaobject.StateLocalOnly, nil
	}

	var remoteObj metaobject.MetadataObject
	err := r.withRetry(ctx, "query", func() error {
		var queryErr error
		remoteObj, queryErr = remoteCatalog.Query(ctx, row.URN)
		return queryErr
	})
	if err != nil {
		if faults.IsCategory(err, faults.NotFoundError) {
			// The urn no longer resolves: same handling as a never-pushed
			// row.
			return metaobject.StateLocalOnly, nil
		}
		return "", err
	}

	// Computed from the definition, never read from the stored field: a
	// stale cached fingerprint must not make an edited row look synced.
	localFingerprint, err := metaobject.Fingerprint(row.EntityType, row.Definition)
	if err != nil {
		return "", err
	}
	remoteFingerprint, err := metaobject.Fingerprint(remoteObj.EntityType, remoteObj.Definition)
	if err != nil {
		return "", err
	}

	if localFingerprint == remoteFingerprint {
		return metaobject.StateSynced, nil
	}
	return metaobject.StateModified, nil
}

// resolveOwnerRefs translates owner selections into the urn-valued form the
// remote API expects. Selections already in urn form pass through; display
// names resolve through the connection's reference data.
func (r *DefaultOrchestrator) resolveOwnerRefs(
	ctx context.Context,
	def metaobject.Definition,
) (metaobject.Definition, error) {
	needsLookup := false
	for _, owner := range def.Owners {
		if !strings.HasPrefix(owner.Owner, "urn:") {
			needsLookup = true
		}
		if owner.OwnershipType != "" && !strings.HasPrefix(owner.OwnershipType, "urn:") {
			needsLookup = true
		}
	}
	if !needsLookup {
		return def, nil
	}
	if r == nil || r.References == nil {
		return metaobject.Definition{}, validationError(
			"owner references require reference data, but no cache is configured",
			nil,
		)
	}

	snapshot, err := r.References.GetOrRefresh(ctx, r.ConnectionID)
	if err != nil {
		return metaobject.Definition{}, err
	}

	resolved := def
	resolved.Owners = metaobject.CloneOwners(def.Owners)
	for idx, owner := range resolved.Owners {
		if !strings.HasPrefix(owner.Owner, "urn:") {
			urn, ok := lookupOwnerURN(snapshot.Data.Users, snapshot.Data.Groups, owner.Owner)
			if !ok {
				return metaobject.Definition{}, validationError(
					fmt.Sprintf("unknown owner %q", owner.Owner),
					nil,
				)
			}
			resolved.Owners[idx].Owner = urn
		}
		if owner.OwnershipType != "" && !strings.HasPrefix(owner.OwnershipType, "urn:") {
			urn, ok := lookupOwnershipTypeURN(snapshot.Data.OwnershipTypes, owner.OwnershipType)
			if !ok {
				return metaobject.Definition{}, validationError(
					fmt.Sprintf("unknown ownership type %q", owner.OwnershipType),
					nil,
				)
			}
			resolved.Owners[idx].OwnershipType = urn
		}
	}
	return resolved, nil
}
