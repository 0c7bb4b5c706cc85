package orchestrator

import (
	"context"
	"fmt"

	"github.com/acrylJonny/metasync/metaobject"
)

// Pull materializes a remote object as a new local row, adopting the remote
// definition and fingerprint so the pair starts out synced. Pulling a urn
// that a local row already references is a conflict.
func (r *DefaultOrchestrator) Pull(ctx context.Context, urn string) (metaobject.MetadataObject, error) {
	obj, err := r.pull(ctx, urn)
	r.observe("pull", err)
	return obj, err
}

func (r *DefaultOrchestrator) pull(ctx context.Context, urn string) (metaobject.MetadataObject, error) {
	if urn == "" {
		return metaobject.MetadataObject{}, validationError("pull requires a urn", nil)
	}
	localStore, err := r.requireStore()
	if err != nil {
		return metaobject.MetadataObject{}, err
	}
	remoteCatalog, err := r.requireCatalog()
	if err != nil {
		return metaobject.MetadataObject{}, err
	}

	if _, exists, err := localStore.FindByURN(ctx, urn); err != nil {
		return metaobject.MetadataObject{}, err
	} else if exists {
		return metaobject.MetadataObject{}, conflictError(
			fmt.Sprintf("a local row already references %q", urn),
			nil,
		)
	}

	var remoteObj metaobject.MetadataObject
	err = r.withRetry(ctx, "query", func() error {
		var queryErr error
		remoteObj, queryErr = remoteCatalog.Query(ctx, urn)
		return queryErr
	})
	if err != nil {
		return metaobject.MetadataObject{}, err
	}

	fingerprint, err := metaobject.Fingerprint(remoteObj.EntityType, remoteObj.Definition)
	if err != nil {
		return metaobject.MetadataObject{}, err
	}

	row := metaobject.MetadataObject{
		URN:         urn,
		EntityType:  remoteObj.EntityType,
		Definition:  remoteObj.Definition,
		Fingerprint: fingerprint,
	}
	saved, err := localStore.Save(ctx, row)
	if err != nil {
		return metaobject.MetadataObject{}, err
	}

	r.logger().Info("pulled object", "localId", saved.LocalID, "urn", saved.URN,
		"entityType", saved.EntityType)
	r.commitLocalChange(ctx, fmt.Sprintf("pull %s %s", saved.EntityType, saved.Definition.Name))
	return saved, nil
}
