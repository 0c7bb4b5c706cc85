// Package reconciler classifies the union of local and remote metadata
// objects into sync-state buckets. Classification is pure: it never touches
// the local store or the remote catalog and is idempotent over unchanged
// snapshots.
package reconciler

import (
	"fmt"

	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/metaobject"
)

// Match pairs a local row with the remote object its URN resolves to.
type Match struct {
	Local  metaobject.MetadataObject
	Remote metaobject.MetadataObject
}

// Buckets is a disjoint partition of every distinct object key in the input
// snapshots. Synced and Modified hold matched pairs; LocalOnly holds local
// rows without a resolving URN; RemoteOnly holds remote objects no local row
// references.
type Buckets struct {
	Synced     []Match
	LocalOnly  []metaobject.MetadataObject
	RemoteOnly []metaobject.MetadataObject
	Modified   []Match
}

func (b Buckets) Total() int {
	return len(b.Synced) + len(b.LocalOnly) + len(b.RemoteOnly) + len(b.Modified)
}

// States flattens the buckets into a key -> sync state view.
func (b Buckets) States() map[string]metaobject.SyncState {
	states := make(map[string]metaobject.SyncState, b.Total())
	for _, match := range b.Synced {
		states[match.Local.Key()] = metaobject.StateSynced
	}
	for _, obj := range b.LocalOnly {
		states[obj.Key()] = metaobject.StateLocalOnly
	}
	for _, obj := range b.RemoteOnly {
		states[obj.Key()] = metaobject.StateRemoteOnly
	}
	for _, match := range b.Modified {
		states[match.Local.Key()] = metaobject.StateModified
	}
	return states
}

// Reconcile partitions local rows and remote objects by URN. A local row
// whose URN is absent from the remote snapshot is treated identically to a
// never-pushed row. Names are never used as a join key. Cost is O(n+m).
func Reconcile(local []metaobject.MetadataObject, remote []metaobject.MetadataObject) (Buckets, error) {
	remoteByURN := make(map[string]metaobject.MetadataObject, len(remote))
	for _, remoteObj := range remote {
		if remoteObj.URN == "" {
			return Buckets{}, faults.NewTypedError(
				faults.ValidationError,
				"remote snapshot contains an object without a urn",
				nil,
			)
		}
		if _, exists := remoteByURN[remoteObj.URN]; exists {
			return Buckets{}, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("remote snapshot contains duplicate urn %q", remoteObj.URN),
				nil,
			)
		}
		remoteByURN[remoteObj.URN] = remoteObj
	}

	var buckets Buckets
	matchedURNs := make(map[string]struct{}, len(local))

	for _, localObj := range local {
		if localObj.URN == "" {
			buckets.LocalOnly = append(buckets.LocalOnly, localObj)
			continue
		}
		if _, seen := matchedURNs[localObj.URN]; seen {
			return Buckets{}, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("local snapshot contains duplicate urn %q", localObj.URN),
				nil,
			)
		}

		remoteObj, resolves := remoteByURN[localObj.URN]
		if !resolves {
			buckets.LocalOnly = append(buckets.LocalOnly, localObj)
			continue
		}
		matchedURNs[localObj.URN] = struct{}{}

		// Fingerprints are always recomputed from the definitions; the
		// stored Fingerprint field is an on-disk cache and a stale cache
		// must never hide a local edit.
		localFingerprint, err := metaobject.Fingerprint(localObj.EntityType, localObj.Definition)
		if err != nil {
			return Buckets{}, err
		}
		remoteFingerprint, err := metaobject.Fingerprint(remoteObj.EntityType, remoteObj.Definition)
		if err != nil {
			return Buckets{}, err
		}

		match := Match{Local: localObj, Remote: remoteObj}
		if localFingerprint == remoteFingerprint {
			buckets.Synced = append(buckets.Synced, match)
		} else {
			buckets.Modified = append(buckets.Modified, match)
		}
	}

	for _, remoteObj := range remote {
		if _, matched := matchedURNs[remoteObj.URN]; matched {
			continue
		}
		buckets.RemoteOnly = append(buckets.RemoteOnly, remoteObj)
	}

	return buckets, nil
}
