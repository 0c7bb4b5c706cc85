package reconciler

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/acrylJonny/metasync/metaobject"
)

func localTag(localID, urn, name string) metaobject.MetadataObject {
	obj := metaobject.MetadataObject{
		LocalID:    localID,
		URN:        urn,
		EntityType: metaobject.EntityTag,
		Definition: metaobject.Definition{Name: name},
	}
	fingerprint, err := metaobject.Fingerprint(obj.EntityType, obj.Definition)
	if err != nil {
		panic(err)
	}
	obj.Fingerprint = fingerprint
	return obj
}

func remoteTag(urn, name string) metaobject.MetadataObject {
	return metaobject.MetadataObject{
		URN:        urn,
		EntityType: metaobject.EntityTag,
		Definition: metaobject.Definition{Name: name},
	}
}

func TestReconcilePartitionsUnion(t *testing.T) {
	t.Parallel()

	local := []metaobject.MetadataObject{
		localTag("1", "", "never-pushed"),
		localTag("2", "urn:li:tag:synced", "synced"),
		localTag("3", "urn:li:tag:edited", "edited-locally"),
		localTag("4", "urn:li:tag:gone", "remote-deleted"),
	}
	remote := []metaobject.MetadataObject{
		remoteTag("urn:li:tag:synced", "synced"),
		remoteTag("urn:li:tag:edited", "edited-remotely"),
		remoteTag("urn:li:tag:external", "created-outside"),
	}

	buckets, err := Reconcile(local, remote)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	wantStates := map[string]metaobject.SyncState{
		"1":                   metaobject.StateLocalOnly,
		"urn:li:tag:synced":   metaobject.StateSynced,
		"urn:li:tag:edited":   metaobject.StateModified,
		"urn:li:tag:gone":     metaobject.StateLocalOnly,
		"urn:li:tag:external": metaobject.StateRemoteOnly,
	}
	if diff := cmp.Diff(wantStates, buckets.States()); diff != "" {
		t.Fatalf("unexpected classification (-want +got):\n%s", diff)
	}

	distinctKeys := len(wantStates)
	if buckets.Total() != distinctKeys {
		t.Fatalf("buckets hold %d entries, want %d distinct keys", buckets.Total(), distinctKeys)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	local := []metaobject.MetadataObject{
		localTag("1", "", "draft"),
		localTag("2", "urn:li:tag:a", "a"),
	}
	remote := []metaobject.MetadataObject{
		remoteTag("urn:li:tag:a", "a"),
		remoteTag("urn:li:tag:b", "b"),
	}

	first, err := Reconcile(local, remote)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	second, err := Reconcile(local, remote)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("re-running reconcile changed the result (-first +second):\n%s", diff)
	}
}

func TestReconcileMatchesByURNNotName(t *testing.T) {
	t.Parallel()

	// Same name on both sides but no urn linkage: names never join.
	local := []metaobject.MetadataObject{localTag("1", "", "pii")}
	remote := []metaobject.MetadataObject{remoteTag("urn:li:tag:pii", "pii")}

	buckets, err := Reconcile(local, remote)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(buckets.LocalOnly) != 1 || len(buckets.RemoteOnly) != 1 {
		t.Fatalf("expected name collision to stay split, got %+v", buckets)
	}
	if len(buckets.Synced) != 0 || len(buckets.Modified) != 0 {
		t.Fatalf("expected no matches, got %+v", buckets)
	}
}

func TestReconcileStaleLocalFingerprintReclassifies(t *testing.T) {
	t.Parallel()

	// The row's definition was edited while the stored fingerprint still
	// hashes the original. The stored field is only a cache: the edit must
	// classify modified, not synced.
	edited := localTag("1", "urn:li:tag:a", "a")
	edited.Definition.Description = "edited"

	buckets, err := Reconcile(
		[]metaobject.MetadataObject{edited},
		[]metaobject.MetadataObject{remoteTag("urn:li:tag:a", "a")},
	)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(buckets.Modified) != 1 || len(buckets.Synced) != 0 {
		t.Fatalf("expected modified classification for edited row, got %+v", buckets)
	}
}

func TestReconcileStaleFingerprintMatchingRemoteStaysSynced(t *testing.T) {
	t.Parallel()

	// The inverse case: definitions match but the stored fingerprint is
	// garbage. Classification still follows the definitions.
	row := localTag("1", "urn:li:tag:a", "a")
	row.Fingerprint = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

	buckets, err := Reconcile(
		[]metaobject.MetadataObject{row},
		[]metaobject.MetadataObject{remoteTag("urn:li:tag:a", "a")},
	)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(buckets.Synced) != 1 {
		t.Fatalf("expected synced classification, got %+v", buckets)
	}
}

func TestReconcileMissingLocalFingerprintIsRecomputed(t *testing.T) {
	t.Parallel()

	row := localTag("1", "urn:li:tag:a", "a")
	row.Fingerprint = ""

	buckets, err := Reconcile(
		[]metaobject.MetadataObject{row},
		[]metaobject.MetadataObject{remoteTag("urn:li:tag:a", "a")},
	)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(buckets.Synced) != 1 {
		t.Fatalf("expected synced classification, got %+v", buckets)
	}
}

func TestReconcileRejectsDuplicateURNs(t *testing.T) {
	t.Parallel()

	if _, err := Reconcile(nil, []metaobject.MetadataObject{
		remoteTag("urn:li:tag:a", "a"),
		remoteTag("urn:li:tag:a", "a"),
	}); err == nil {
		t.Fatalf("expected duplicate remote urn to be rejected")
	}

	if _, err := Reconcile([]metaobject.MetadataObject{
		localTag("1", "urn:li:tag:a", "a"),
		localTag("2", "urn:li:tag:a", "a"),
	}, []metaobject.MetadataObject{remoteTag("urn:li:tag:a", "a")}); err == nil {
		t.Fatalf("expected duplicate local urn to be rejected")
	}
}

func TestReconcileEmptySnapshots(t *testing.T) {
	t.Parallel()

	buckets, err := Reconcile(nil, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if buckets.Total() != 0 {
		t.Fatalf("expected empty buckets, got %+v", buckets)
	}
}
