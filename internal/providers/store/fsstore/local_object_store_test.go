package fsstore

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/metaobject"
)

func newTestStore(t *testing.T) *LocalObjectStore {
	t.Helper()
	s := NewLocalObjectStore(t.TempDir())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func TestSaveAssignsLocalIDAndRoundTrips(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	obj := metaobject.MetadataObject{
		EntityType: metaobject.EntityTag,
		Definition: metaobject.Definition{
			Name:        "pii",
			Description: "personally identifiable",
			Owners:      []metaobject.OwnerRef{{Owner: "urn:li:corpuser:jdoe"}},
			Payload:     map[string]any{"colorHex": "#FF0000", "weight": int64(2)},
		},
		Fingerprint: "sha256:abc",
	}

	saved, err := s.Save(context.Background(), obj)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.LocalID == "" {
		t.Fatalf("expected a local id to be assigned")
	}
	if saved.Version != 1 {
		t.Fatalf("expected version 1 after first save, got %d", saved.Version)
	}

	loaded, err := s.Get(context.Background(), saved.LocalID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(saved, loaded); diff != "" {
		t.Fatalf("row did not round-trip (-saved +loaded):\n%s", diff)
	}
}

func TestSaveRefreshesStaleFingerprint(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	saved, err := s.Save(context.Background(), metaobject.MetadataObject{
		EntityType: metaobject.EntityTag,
		Definition: metaobject.Definition{Name: "pii"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// An edit that does not touch the fingerprint field: the store must
	// refresh the cached hash so the edit stays visible to reconciliation.
	saved.Definition.Description = "edited"
	edited, err := s.Save(context.Background(), saved)
	if err != nil {
		t.Fatalf("save edit: %v", err)
	}

	want, err := metaobject.Fingerprint(edited.EntityType, edited.Definition)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if edited.Fingerprint != want {
		t.Fatalf("stored fingerprint %q does not hash the current definition", edited.Fingerprint)
	}
	if edited.Fingerprint == saved.Fingerprint {
		t.Fatalf("fingerprint did not change with the definition")
	}

	loaded, err := s.Get(context.Background(), edited.LocalID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.Fingerprint != want {
		t.Fatalf("loaded fingerprint %q does not hash the current definition", loaded.Fingerprint)
	}
}

func TestConcurrentSavesWithSameVersionConflict(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	saved, err := s.Save(context.Background(), metaobject.MetadataObject{
		EntityType: metaobject.EntityTag,
		Definition: metaobject.Definition{Name: "pii"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Two writers race with the same loaded version: exactly one wins, the
	// other must see a conflict instead of silently overwriting.
	for round := 0; round < 50; round++ {
		current, err := s.Get(context.Background(), saved.LocalID)
		if err != nil {
			t.Fatalf("round %d: Get: %v", round, err)
		}

		first := current
		first.Definition.Description = "first writer"
		second := current
		second.Definition.Description = "second writer"

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for _, obj := range []metaobject.MetadataObject{first, second} {
			wg.Add(1)
			go func(obj metaobject.MetadataObject) {
				defer wg.Done()
				_, saveErr := s.Save(context.Background(), obj)
				errs <- saveErr
			}(obj)
		}
		wg.Wait()
		close(errs)

		var conflicts, successes int
		for saveErr := range errs {
			switch {
			case saveErr == nil:
				successes++
			case faults.IsCategory(saveErr, faults.ConflictError):
				conflicts++
			default:
				t.Fatalf("round %d: unexpected error %v", round, saveErr)
			}
		}
		if successes != 1 || conflicts != 1 {
			t.Fatalf("round %d: %d saves succeeded and %d conflicted; a stale version must conflict",
				round, successes, conflicts)
		}
	}
}

func TestSaveRejectsStaleVersion(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	saved, err := s.Save(context.Background(), metaobject.MetadataObject{
		EntityType: metaobject.EntityTag,
		Definition: metaobject.Definition{Name: "pii"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	saved.Definition.Description = "first writer"
	if _, err := s.Save(context.Background(), saved); err != nil {
		t.Fatalf("second save: %v", err)
	}

	// A writer still holding the version-1 row must be rejected.
	saved.Definition.Description = "second writer"
	if _, err := s.Save(context.Background(), saved); !faults.IsCategory(err, faults.ConflictError) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestSaveNormalizesPayload(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	saved, err := s.Save(context.Background(), metaobject.MetadataObject{
		EntityType: metaobject.EntityTest,
		Definition: metaobject.Definition{
			Name:    "freshness",
			Payload: map[string]any{"threshold": 7},
		},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Get(context.Background(), saved.LocalID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	payload := loaded.Definition.Payload.(map[string]any)
	if _, ok := payload["threshold"].(int64); !ok {
		t.Fatalf("expected normalized int64 threshold, got %T", payload["threshold"])
	}
}

func TestListIsScopedToEntityType(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	for _, seed := range []struct {
		entityType metaobject.EntityType
		name       string
	}{
		{metaobject.EntityTag, "b"},
		{metaobject.EntityTag, "a"},
		{metaobject.EntityGlossaryTerm, "revenue"},
	} {
		if _, err := s.Save(context.Background(), metaobject.MetadataObject{
			EntityType: seed.entityType,
			Definition: metaobject.Definition{Name: seed.name},
		}); err != nil {
			t.Fatalf("seed save: %v", err)
		}
	}

	tags, err := s.List(context.Background(), metaobject.EntityTag)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tags) != 2 || tags[0].Definition.Name != "a" || tags[1].Definition.Name != "b" {
		t.Fatalf("expected sorted tag rows, got %+v", tags)
	}

	policies, err := s.List(context.Background(), metaobject.EntityPolicy)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(policies) != 0 {
		t.Fatalf("expected no policy rows, got %d", len(policies))
	}
}

func TestFindByURN(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	saved, err := s.Save(context.Background(), metaobject.MetadataObject{
		URN:        "urn:li:tag:pii",
		EntityType: metaobject.EntityTag,
		Definition: metaobject.Definition{Name: "pii"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	row, found, err := s.FindByURN(context.Background(), "urn:li:tag:pii")
	if err != nil || !found {
		t.Fatalf("FindByURN: found=%v err=%v", found, err)
	}
	if row.LocalID != saved.LocalID {
		t.Fatalf("expected row %q, got %q", saved.LocalID, row.LocalID)
	}

	if _, found, err := s.FindByURN(context.Background(), "urn:li:tag:other"); err != nil || found {
		t.Fatalf("expected no match, found=%v err=%v", found, err)
	}
	if _, found, err := s.FindByURN(context.Background(), ""); err != nil || found {
		t.Fatalf("an empty urn must never match, found=%v err=%v", found, err)
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	saved, err := s.Save(context.Background(), metaobject.MetadataObject{
		EntityType: metaobject.EntityTag,
		Definition: metaobject.Definition{Name: "pii"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Delete(context.Background(), saved.LocalID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(context.Background(), saved.LocalID); !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
	if err := s.Delete(context.Background(), saved.LocalID); !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected not-found on second delete, got %v", err)
	}
}
