package hierarchy

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/metaobject"
)

func node(localID, urn, name, parentRef string) metaobject.MetadataObject {
	return metaobject.MetadataObject{
		LocalID:    localID,
		URN:        urn,
		EntityType: metaobject.EntityGlossaryNode,
		Definition: metaobject.Definition{Name: name, ParentRef: parentRef},
	}
}

func term(localID, urn, name, parentRef string) metaobject.MetadataObject {
	obj := node(localID, urn, name, parentRef)
	obj.EntityType = metaobject.EntityGlossaryTerm
	return obj
}

func TestResolveMergesLocalAndRemoteBranches(t *testing.T) {
	t.Parallel()

	// A node known only remotely carries two terms that exist only locally
	// and reference it by urn.
	local := []metaobject.MetadataObject{
		term("t1", "", "arr", "urn:li:glossaryNode:finance"),
		term("t2", "", "churn", "urn:li:glossaryNode:finance"),
	}
	remote := []metaobject.MetadataObject{
		node("", "urn:li:glossaryNode:finance", "Finance", ""),
	}

	tree, err := Resolve(local, remote)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(tree.Roots) != 1 {
		t.Fatalf("expected one root, got %d", len(tree.Roots))
	}

	root := tree.Roots[0]
	if root.Object.URN != "urn:li:glossaryNode:finance" {
		t.Fatalf("unexpected root %+v", root.Object)
	}
	if len(root.Terms) != 2 {
		t.Fatalf("expected both local terms under the remote node, got %d", len(root.Terms))
	}
	if diff := cmp.Diff([]string{"Finance", "arr"}, root.Terms[0].Path); diff != "" {
		t.Fatalf("unexpected term ancestry (-want +got):\n%s", diff)
	}
}

func TestResolvePrefersLocalRowForSharedURN(t *testing.T) {
	t.Parallel()

	local := []metaobject.MetadataObject{
		node("n1", "urn:li:glossaryNode:ops", "Ops (local)", ""),
	}
	remote := []metaobject.MetadataObject{
		node("", "urn:li:glossaryNode:ops", "Ops", ""),
	}

	tree, err := Resolve(local, remote)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(tree.Roots) != 1 {
		t.Fatalf("expected merged single root, got %d", len(tree.Roots))
	}
	if tree.Roots[0].Object.LocalID != "n1" {
		t.Fatalf("expected local row to win the merge, got %+v", tree.Roots[0].Object)
	}
}

func TestResolveNestedAncestryAcrossSources(t *testing.T) {
	t.Parallel()

	local := []metaobject.MetadataObject{
		node("n2", "", "Revenue", "urn:li:glossaryNode:finance"),
	}
	remote := []metaobject.MetadataObject{
		node("", "urn:li:glossaryNode:finance", "Finance", "urn:li:glossaryNode:corp"),
		node("", "urn:li:glossaryNode:corp", "Corp", ""),
	}

	tree, err := Resolve(local, remote)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(tree.Roots) != 1 {
		t.Fatalf("expected single root, got %d", len(tree.Roots))
	}

	corp := tree.Roots[0]
	if len(corp.Children) != 1 || len(corp.Children[0].Children) != 1 {
		t.Fatalf("expected Corp > Finance > Revenue chain")
	}
	revenue := corp.Children[0].Children[0]
	if diff := cmp.Diff([]string{"Corp", "Finance", "Revenue"}, revenue.Path); diff != "" {
		t.Fatalf("unexpected ancestry (-want +got):\n%s", diff)
	}
}

func TestResolveContainsCycles(t *testing.T) {
	t.Parallel()

	// a -> b -> a forms a cycle disconnected from any root; c stays intact.
	local := []metaobject.MetadataObject{
		node("a", "urn:li:glossaryNode:a", "A", "urn:li:glossaryNode:b"),
		node("b", "urn:li:glossaryNode:b", "B", "urn:li:glossaryNode:a"),
		node("c", "urn:li:glossaryNode:c", "C", ""),
	}

	tree, err := Resolve(local, nil)
	if err != nil {
		t.Fatalf("Resolve must not fail globally on a cycle: %v", err)
	}
	if len(tree.Roots) != 1 || tree.Roots[0].Object.LocalID != "c" {
		t.Fatalf("expected untouched root C, got %+v", tree.Roots)
	}
	if len(tree.Excluded) == 0 {
		t.Fatalf("expected cycle members to be excluded")
	}
	for _, excluded := range tree.Excluded {
		if !faults.IsCategory(excluded.Err, faults.CycleError) {
			t.Fatalf("expected contained cycle error, got %v", excluded.Err)
		}
	}
}

func TestResolveSelfParentIsExcluded(t *testing.T) {
	t.Parallel()

	// A node parented to itself is its own cycle: it never reaches the
	// root walk and lands in Excluded. A healthy term hanging off the
	// loop is unreachable too and is contained without an error of its own.
	local := []metaobject.MetadataObject{
		node("a", "urn:li:glossaryNode:a", "A", "urn:li:glossaryNode:a"),
		term("t1", "urn:li:glossaryTerm:t1", "Stranded", "urn:li:glossaryNode:a"),
		node("c", "urn:li:glossaryNode:c", "C", ""),
	}

	tree, err := Resolve(local, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(tree.Roots) != 1 || tree.Roots[0].Object.LocalID != "c" {
		t.Fatalf("self-parented node must not surface as a root, got %+v", tree.Roots)
	}
	if len(tree.Excluded) != 1 {
		t.Fatalf("expected one excluded entry for the loop, got %+v", tree.Excluded)
	}
	if !faults.IsCategory(tree.Excluded[0].Err, faults.CycleError) {
		t.Fatalf("expected contained cycle error, got %v", tree.Excluded[0].Err)
	}
}

func TestResolveUnknownParentBecomesRoot(t *testing.T) {
	t.Parallel()

	local := []metaobject.MetadataObject{
		term("t1", "", "orphan", "urn:li:glossaryNode:missing"),
	}

	tree, err := Resolve(local, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(tree.Roots) != 1 || tree.Roots[0].Object.LocalID != "t1" {
		t.Fatalf("expected orphan term promoted to root, got %+v", tree.Roots)
	}
}

func TestResolveRejectsFlatEntityTypes(t *testing.T) {
	t.Parallel()

	tag := metaobject.MetadataObject{
		LocalID:    "1",
		EntityType: metaobject.EntityTag,
		Definition: metaobject.Definition{Name: "pii"},
	}
	if _, err := Resolve([]metaobject.MetadataObject{tag}, nil); err == nil {
		t.Fatalf("expected flat entity type to be rejected")
	}
}
