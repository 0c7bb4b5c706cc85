// Package hierarchy builds a merged glossary tree from partially-local,
// partially-remote node and term snapshots. A node visible only remotely can
// carry children that exist only locally; both render under one ancestry
// path.
package hierarchy

import (
	"fmt"
	"sort"

	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/metaobject"
)

// Node is one resolved tree entry. Children holds nested glossary nodes,
// Terms the glossary terms attached to this node. Err carries a contained
// cycle error: the node stays visible but its subtree is not descended.
type Node struct {
	Object   metaobject.MetadataObject
	Path     []string
	Children []*Node
	Terms    []*Node
	Err      error
}

// Tree is the resolved hierarchy. Roots holds nodes without a resolvable
// parent plus terms that reference no node. Excluded lists entries that were
// unreachable because every path to them revisits an ancestor; their
// failure is contained and never aborts resolution.
type Tree struct {
	Roots    []*Node
	Excluded []*Node
}

// Resolve merges local and remote snapshots into one tree. Objects are
// indexed by URN where available, else by local id; when both sides know
// the same URN the local row wins, since it carries the local identity.
func Resolve(local []metaobject.MetadataObject, remote []metaobject.MetadataObject) (Tree, error) {
	index := make(map[string]*Node)
	var order []string

	add := func(obj metaobject.MetadataObject, preferExisting bool) error {
		if !obj.EntityType.Tree() {
			return faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("entity type %q does not participate in the hierarchy", obj.EntityType),
				nil,
			)
		}
		key := obj.Key()
		if key == "" {
			return faults.NewTypedError(faults.ValidationError, "hierarchy object has no identity", nil)
		}
		if _, exists := index[key]; exists {
			if preferExisting {
				return nil
			}
			index[key].Object = obj
			return nil
		}
		index[key] = &Node{Object: obj}
		order = append(order, key)
		return nil
	}

	for _, obj := range local {
		if err := add(obj, false); err != nil {
			return Tree{}, err
		}
	}
	for _, obj := range remote {
		if err := add(obj, true); err != nil {
			return Tree{}, err
		}
	}

	var tree Tree
	childKeys := make(map[string][]string, len(index))
	for _, key := range order {
		node := index[key]
		parentKey := node.Object.Definition.ParentRef
		if parentKey == "" || index[parentKey] == nil {
			tree.Roots = append(tree.Roots, node)
			continue
		}
		childKeys[parentKey] = append(childKeys[parentKey], key)
	}

	visited := make(map[string]struct{}, len(index))
	for _, root := range tree.Roots {
		walk(root, nil, index, childKeys, visited)
	}

	// Anything unvisited sits on a cycle with no entry point from a root.
	for _, key := range order {
		if _, seen := visited[key]; seen {
			continue
		}
		node := index[key]
		node.Err = cycleError(key)
		markCycleVisited(key, index, childKeys, visited)
		tree.Excluded = append(tree.Excluded, node)
	}

	sortNodes(tree.Roots)
	sortNodes(tree.Excluded)
	return tree, nil
}

type frame struct {
	key  string
	path []string
}

// walk descends top-down from root, attaching children and terms. parentRef
// is single-valued, so every node reachable from a root has exactly one
// path and the descent cannot revisit a node: cycle members have no entry
// point from any root and are swept into Excluded by the caller.
func walk(
	root *Node,
	rootPath []string,
	index map[string]*Node,
	childKeys map[string][]string,
	visited map[string]struct{},
) {
	stack := []frame{{key: root.Object.Key(), path: rootPath}}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := index[current.key]
		visited[current.key] = struct{}{}
		node.Path = append(append([]string{}, current.path...), node.Object.Definition.Name)

		for _, childKey := range childKeys[current.key] {
			attach(node, index[childKey])
			stack = append(stack, frame{key: childKey, path: node.Path})
		}

		sortNodes(node.Children)
		sortNodes(node.Terms)
	}
}

func attach(parent *Node, child *Node) {
	if child.Object.EntityType == metaobject.EntityGlossaryTerm {
		parent.Terms = append(parent.Terms, child)
		return
	}
	parent.Children = append(parent.Children, child)
}

func markCycleVisited(start string, index map[string]*Node, childKeys map[string][]string, visited map[string]struct{}) {
	pending := []string{start}
	for len(pending) > 0 {
		key := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		pending = append(pending, childKeys[key]...)
	}
}

func cycleError(key string) error {
	return faults.NewTypedError(
		faults.CycleError,
		fmt.Sprintf("hierarchy revisits ancestor %q", key),
		nil,
	)
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		left, right := nodes[i].Object.Definition.Name, nodes[j].Object.Definition.Name
		if left != right {
			return left < right
		}
		return nodes[i].Object.Key() < nodes[j].Object.Key()
	})
}
