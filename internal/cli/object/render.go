package object

import (
	"fmt"
	"io"
	"sort"

	"github.com/acrylJonny/metasync/hierarchy"
	"github.com/acrylJonny/metasync/metaobject"
	"github.com/acrylJonny/metasync/reconciler"
	"github.com/acrylJonny/metasync/refcache"
)

func renderBucketsText(w io.Writer, entityType metaobject.EntityType, buckets reconciler.Buckets) error {
	if _, err := fmt.Fprintf(w, "%s: %d synced, %d modified, %d local-only, %d remote-only\n",
		entityType, len(buckets.Synced), len(buckets.Modified),
		len(buckets.LocalOnly), len(buckets.RemoteOnly)); err != nil {
		return err
	}

	lines := make([]string, 0, buckets.Total())
	for _, match := range buckets.Modified {
		lines = append(lines, formatStatusLine(metaobject.StateModified, match.Local))
	}
	for _, obj := range buckets.LocalOnly {
		lines = append(lines, formatStatusLine(metaobject.StateLocalOnly, obj))
	}
	for _, obj := range buckets.RemoteOnly {
		lines = append(lines, formatStatusLine(metaobject.StateRemoteOnly, obj))
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatStatusLine(state metaobject.SyncState, obj metaobject.MetadataObject) string {
	return fmt.Sprintf("  %-12s %s (%s)\n", state, obj.Key(), obj.Definition.Name)
}

func renderObjectText(w io.Writer, obj metaobject.MetadataObject) error {
	_, err := fmt.Fprintf(w, "%s %s local-id=%s name=%q\n",
		obj.EntityType, obj.URN, obj.LocalID, obj.Definition.Name)
	return err
}

func renderTreeText(w io.Writer, tree hierarchy.Tree) error {
	for _, root := range tree.Roots {
		if err := renderTreeNode(w, root, 0); err != nil {
			return err
		}
	}
	if len(tree.Excluded) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, "excluded (unreachable):\n"); err != nil {
		return err
	}
	for _, node := range tree.Excluded {
		if _, err := fmt.Fprintf(w, "  %s: %v\n", node.Object.Key(), node.Err); err != nil {
			return err
		}
	}
	return nil
}

func renderTreeNode(w io.Writer, node *hierarchy.Node, depth int) error {
	indent := ""
	for idx := 0; idx < depth; idx++ {
		indent += "  "
	}

	marker := "+"
	if node.Object.EntityType == metaobject.EntityGlossaryTerm {
		marker = "-"
	}
	if _, err := fmt.Fprintf(w, "%s%s %s (%s)\n",
		indent, marker, node.Object.Definition.Name, node.Object.Key()); err != nil {
		return err
	}

	for _, term := range node.Terms {
		if err := renderTreeNode(w, term, depth+1); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := renderTreeNode(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func renderReferenceDataText(w io.Writer, snapshot refcache.Snapshot) error {
	if _, err := fmt.Fprintf(w, "reference data for connection %q (fetched %s)\n",
		snapshot.ConnectionID, snapshot.FetchedAt.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "users:\n"); err != nil {
		return err
	}
	for _, user := range snapshot.Data.Users {
		if _, err := fmt.Fprintf(w, "  %s (%s)\n", user.DisplayName, user.URN); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "groups:\n"); err != nil {
		return err
	}
	for _, group := range snapshot.Data.Groups {
		if _, err := fmt.Fprintf(w, "  %s (%s)\n", group.DisplayName, group.URN); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "ownership types:\n"); err != nil {
		return err
	}
	for _, ownershipType := range snapshot.Data.OwnershipTypes {
		if _, err := fmt.Fprintf(w, "  %s (%s)\n", ownershipType.DisplayName, ownershipType.URN); err != nil {
			return err
		}
	}
	return nil
}
