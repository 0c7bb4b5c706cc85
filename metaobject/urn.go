package metaobject

import (
	"fmt"
	"strings"

	"github.com/acrylJonny/metasync/faults"
)

const urnPrefix = "urn:li:"

var urnEntityKeys = map[EntityType]string{
	EntityTag:          "tag",
	EntityGlossaryNode: "glossaryNode",
	EntityGlossaryTerm: "glossaryTerm",
	EntityTest:         "test",
	EntityPolicy:       "dataHubPolicy",
}

// NewURN builds the catalog identifier for an entity, e.g.
// "urn:li:tag:tag1". The id segment is catalog-assigned for most types and
// name-derived for tags.
func NewURN(entityType EntityType, id string) (string, error) {
	key, ok := urnEntityKeys[entityType]
	if !ok {
		return "", faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("unsupported entity type %q", entityType),
			nil,
		)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", faults.NewTypedError(faults.ValidationError, "urn id segment must not be empty", nil)
	}
	return urnPrefix + key + ":" + id, nil
}

// ParseURN splits a catalog identifier into entity type and id segment.
func ParseURN(urn string) (EntityType, string, error) {
	rest, ok := strings.CutPrefix(urn, urnPrefix)
	if !ok {
		return "", "", faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("malformed urn %q", urn),
			nil,
		)
	}
	key, id, ok := strings.Cut(rest, ":")
	if !ok || id == "" {
		return "", "", faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("malformed urn %q", urn),
			nil,
		)
	}
	for entityType, entityKey := range urnEntityKeys {
		if entityKey == key {
			return entityType, id, nil
		}
	}
	return "", "", faults.NewTypedError(
		faults.ValidationError,
		fmt.Sprintf("unsupported urn entity key %q", key),
		nil,
	)
}
