package metaobject

import (
	"fmt"
	"strings"

	"github.com/acrylJonny/metasync/faults"
)

// ValidateDefinition rejects malformed or incomplete definitions before any
// remote call is attempted. Validation never mutates the definition.
func ValidateDefinition(entityType EntityType, def Definition) error {
	if !entityType.Valid() {
		return validationError(fmt.Sprintf("unsupported entity type %q", entityType))
	}
	if strings.TrimSpace(def.Name) == "" {
		return validationError("definition name must not be empty")
	}

	if def.ParentRef != "" {
		if !entityType.Tree() {
			return validationError(fmt.Sprintf("entity type %q does not support a parent reference", entityType))
		}
		parentType, _, err := ParseURN(def.ParentRef)
		if err != nil {
			return err
		}
		if parentType != EntityGlossaryNode {
			return validationError(fmt.Sprintf("parent reference %q must point at a glossary node", def.ParentRef))
		}
	}

	for idx, owner := range def.Owners {
		if strings.TrimSpace(owner.Owner) == "" {
			return validationError(fmt.Sprintf("owner reference %d has an empty owner", idx))
		}
	}

	if def.Payload != nil {
		if _, err := Normalize(def.Payload); err != nil {
			return err
		}
	}
	return nil
}

func validationError(message string) error {
	return faults.NewTypedError(faults.ValidationError, message, nil)
}
