package metaobject

import (
	"encoding/json"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/opencontainers/go-digest"

	"github.com/acrylJonny/metasync/faults"
)

// CompareRules strips volatile attributes from a definition before hashing,
// so that server-assigned audit stamps never count as content drift.
// SuppressAttributes are dot-separated paths into the canonical definition
// map; JQExpression, when set, runs after suppression and its output is
// hashed instead.
type CompareRules struct {
	SuppressAttributes []string
	JQExpression       string
}

var defaultCompareRules = map[EntityType]CompareRules{
	EntityTag:          {SuppressAttributes: []string{"payload.lastModified"}},
	EntityGlossaryNode: {SuppressAttributes: []string{"payload.lastModified", "payload.created"}},
	EntityGlossaryTerm: {SuppressAttributes: []string{"payload.lastModified", "payload.created"}},
	EntityTest:         {SuppressAttributes: []string{"payload.lastModified", "payload.results"}},
	EntityPolicy:       {SuppressAttributes: []string{"payload.lastModified"}},
}

// Fingerprint hashes the canonical form of a definition with the default
// compare rules for its entity type. Equal definitions always produce equal
// fingerprints; the hash is a sha256 digest in OCI notation.
func Fingerprint(entityType EntityType, def Definition) (string, error) {
	rules := defaultCompareRules[entityType]
	return FingerprintWithRules(def, &rules)
}

func FingerprintWithRules(def Definition, rules *CompareRules) (string, error) {
	canonical, err := CanonicalDefinition(def)
	if err != nil {
		return "", err
	}

	prepared, err := applyCompareRules(canonical, rules)
	if err != nil {
		return "", err
	}

	encoded, err := json.Marshal(prepared)
	if err != nil {
		return "", faults.NewTypedError(faults.InternalError, "failed to encode canonical definition", err)
	}
	return digest.FromBytes(encoded).String(), nil
}

// CanonicalDefinition flattens a definition into a normalized string map.
// Empty optional fields are omitted so that a field never set and a field
// explicitly cleared hash identically.
func CanonicalDefinition(def Definition) (map[string]any, error) {
	canonical := map[string]any{
		"name": def.Name,
	}
	if def.Description != "" {
		canonical["description"] = def.Description
	}
	if def.ParentRef != "" {
		canonical["parentRef"] = def.ParentRef
	}
	if len(def.Owners) > 0 {
		owners := make([]any, len(def.Owners))
		for idx, owner := range def.Owners {
			entry := map[string]any{"owner": owner.Owner}
			if owner.OwnershipType != "" {
				entry["ownershipType"] = owner.OwnershipType
			}
			owners[idx] = entry
		}
		canonical["owners"] = owners
	}
	if def.Payload != nil {
		payload, err := Normalize(def.Payload)
		if err != nil {
			return nil, err
		}
		canonical["payload"] = payload
	}
	return canonical, nil
}

func applyCompareRules(canonical map[string]any, rules *CompareRules) (any, error) {
	if rules == nil {
		return canonical, nil
	}

	current := cloneCanonicalMap(canonical)
	for _, path := range rules.SuppressAttributes {
		deleteAttrPath(current, path)
	}

	expr := strings.TrimSpace(rules.JQExpression)
	if expr == "" {
		return current, nil
	}

	// gojq only accepts decoder-shaped values, so round-trip through JSON
	// before running the expression.
	encoded, err := json.Marshal(current)
	if err != nil {
		return nil, faults.NewTypedError(faults.InternalError, "failed to encode definition for jq", err)
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, faults.NewTypedError(faults.InternalError, "failed to decode definition for jq", err)
	}

	value, err := executeJQ(decoded, expr)
	if err != nil {
		return nil, faults.NewTypedError(faults.ValidationError, "compare jq expression failed", err)
	}
	return Normalize(value)
}

func executeJQ(input any, expression string) (any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, err
	}
	iter := query.Run(input)

	var results []any
	for {
		value, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := value.(error); ok {
			return nil, err
		}
		results = append(results, value)
	}

	if len(results) == 0 {
		return nil, nil
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

func deleteAttrPath(obj map[string]any, path string) {
	segments := splitAttrPath(path)
	if len(segments) == 0 {
		return
	}
	current := obj
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	delete(current, segments[len(segments)-1])
}

func splitAttrPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, ".") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

func cloneCanonicalMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for key, value := range src {
		if nested, ok := value.(map[string]any); ok {
			dst[key] = cloneCanonicalMap(nested)
			continue
		}
		dst[key] = value
	}
	return dst
}
