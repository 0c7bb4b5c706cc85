package metaobject

type Value = any

type EntityType string

const (
	EntityTag          EntityType = "tag"
	EntityGlossaryNode EntityType = "glossaryNode"
	EntityGlossaryTerm EntityType = "glossaryTerm"
	EntityTest         EntityType = "test"
	EntityPolicy       EntityType = "policy"
)

func EntityTypes() []EntityType {
	return []EntityType{
		EntityTag,
		EntityGlossaryNode,
		EntityGlossaryTerm,
		EntityTest,
		EntityPolicy,
	}
}

func (t EntityType) Valid() bool {
	switch t {
	case EntityTag, EntityGlossaryNode, EntityGlossaryTerm, EntityTest, EntityPolicy:
		return true
	}
	return false
}

// Tree reports whether the entity type participates in the glossary
// hierarchy: nodes carry children, terms attach to an owning node.
func (t EntityType) Tree() bool {
	return t == EntityGlossaryNode || t == EntityGlossaryTerm
}

type SyncState string

const (
	StateSynced     SyncState = "synced"
	StateLocalOnly  SyncState = "local_only"
	StateRemoteOnly SyncState = "remote_only"
	StateModified   SyncState = "modified"
)

// OwnerRef points at a user or group plus the ownership-type catalog entry
// describing the relationship. Both sides are URNs.
type OwnerRef struct {
	Owner         string `yaml:"owner" json:"owner"`
	OwnershipType string `yaml:"ownership-type,omitempty" json:"ownershipType,omitempty"`
}

// Definition holds the typed common fields shared by every entity type plus
// an opaque payload carrying type-specific content. The payload is validated
// for shape (normalizable JSON value) but never interpreted here.
type Definition struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Owners      []OwnerRef `yaml:"owners,omitempty" json:"owners,omitempty"`
	ParentRef   string     `yaml:"parent-ref,omitempty" json:"parentRef,omitempty"`
	Payload     Value      `yaml:"payload,omitempty" json:"payload,omitempty"`
}

// MetadataObject is one metadata entity as seen from either side of the sync
// boundary. LocalID is set once the object has been saved locally; URN once
// it exists in the remote catalog. Version is the local store's optimistic
// concurrency counter and is meaningless for remote snapshots.
type MetadataObject struct {
	LocalID     string
	URN         string
	EntityType  EntityType
	Definition  Definition
	Fingerprint string
	Version     int64
}

// Key returns the identity used to bucket the object during reconciliation:
// the URN when present, else the local id.
func (o MetadataObject) Key() string {
	if o.URN != "" {
		return o.URN
	}
	return o.LocalID
}

func CloneOwners(src []OwnerRef) []OwnerRef {
	if src == nil {
		return nil
	}
	return append([]OwnerRef{}, src...)
}
