// Package catalog defines the boundary to the remote metadata catalog. The
// core consumes this interface only; concrete transports live under
// internal/providers/catalog.
package catalog

import (
	"context"

	"github.com/acrylJonny/metasync/metaobject"
)

// ReferenceEntry is one user or group known to the remote catalog.
type ReferenceEntry struct {
	URN         string
	DisplayName string
}

// OwnershipType is one entry of the catalog's ownership-type catalog.
type OwnershipType struct {
	URN         string
	DisplayName string
}

// ReferenceData is the cross-cutting lookup set used to resolve owner
// references during display formatting and mutation payload construction.
type ReferenceData struct {
	Users          []ReferenceEntry
	Groups         []ReferenceEntry
	OwnershipTypes []OwnershipType
}

// RemoteCatalog is a connection-scoped client against one remote catalog
// endpoint. Calls may fail with ConnectivityError, AuthError or
// RateLimitError faults; Query and Delete report missing objects as
// NotFoundError.
type RemoteCatalog interface {
	Query(ctx context.Context, urn string) (metaobject.MetadataObject, error)
	Create(ctx context.Context, entityType metaobject.EntityType, def metaobject.Definition) (string, error)
	Update(ctx context.Context, urn string, def metaobject.Definition) error
	Delete(ctx context.Context, urn string) error
	ListByType(ctx context.Context, entityType metaobject.EntityType) ([]metaobject.MetadataObject, error)
	FetchReferenceData(ctx context.Context) (ReferenceData, error)
}

// AccessChecker is an optional capability used by CLI inspection commands.
type AccessChecker interface {
	CheckAccess(ctx context.Context) error
}

func (d ReferenceData) Clone() ReferenceData {
	return ReferenceData{
		Users:          append([]ReferenceEntry{}, d.Users...),
		Groups:         append([]ReferenceEntry{}, d.Groups...),
		OwnershipTypes: append([]OwnershipType{}, d.OwnershipTypes...),
	}
}

// ResolveOwnerName maps an owner URN to its display name, falling back to
// the raw URN when the reference data does not know it.
func (d ReferenceData) ResolveOwnerName(urn string) string {
	for _, user := range d.Users {
		if user.URN == urn {
			return user.DisplayName
		}
	}
	for _, group := range d.Groups {
		if group.URN == urn {
			return group.DisplayName
		}
	}
	return urn
}

// ResolveOwnershipTypeName maps an ownership-type URN to its display name.
func (d ReferenceData) ResolveOwnershipTypeName(urn string) string {
	for _, ownershipType := range d.OwnershipTypes {
		if ownershipType.URN == urn {
			return ownershipType.DisplayName
		}
	}
	return urn
}
