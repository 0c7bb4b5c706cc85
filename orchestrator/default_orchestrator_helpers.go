package orchestrator

import (
	"context"

	"github.com/acrylJonny/metasync/catalog"
)

func lookupOwnerURN(users []catalog.ReferenceEntry, groups []catalog.ReferenceEntry, name string) (string, bool) {
	for _, user := range users {
		if user.DisplayName == name {
			return user.URN, true
		}
	}
	for _, group := range groups {
		if group.DisplayName == name {
			return group.URN, true
		}
	}
	return "", false
}

func lookupOwnershipTypeURN(ownershipTypes []catalog.OwnershipType, name string) (string, bool) {
	for _, ownershipType := range ownershipTypes {
		if ownershipType.DisplayName == name {
			return ownershipType.URN, true
		}
	}
	return "", false
}

// commitLocalChange mirrors a completed local mutation into the configured
// change sync backend. Sync failures are logged, never surfaced: the local
// mutation already happened and must not be reported as failed.
func (r *DefaultOrchestrator) commitLocalChange(ctx context.Context, message string) {
	if r == nil || r.ChangeSync == nil {
		return
	}
	if err := r.ChangeSync.Commit(ctx, message); err != nil {
		r.logger().Error(err, "failed to record local change", "message", message)
	}
}
