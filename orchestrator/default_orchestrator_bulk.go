package orchestrator

import "context"

// BulkPush applies Push independently per item. Items are processed
// sequentially; one failure never aborts or rolls back the others.
func (r *DefaultOrchestrator) BulkPush(ctx context.Context, localIDs []string) BulkResult {
	var result BulkResult
	for _, localID := range localIDs {
		if _, err := r.Push(ctx, localID); err != nil {
			result.recordFailure(localID, err)
			continue
		}
		result.recordSuccess()
	}
	r.logBulkOutcome("bulkPush", result)
	return result
}

// BulkDelete applies Delete with the given scope independently per item.
// Mutations already issued stay applied even when the caller disconnects
// mid-run; there is no compensating rollback.
func (r *DefaultOrchestrator) BulkDelete(ctx context.Context, refs []Ref, scope DeleteScope) BulkResult {
	var result BulkResult
	for _, ref := range refs {
		if err := r.Delete(ctx, ref, scope); err != nil {
			result.recordFailure(ref.Key(), err)
			continue
		}
		result.recordSuccess()
	}
	r.logBulkOutcome("bulkDelete", result)
	return result
}

func (r *DefaultOrchestrator) logBulkOutcome(operation string, result BulkResult) {
	log := r.logger()
	log.Info("bulk operation finished", "operation", operation,
		"succeeded", result.Succeeded, "failed", result.Failed)
	for _, itemErr := range result.Errors {
		log.V(1).Info("bulk item failed", "operation", operation,
			"item", itemErr.Item, "cause", itemErr.Reason.Error())
	}
}
