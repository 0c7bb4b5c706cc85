package orchestrator

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/acrylJonny/metasync/catalog"
	"github.com/acrylJonny/metasync/refcache"
	"github.com/acrylJonny/metasync/store"
)

var _ Orchestrator = (*DefaultOrchestrator)(nil)

// DefaultOrchestrator executes push/pull/delete mutations against the local
// store and the remote catalog for one connection. Every operation is
// synchronous and request-scoped; there is no background scheduler.
type DefaultOrchestrator struct {
	Store        store.LocalStore
	Catalog      catalog.RemoteCatalog
	References   *refcache.Cache
	ChangeSync   store.ChangeSync
	ConnectionID string
	Log          logr.Logger
	Metrics      *Metrics

	retryBackoff time.Duration
	sleep        sleepFunc
}

// SetRetryBackoff overrides the fixed backoff between a failed transient
// remote call and its single retry.
func (r *DefaultOrchestrator) SetRetryBackoff(backoff time.Duration) {
	if r == nil || backoff <= 0 {
		return
	}
	r.retryBackoff = backoff
}

func (r *DefaultOrchestrator) requireStore() (store.LocalStore, error) {
	if r == nil || r.Store == nil {
		return nil, internalError("local store is not configured", nil)
	}
	return r.Store, nil
}

func (r *DefaultOrchestrator) requireCatalog() (catalog.RemoteCatalog, error) {
	if r == nil || r.Catalog == nil {
		return nil, internalError("remote catalog client is not configured", nil)
	}
	return r.Catalog, nil
}

func (r *DefaultOrchestrator) logger() logr.Logger {
	if r == nil {
		return logr.Discard()
	}
	return r.Log
}

func (r *DefaultOrchestrator) observe(operation string, err error) {
	if r == nil || r.Metrics == nil {
		return
	}
	r.Metrics.observeMutation(operation, err)
}
