package common

import (
	"github.com/acrylJonny/metasync/catalog"
	"github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/orchestrator"
	"github.com/acrylJonny/metasync/secrets"
	"github.com/acrylJonny/metasync/store"
)

type CommandDependencies struct {
	Orchestrator orchestrator.Orchestrator
	Connections  config.ConnectionService
	Store        store.LocalStore
	ChangeSync   store.ChangeSync
	Catalog      catalog.RemoteCatalog
	Secrets      secrets.SecretStore
}

func RequireConnections(deps CommandDependencies) (config.ConnectionService, error) {
	if deps.Connections == nil {
		return nil, ValidationError("connection service is not configured", nil)
	}
	return deps.Connections, nil
}

func RequireOrchestrator(deps CommandDependencies) (orchestrator.Orchestrator, error) {
	if deps.Orchestrator == nil {
		return nil, ValidationError("orchestrator is not configured", nil)
	}
	return deps.Orchestrator, nil
}

func RequireLocalStore(deps CommandDependencies) (store.LocalStore, error) {
	if deps.Store == nil {
		return nil, ValidationError("local store is not configured", nil)
	}
	return deps.Store, nil
}

func RequireChangeSync(deps CommandDependencies) (store.ChangeSync, error) {
	if deps.ChangeSync == nil {
		return nil, ValidationError("the selected connection has no git sync configured", nil)
	}
	return deps.ChangeSync, nil
}

func RequireCatalog(deps CommandDependencies) (catalog.RemoteCatalog, error) {
	if deps.Catalog == nil {
		return nil, ValidationError("the selected connection has no remote catalog configured", nil)
	}
	return deps.Catalog, nil
}

func RequireSecrets(deps CommandDependencies) (secrets.SecretStore, error) {
	if deps.Secrets == nil {
		return nil, ValidationError("the selected connection has no secret store configured", nil)
	}
	return deps.Secrets, nil
}
