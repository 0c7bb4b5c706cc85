package core

import (
	"github.com/go-logr/logr"

	"github.com/acrylJonny/metasync/catalog"
	"github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/orchestrator"
	"github.com/acrylJonny/metasync/secrets"
	"github.com/acrylJonny/metasync/store"
)

// MetasyncContext is the fully wired object graph for one resolved
// connection. CLI commands consume these boundaries, never the providers.
type MetasyncContext struct {
	Connections  config.ConnectionService
	Orchestrator orchestrator.Orchestrator
	Store        store.LocalStore
	ChangeSync   store.ChangeSync
	Catalog      catalog.RemoteCatalog
	Secrets      secrets.SecretStore
}

type BootstrapConfig struct {
	ConnectionCatalogPath string
	Logger                logr.Logger
}
