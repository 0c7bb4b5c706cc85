package core

import (
	"context"

	"github.com/acrylJonny/metasync/config"
)

// NewMetasyncContext resolves the selected connection and wires the full
// provider graph behind the domain boundaries.
func NewMetasyncContext(opts BootstrapConfig, selection config.ConnectionSelection) (MetasyncContext, error) {
	connectionService := NewConnectionService(opts)

	defaultOrchestrator, secretStore, err := buildDefaultOrchestrator(
		context.Background(), connectionService, selection, opts.Logger)
	if err != nil {
		return MetasyncContext{}, err
	}

	return MetasyncContext{
		Connections:  connectionService,
		Orchestrator: defaultOrchestrator,
		Store:        defaultOrchestrator.Store,
		ChangeSync:   defaultOrchestrator.ChangeSync,
		Catalog:      defaultOrchestrator.Catalog,
		Secrets:      secretStore,
	}, nil
}
