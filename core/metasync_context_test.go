package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"

	"github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/metaobject"
)

func testBootstrap(t *testing.T) (BootstrapConfig, config.ConnectionService, string) {
	t.Helper()
	workDir := t.TempDir()
	opts := BootstrapConfig{
		ConnectionCatalogPath: filepath.Join(workDir, "connections.yaml"),
		Logger:                logr.Discard(),
	}
	return opts, NewConnectionService(opts), workDir
}

func TestNewMetasyncContextWiresStoreOnlyConnection(t *testing.T) {
	t.Parallel()

	opts, service, workDir := testBootstrap(t)
	if err := service.Create(context.Background(), config.Connection{
		Name:  "local",
		Store: config.Store{BaseDir: filepath.Join(workDir, "store")},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	metasyncContext, err := NewMetasyncContext(opts, config.ConnectionSelection{Name: "local"})
	if err != nil {
		t.Fatalf("NewMetasyncContext: %v", err)
	}
	if metasyncContext.Store == nil || metasyncContext.Orchestrator == nil {
		t.Fatalf("expected store and orchestrator to be wired")
	}
	if metasyncContext.Catalog != nil {
		t.Fatalf("store-only connection must not wire a catalog client")
	}

	// The store is initialized and usable right away.
	saved, err := metasyncContext.Store.Save(context.Background(), metaobject.MetadataObject{
		EntityType: metaobject.EntityTag,
		Definition: metaobject.Definition{Name: "pii"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.LocalID == "" {
		t.Fatalf("expected assigned local id")
	}
}

func TestNewMetasyncContextWiresGitAndCatalog(t *testing.T) {
	t.Parallel()

	opts, service, workDir := testBootstrap(t)
	if err := service.Create(context.Background(), config.Connection{
		Name: "dev",
		Store: config.Store{
			BaseDir: filepath.Join(workDir, "store"),
			Git:     &config.GitSync{},
		},
		Catalog: &config.CatalogServer{
			HTTP: &config.HTTPCatalog{BaseURL: "https://catalog.example.com"},
		},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	metasyncContext, err := NewMetasyncContext(opts, config.ConnectionSelection{Name: "dev"})
	if err != nil {
		t.Fatalf("NewMetasyncContext: %v", err)
	}
	if metasyncContext.ChangeSync == nil {
		t.Fatalf("expected git change sync to be wired")
	}
	if metasyncContext.Catalog == nil {
		t.Fatalf("expected catalog client to be wired")
	}
}

func TestNewMetasyncContextUnknownConnection(t *testing.T) {
	t.Parallel()

	opts, _, _ := testBootstrap(t)
	if _, err := NewMetasyncContext(opts, config.ConnectionSelection{Name: "nope"}); !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSealedTokenRequiresSecretStore(t *testing.T) {
	t.Parallel()

	_, _, workDir := testBootstrap(t)

	// Catalog validation rejects the sealed token reference before the
	// factory ever runs.
	service := NewConnectionService(BootstrapConfig{
		ConnectionCatalogPath: filepath.Join(workDir, "other.yaml"),
		Logger:                logr.Discard(),
	})
	err := service.Create(context.Background(), config.Connection{
		Name:  "dev",
		Store: config.Store{BaseDir: filepath.Join(workDir, "store")},
		Catalog: &config.CatalogServer{
			HTTP: &config.HTTPCatalog{
				BaseURL: "https://catalog.example.com",
				Auth:    &config.CatalogAuth{SealedToken: "catalog-token"},
			},
		},
	})
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
