package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/faults"
)

func newTestService(t *testing.T) *FileConnectionService {
	t.Helper()
	return NewFileConnectionService(filepath.Join(t.TempDir(), "connections.yaml"))
}

func testConnection(name string) config.Connection {
	return config.Connection{
		Name:  name,
		Store: config.Store{BaseDir: "/tmp/" + name},
		Catalog: &config.CatalogServer{
			HTTP: &config.HTTPCatalog{BaseURL: "https://catalog.example.com"},
		},
	}
}

func TestCreateAndGetCurrent(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	if err := service.Create(context.Background(), testConnection("dev")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The first connection becomes current automatically.
	current, err := service.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if current.Name != "dev" {
		t.Fatalf("expected current connection dev, got %q", current.Name)
	}

	if err := service.Create(context.Background(), testConnection("dev")); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected duplicate create to fail, got %v", err)
	}
}

func TestSetCurrentAndDelete(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	for _, name := range []string{"dev", "prod"} {
		if err := service.Create(context.Background(), testConnection(name)); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	if err := service.SetCurrent(context.Background(), "prod"); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	if err := service.SetCurrent(context.Background(), "staging"); !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected not-found for unknown connection, got %v", err)
	}

	// Deleting the current connection falls back to the first remaining one.
	if err := service.Delete(context.Background(), "prod"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	current, err := service.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if current.Name != "dev" {
		t.Fatalf("expected fallback to dev, got %q", current.Name)
	}
}

func TestResolveConnectionWithOverrides(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	if err := service.Create(context.Background(), testConnection("dev")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	resolved, err := service.ResolveConnection(context.Background(), config.ConnectionSelection{
		Name: "dev",
		Overrides: map[string]string{
			"catalog.http.base-url": "https://other.example.com",
			"catalog.http.token":    "tok",
		},
	})
	if err != nil {
		t.Fatalf("ResolveConnection: %v", err)
	}
	if resolved.Catalog.HTTP.BaseURL != "https://other.example.com" {
		t.Fatalf("override not applied: %+v", resolved.Catalog.HTTP)
	}
	if resolved.Catalog.HTTP.Auth.BearerToken.Token != "tok" {
		t.Fatalf("token override not applied: %+v", resolved.Catalog.HTTP.Auth)
	}

	if _, err := service.ResolveConnection(context.Background(), config.ConnectionSelection{
		Name:      "dev",
		Overrides: map[string]string{"bogus": "x"},
	}); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected unknown override key to fail, got %v", err)
	}
}

func TestValidateRejectsIncompleteConnections(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	cases := []struct {
		name string
		conn config.Connection
	}{
		{"empty name", config.Connection{Store: config.Store{BaseDir: "/tmp/x"}}},
		{"missing base dir", config.Connection{Name: "dev"}},
		{"catalog without http", config.Connection{
			Name:    "dev",
			Store:   config.Store{BaseDir: "/tmp/x"},
			Catalog: &config.CatalogServer{},
		}},
		{"sealed token without secret store", config.Connection{
			Name:  "dev",
			Store: config.Store{BaseDir: "/tmp/x"},
			Catalog: &config.CatalogServer{HTTP: &config.HTTPCatalog{
				BaseURL: "https://catalog.example.com",
				Auth:    &config.CatalogAuth{SealedToken: "catalog-token"},
			}},
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := service.Validate(context.Background(), tc.conn); !faults.IsCategory(err, faults.ValidationError) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCatalogFilePermissionsAndUnknownFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "connections.yaml")
	service := NewFileConnectionService(path)
	if err := service.Create(context.Background(), testConnection("dev")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	if err := os.WriteFile(path, []byte("connections: []\nbogus-field: true\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := service.List(context.Background()); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected strict decoding to reject unknown fields, got %v", err)
	}
}
