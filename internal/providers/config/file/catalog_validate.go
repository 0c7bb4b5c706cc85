package file

import (
	"fmt"
	"strings"

	"github.com/acrylJonny/metasync/config"
)

func normalizeConnection(conn config.Connection) config.Connection {
	conn.Name = strings.TrimSpace(conn.Name)
	conn.Store.BaseDir = strings.TrimSpace(conn.Store.BaseDir)
	if conn.Catalog != nil && conn.Catalog.HTTP != nil {
		conn.Catalog.HTTP.BaseURL = strings.TrimSpace(conn.Catalog.HTTP.BaseURL)
	}
	return conn
}

func validateConnection(conn config.Connection) error {
	if conn.Name == "" {
		return validationError("connection name must not be empty", nil)
	}
	if conn.Store.BaseDir == "" {
		return validationError(fmt.Sprintf("connection %q requires store.base-dir", conn.Name), nil)
	}

	if conn.Store.Git != nil && conn.Store.Git.Remote != nil {
		remote := conn.Store.Git.Remote
		if strings.TrimSpace(remote.URL) == "" {
			return validationError(fmt.Sprintf("connection %q git remote requires a url", conn.Name), nil)
		}
		if remote.Auth != nil && remote.Auth.BasicAuth != nil && remote.Auth.AccessKey != nil {
			return validationError(
				fmt.Sprintf("connection %q git auth must use basic-auth or access-key, not both", conn.Name), nil)
		}
	}

	if conn.Catalog != nil {
		if conn.Catalog.HTTP == nil {
			return validationError(fmt.Sprintf("connection %q catalog requires an http section", conn.Name), nil)
		}
		httpCatalog := conn.Catalog.HTTP
		if httpCatalog.BaseURL == "" {
			return validationError(fmt.Sprintf("connection %q requires catalog.http.base-url", conn.Name), nil)
		}
		if httpCatalog.RateLimit < 0 {
			return validationError(fmt.Sprintf("connection %q catalog rate-limit must not be negative", conn.Name), nil)
		}
		if httpCatalog.Auth != nil && httpCatalog.Auth.SealedToken != "" && conn.SecretStore == nil {
			return validationError(
				fmt.Sprintf("connection %q uses a sealed token but has no secret store", conn.Name), nil)
		}
	}

	if conn.SecretStore != nil {
		if conn.SecretStore.File == nil {
			return validationError(fmt.Sprintf("connection %q secret store requires a file section", conn.Name), nil)
		}
		if strings.TrimSpace(conn.SecretStore.File.Path) == "" {
			return validationError(fmt.Sprintf("connection %q requires secret-store.file.path", conn.Name), nil)
		}
	}

	return nil
}

func validateCatalog(connectionCatalog config.ConnectionCatalog) error {
	seen := make(map[string]struct{}, len(connectionCatalog.Connections))
	for _, conn := range connectionCatalog.Connections {
		if err := validateConnection(normalizeConnection(conn)); err != nil {
			return err
		}
		if _, duplicate := seen[conn.Name]; duplicate {
			return validationError(fmt.Sprintf("duplicate connection name %q", conn.Name), nil)
		}
		seen[conn.Name] = struct{}{}
	}

	if connectionCatalog.CurrentConn != "" {
		if _, ok := seen[connectionCatalog.CurrentConn]; !ok {
			return validationError(
				fmt.Sprintf("current connection %q is not in the catalog", connectionCatalog.CurrentConn), nil)
		}
	}
	return nil
}

// applyOverrides rewrites selected fields of a resolved connection. Override
// keys are the flat forms accepted by the CLI's --set flag.
func applyOverrides(conn config.Connection, overrides map[string]string) (config.Connection, error) {
	for key, value := range overrides {
		switch key {
		case "store.base-dir":
			conn.Store.BaseDir = strings.TrimSpace(value)
		case "catalog.http.base-url":
			if conn.Catalog == nil {
				conn.Catalog = &config.CatalogServer{}
			}
			if conn.Catalog.HTTP == nil {
				conn.Catalog.HTTP = &config.HTTPCatalog{}
			}
			conn.Catalog.HTTP.BaseURL = strings.TrimSpace(value)
		case "catalog.http.token":
			if conn.Catalog == nil || conn.Catalog.HTTP == nil {
				return config.Connection{}, validationError(
					"catalog.http.token override requires a configured http catalog", nil)
			}
			if conn.Catalog.HTTP.Auth == nil {
				conn.Catalog.HTTP.Auth = &config.CatalogAuth{}
			}
			conn.Catalog.HTTP.Auth.BearerToken = &config.BearerTokenAuth{Token: strings.TrimSpace(value)}
		default:
			return config.Connection{}, validationError(fmt.Sprintf("unknown override key %q", key), nil)
		}
	}
	return conn, nil
}
