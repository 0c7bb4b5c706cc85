// Package file persists the connection catalog as a single YAML file with
// user-only permissions.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/faults"
)

var _ config.ConnectionService = (*FileConnectionService)(nil)

type FileConnectionService struct {
	connectionCatalogPath string
}

func NewFileConnectionService(path string) *FileConnectionService {
	return &FileConnectionService{connectionCatalogPath: path}
}

func (m *FileConnectionService) Create(_ context.Context, conn config.Connection) error {
	conn = normalizeConnection(conn)
	if err := validateConnection(conn); err != nil {
		return err
	}

	connectionCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	if idx := findConnectionIndex(connectionCatalog.Connections, conn.Name); idx >= 0 {
		return validationError(fmt.Sprintf("connection %q already exists", conn.Name), nil)
	}

	connectionCatalog.Connections = append(connectionCatalog.Connections, conn)
	if connectionCatalog.CurrentConn == "" {
		connectionCatalog.CurrentConn = conn.Name
	}

	return m.saveCatalog(connectionCatalog)
}

func (m *FileConnectionService) Update(_ context.Context, conn config.Connection) error {
	conn = normalizeConnection(conn)
	if err := validateConnection(conn); err != nil {
		return err
	}

	connectionCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	idx := findConnectionIndex(connectionCatalog.Connections, conn.Name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("connection %q not found", conn.Name))
	}

	connectionCatalog.Connections[idx] = conn
	return m.saveCatalog(connectionCatalog)
}

func (m *FileConnectionService) Delete(_ context.Context, name string) error {
	connectionCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	idx := findConnectionIndex(connectionCatalog.Connections, name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("connection %q not found", name))
	}

	connectionCatalog.Connections = append(connectionCatalog.Connections[:idx], connectionCatalog.Connections[idx+1:]...)

	if connectionCatalog.CurrentConn == name {
		if len(connectionCatalog.Connections) == 0 {
			connectionCatalog.CurrentConn = ""
		} else {
			connectionCatalog.CurrentConn = connectionCatalog.Connections[0].Name
		}
	}

	return m.saveCatalog(connectionCatalog)
}

func (m *FileConnectionService) SetCurrent(_ context.Context, name string) error {
	connectionCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	if findConnectionIndex(connectionCatalog.Connections, name) < 0 {
		return notFoundError(fmt.Sprintf("connection %q not found", name))
	}

	connectionCatalog.CurrentConn = name
	return m.saveCatalog(connectionCatalog)
}

func (m *FileConnectionService) List(_ context.Context) ([]config.Connection, error) {
	connectionCatalog, err := m.loadCatalog()
	if err != nil {
		return nil, err
	}

	connections := make([]config.Connection, len(connectionCatalog.Connections))
	copy(connections, connectionCatalog.Connections)
	return connections, nil
}

func (m *FileConnectionService) GetCurrent(_ context.Context) (config.Connection, error) {
	connectionCatalog, err := m.loadCatalog()
	if err != nil {
		return config.Connection{}, err
	}
	if connectionCatalog.CurrentConn == "" {
		return config.Connection{}, notFoundError("current connection not set")
	}

	idx := findConnectionIndex(connectionCatalog.Connections, connectionCatalog.CurrentConn)
	if idx < 0 {
		return config.Connection{}, notFoundError(
			fmt.Sprintf("current connection %q not found", connectionCatalog.CurrentConn))
	}

	return connectionCatalog.Connections[idx], nil
}

func (m *FileConnectionService) ResolveConnection(_ context.Context, selection config.ConnectionSelection) (config.Connection, error) {
	connectionCatalog, err := m.loadCatalog()
	if err != nil {
		return config.Connection{}, err
	}

	effectiveName := selection.Name
	if effectiveName == "" {
		effectiveName = connectionCatalog.CurrentConn
	}
	if effectiveName == "" {
		return config.Connection{}, notFoundError("current connection not set")
	}

	idx := findConnectionIndex(connectionCatalog.Connections, effectiveName)
	if idx < 0 {
		return config.Connection{}, notFoundError(fmt.Sprintf("connection %q not found", effectiveName))
	}

	resolved, err := applyOverrides(normalizeConnection(connectionCatalog.Connections[idx]), selection.Overrides)
	if err != nil {
		return config.Connection{}, err
	}
	if err := validateConnection(resolved); err != nil {
		return config.Connection{}, err
	}
	return resolved, nil
}

func (m *FileConnectionService) Validate(_ context.Context, conn config.Connection) error {
	return validateConnection(normalizeConnection(conn))
}

func (m *FileConnectionService) saveCatalog(connectionCatalog config.ConnectionCatalog) error {
	if err := validateCatalog(connectionCatalog); err != nil {
		return err
	}

	resolvedPath, err := m.resolveCatalogPath()
	if err != nil {
		return err
	}

	encoded, err := encodeCatalog(connectionCatalog)
	if err != nil {
		return internalError("failed to encode connection catalog", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolvedPath), 0o755); err != nil {
		return internalError("failed to create connection config directory", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(resolvedPath), ".metasync-connections-*")
	if err != nil {
		return internalError("failed to create temporary connection catalog file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(encoded); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to write connection catalog", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to set connection catalog permissions", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to finalize connection catalog", err)
	}

	if err := os.Rename(tempPath, resolvedPath); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to replace connection catalog", err)
	}

	return ensureUserOnlyReadWriteFile(resolvedPath)
}

func (m *FileConnectionService) loadCatalog() (config.ConnectionCatalog, error) {
	resolvedPath, err := m.resolveCatalogPath()
	if err != nil {
		return config.ConnectionCatalog{}, err
	}

	connectionCatalog, err := decodeCatalogFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.ConnectionCatalog{}, nil
		}
		return config.ConnectionCatalog{}, err
	}
	if err := ensureUserOnlyReadWriteFile(resolvedPath); err != nil {
		return config.ConnectionCatalog{}, err
	}

	if err := validateCatalog(connectionCatalog); err != nil {
		return config.ConnectionCatalog{}, err
	}
	return connectionCatalog, nil
}

func (m *FileConnectionService) resolveCatalogPath() (string, error) {
	return resolveCatalogPath(m.connectionCatalogPath)
}

func findConnectionIndex(connections []config.Connection, name string) int {
	for idx, item := range connections {
		if item.Name == name {
			return idx
		}
	}
	return -1
}

func ensureUserOnlyReadWriteFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return internalError("failed to inspect connection catalog permissions", err)
	}

	if info.Mode().Perm() == 0o600 {
		return nil
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return internalError("failed to update connection catalog permissions", err)
	}
	return nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
