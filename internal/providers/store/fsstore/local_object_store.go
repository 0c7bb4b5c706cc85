// Package fsstore persists metadata rows as one YAML document per row under
// a per-entity-type directory. It is the default LocalStore backend.
package fsstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/metaobject"
	"github.com/acrylJonny/metasync/store"
)

var _ store.LocalStore = (*LocalObjectStore)(nil)

const rowExtension = ".yaml"

// LocalObjectStore keeps rows at <baseDir>/<entityType>/<localID>.yaml.
// Writes are atomic (temp file plus rename) and guarded by the row's
// version counter. The version check and the write serialize on an
// in-process mutex; concurrent writers in separate processes are not
// guarded.
type LocalObjectStore struct {
	baseDir string
	mu      sync.Mutex
}

func NewLocalObjectStore(baseDir string) *LocalObjectStore {
	return &LocalObjectStore{baseDir: filepath.Clean(baseDir)}
}

func (s *LocalObjectStore) Init(context.Context) error {
	if s.baseDir == "" || s.baseDir == "." {
		return validationError("store base directory must not be empty", nil)
	}
	for _, entityType := range metaobject.EntityTypes() {
		if err := os.MkdirAll(s.entityDir(entityType), 0o755); err != nil {
			return internalError("failed to initialize store directory", err)
		}
	}
	return nil
}

func (s *LocalObjectStore) Check(context.Context) error {
	info, err := os.Stat(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return notFoundError("store base directory does not exist")
		}
		return internalError("failed to inspect store base directory", err)
	}
	if !info.IsDir() {
		return validationError("store base directory is not a directory", nil)
	}
	return nil
}

func (s *LocalObjectStore) entityDir(entityType metaobject.EntityType) string {
	return filepath.Join(s.baseDir, string(entityType))
}

func (s *LocalObjectStore) rowFilePath(entityType metaobject.EntityType, localID string) string {
	return filepath.Join(s.entityDir(entityType), localID+rowExtension)
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func conflictError(message string) error {
	return faults.NewTypedError(faults.ConflictError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
