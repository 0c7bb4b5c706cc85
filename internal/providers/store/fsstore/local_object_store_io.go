package fsstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/acrylJonny/metasync/metaobject"
)

// rowDocument is the on-disk shape of one metadata row. The localId inside
// the document is authoritative; the file name merely mirrors it.
type rowDocument struct {
	LocalID     string                `yaml:"local-id"`
	URN         string                `yaml:"urn,omitempty"`
	EntityType  metaobject.EntityType `yaml:"entity-type"`
	Definition  metaobject.Definition `yaml:"definition"`
	Fingerprint string                `yaml:"fingerprint,omitempty"`
	Version     int64                 `yaml:"version"`
}

func (s *LocalObjectStore) Save(ctx context.Context, obj metaobject.MetadataObject) (metaobject.MetadataObject, error) {
	if !obj.EntityType.Valid() {
		return metaobject.MetadataObject{}, validationError(
			fmt.Sprintf("unsupported entity type %q", obj.EntityType), nil)
	}

	if obj.Definition.Payload != nil {
		normalized, err := metaobject.Normalize(obj.Definition.Payload)
		if err != nil {
			return metaobject.MetadataObject{}, err
		}
		obj.Definition.Payload = normalized
	}

	// The fingerprint is an on-disk cache of the definition hash; refresh
	// it on every save so an edited row never carries the pre-edit hash.
	fingerprint, err := metaobject.Fingerprint(obj.EntityType, obj.Definition)
	if err != nil {
		return metaobject.MetadataObject{}, err
	}
	obj.Fingerprint = fingerprint

	s.mu.Lock()
	defer s.mu.Unlock()

	if obj.LocalID == "" {
		obj.LocalID = uuid.NewString()
	} else {
		current, err := s.readRow(s.rowFilePath(obj.EntityType, obj.LocalID))
		if err == nil && current.Version != obj.Version {
			return metaobject.MetadataObject{}, conflictError(
				fmt.Sprintf("row %q was modified concurrently", obj.LocalID))
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return metaobject.MetadataObject{}, err
		}
	}
	obj.Version++

	if err := s.writeRow(ctx, obj); err != nil {
		return metaobject.MetadataObject{}, err
	}
	return obj, nil
}

func (s *LocalObjectStore) Get(_ context.Context, localID string) (metaobject.MetadataObject, error) {
	if localID == "" {
		return metaobject.MetadataObject{}, validationError("local id must not be empty", nil)
	}

	for _, entityType := range metaobject.EntityTypes() {
		row, err := s.readRow(s.rowFilePath(entityType, localID))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return metaobject.MetadataObject{}, err
		}
		return row, nil
	}
	return metaobject.MetadataObject{}, notFoundError(fmt.Sprintf("row %q not found", localID))
}

func (s *LocalObjectStore) writeRow(_ context.Context, obj metaobject.MetadataObject) error {
	document := rowDocument{
		LocalID:     obj.LocalID,
		URN:         obj.URN,
		EntityType:  obj.EntityType,
		Definition:  obj.Definition,
		Fingerprint: obj.Fingerprint,
		Version:     obj.Version,
	}
	encoded, err := yaml.Marshal(document)
	if err != nil {
		return internalError("failed to encode row", err)
	}

	targetPath := s.rowFilePath(obj.EntityType, obj.LocalID)
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return internalError("failed to create store directory", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(targetPath), ".metasync-tmp-*")
	if err != nil {
		return internalError("failed to create temporary file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(encoded); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to write temporary row", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to finalize temporary row", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to replace row file", err)
	}
	return nil
}

// readRow decodes one row file. A missing file surfaces as os.ErrNotExist so
// callers can distinguish absence from corruption.
func (s *LocalObjectStore) readRow(rowPath string) (metaobject.MetadataObject, error) {
	data, err := os.ReadFile(rowPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return metaobject.MetadataObject{}, err
		}
		return metaobject.MetadataObject{}, internalError("failed to read row file", err)
	}

	var document rowDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return metaobject.MetadataObject{}, validationError(
			fmt.Sprintf("row file %q holds invalid yaml", filepath.Base(rowPath)), err)
	}

	obj := metaobject.MetadataObject{
		LocalID:     document.LocalID,
		URN:         document.URN,
		EntityType:  document.EntityType,
		Definition:  document.Definition,
		Fingerprint: document.Fingerprint,
		Version:     document.Version,
	}
	if obj.Definition.Payload != nil {
		normalized, err := metaobject.Normalize(obj.Definition.Payload)
		if err != nil {
			return metaobject.MetadataObject{}, err
		}
		obj.Definition.Payload = normalized
	}
	return obj, nil
}
