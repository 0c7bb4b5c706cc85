package fsstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/acrylJonny/metasync/metaobject"
)

func (s *LocalObjectStore) List(_ context.Context, entityType metaobject.EntityType) ([]metaobject.MetadataObject, error) {
	if !entityType.Valid() {
		return nil, validationError(fmt.Sprintf("unsupported entity type %q", entityType), nil)
	}

	entries, err := os.ReadDir(s.entityDir(entityType))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, internalError("failed to list store directory", err)
	}

	var rows []metaobject.MetadataObject
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), rowExtension) {
			continue
		}
		row, err := s.readRow(filepath.Join(s.entityDir(entityType), entry.Name()))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Definition.Name != rows[j].Definition.Name {
			return rows[i].Definition.Name < rows[j].Definition.Name
		}
		return rows[i].LocalID < rows[j].LocalID
	})
	return rows, nil
}

func (s *LocalObjectStore) FindByURN(ctx context.Context, urn string) (metaobject.MetadataObject, bool, error) {
	if urn == "" {
		return metaobject.MetadataObject{}, false, nil
	}

	for _, entityType := range metaobject.EntityTypes() {
		rows, err := s.List(ctx, entityType)
		if err != nil {
			return metaobject.MetadataObject{}, false, err
		}
		for _, row := range rows {
			if row.URN == urn {
				return row, true, nil
			}
		}
	}
	return metaobject.MetadataObject{}, false, nil
}
