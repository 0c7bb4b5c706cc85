package fsstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/acrylJonny/metasync/metaobject"
)

func (s *LocalObjectStore) Delete(_ context.Context, localID string) error {
	if localID == "" {
		return validationError("local id must not be empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entityType := range metaobject.EntityTypes() {
		rowPath := s.rowFilePath(entityType, localID)
		if stat, statErr := os.Stat(rowPath); statErr == nil && !stat.IsDir() {
			if err := os.Remove(rowPath); err != nil {
				return internalError("failed to remove row file", err)
			}
			return nil
		} else if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
			return internalError("failed to inspect row file", statErr)
		}
	}
	return notFoundError(fmt.Sprintf("row %q not found", localID))
}
