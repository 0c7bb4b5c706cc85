package file

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/acrylJonny/metasync/config"
)

func decodeCatalogFile(path string) (config.ConnectionCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.ConnectionCatalog{}, err
	}
	return decodeCatalog(data)
}

func decodeCatalog(data []byte) (config.ConnectionCatalog, error) {
	var connectionCatalog config.ConnectionCatalog

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&connectionCatalog); err != nil {
		return config.ConnectionCatalog{}, validationError("invalid connection catalog yaml", err)
	}
	return connectionCatalog, nil
}

func encodeCatalog(connectionCatalog config.ConnectionCatalog) ([]byte, error) {
	return yaml.Marshal(connectionCatalog)
}

func resolveCatalogPath(explicitPath string) (string, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(config.ConnectionFileEnvVar)
	}
	if path == "" {
		path = config.DefaultConnectionCatalogPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", internalError("failed to resolve user home directory", err)
	}

	if path == "~" {
		path = homeDir
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, strings.TrimPrefix(path, "~/"))
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == "." {
		return "", validationError("connection catalog path is invalid", errors.New("resolved to current directory"))
	}

	if !filepath.IsAbs(cleanPath) {
		cleanPath = filepath.Join(homeDir, cleanPath)
	}
	return cleanPath, nil
}
