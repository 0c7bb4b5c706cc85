package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/acrylJonny/metasync/catalog"
	"github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/internal/cli/common"
	"github.com/acrylJonny/metasync/orchestrator"
	"github.com/acrylJonny/metasync/secrets"
	"github.com/acrylJonny/metasync/store"
)

type Dependencies struct {
	Orchestrator orchestrator.Orchestrator
	Connections  config.ConnectionService
	Store        store.LocalStore
	ChangeSync   store.ChangeSync
	Catalog      catalog.RemoteCatalog
	Secrets      secrets.SecretStore
}

func (d Dependencies) commandDependencies() common.CommandDependencies {
	return common.CommandDependencies{
		Orchestrator: d.Orchestrator,
		Connections:  d.Connections,
		Store:        d.Store,
		ChangeSync:   d.ChangeSync,
		Catalog:      d.Catalog,
		Secrets:      d.Secrets,
	}
}

func Execute(deps Dependencies) error {
	root := NewRootCommand(deps)
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(root.ErrOrStderr(), strings.TrimSpace(err.Error()))
		return err
	}
	return nil
}

func ExitCodeForError(err error) int {
	if err == nil {
		return 0
	}

	var typedErr *faults.TypedError
	if !errors.As(err, &typedErr) {
		return 1
	}

	switch typedErr.Category {
	case faults.ValidationError:
		return 2
	case faults.NotFoundError:
		return 3
	case faults.AuthError:
		return 4
	case faults.ConflictError:
		return 5
	case faults.ConnectivityError, faults.RateLimitError:
		return 6
	default:
		return 1
	}
}
