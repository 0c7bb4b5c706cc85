package core

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/acrylJonny/metasync/catalog"
	"github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/faults"
	httpcatalog "github.com/acrylJonny/metasync/internal/providers/catalog/http"
	configfile "github.com/acrylJonny/metasync/internal/providers/config/file"
	filesecrets "github.com/acrylJonny/metasync/internal/providers/secrets/file"
	"github.com/acrylJonny/metasync/internal/providers/store/fsstore"
	"github.com/acrylJonny/metasync/internal/providers/store/gitsync"
	"github.com/acrylJonny/metasync/orchestrator"
	"github.com/acrylJonny/metasync/refcache"
	"github.com/acrylJonny/metasync/secrets"
)

func buildDefaultOrchestrator(
	ctx context.Context,
	connectionService config.ConnectionService,
	selection config.ConnectionSelection,
	log logr.Logger,
) (*orchestrator.DefaultOrchestrator, secrets.SecretStore, error) {
	if connectionService == nil {
		return nil, nil, faults.NewTypedError(faults.ValidationError, "connection service must not be nil", nil)
	}

	conn, err := connectionService.ResolveConnection(ctx, selection)
	if err != nil {
		return nil, nil, err
	}

	defaultOrchestrator := &orchestrator.DefaultOrchestrator{
		ConnectionID: conn.Name,
		Log:          log.WithValues("connection", conn.Name),
	}

	localStore := fsstore.NewLocalObjectStore(conn.Store.BaseDir)
	if err := localStore.Init(ctx); err != nil {
		return nil, nil, err
	}
	defaultOrchestrator.Store = localStore

	if conn.Store.Git != nil {
		changeSync := gitsync.NewGitChangeSync(conn.Store.BaseDir, *conn.Store.Git,
			gitsync.WithLogger(log.WithName("gitsync")))
		if err := changeSync.Init(ctx); err != nil {
			return nil, nil, err
		}
		defaultOrchestrator.ChangeSync = changeSync
	}

	var secretStore secrets.SecretStore
	if conn.SecretStore != nil {
		if conn.SecretStore.File == nil {
			return nil, nil, faults.NewTypedError(faults.InternalError, "secret store provider is invalid", nil)
		}
		secretService, err := filesecrets.NewFileSecretService(*conn.SecretStore.File)
		if err != nil {
			return nil, nil, err
		}
		secretStore = secretService
	}

	if conn.Catalog != nil {
		if conn.Catalog.HTTP == nil {
			return nil, nil, faults.NewTypedError(faults.InternalError, "catalog provider is invalid", nil)
		}

		gatewayOptions, err := resolveCatalogAuth(ctx, *conn.Catalog.HTTP, secretStore)
		if err != nil {
			return nil, nil, err
		}
		gateway, err := httpcatalog.NewHTTPCatalogGateway(*conn.Catalog.HTTP, gatewayOptions...)
		if err != nil {
			return nil, nil, err
		}
		defaultOrchestrator.Catalog = gateway
		defaultOrchestrator.References = refcache.New(
			func(fetchCtx context.Context, _ string) (catalog.ReferenceData, error) {
				return gateway.FetchReferenceData(fetchCtx)
			},
			refcache.WithLogger(log.WithName("refcache")),
		)
	}

	return defaultOrchestrator, secretStore, nil
}

// resolveCatalogAuth unseals the catalog token from the secret store when the
// connection references one instead of embedding it.
func resolveCatalogAuth(
	ctx context.Context,
	cfg config.HTTPCatalog,
	secretStore secrets.SecretStore,
) ([]httpcatalog.GatewayOption, error) {
	if cfg.Auth == nil || cfg.Auth.SealedToken == "" {
		return nil, nil
	}
	if secretStore == nil {
		return nil, faults.NewTypedError(faults.ValidationError,
			"catalog auth references a sealed token but no secret store is configured", nil)
	}

	token, err := secretStore.Get(ctx, cfg.Auth.SealedToken)
	if err != nil {
		return nil, err
	}
	return []httpcatalog.GatewayOption{httpcatalog.WithBearerToken(token)}, nil
}

func NewConnectionService(opts BootstrapConfig) config.ConnectionService {
	return configfile.NewFileConnectionService(opts.ConnectionCatalogPath)
}
