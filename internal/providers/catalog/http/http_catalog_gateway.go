// Package http implements the RemoteCatalog boundary against a DataHub-style
// REST API: entity CRUD by urn plus the reference-data endpoints used for
// owner resolution.
package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/acrylJonny/metasync/catalog"
	"github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/internal/providers/shared/tlsconfig"
	"github.com/acrylJonny/metasync/metaobject"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMediaType   = "application/json"
)

var _ catalog.RemoteCatalog = (*HTTPCatalogGateway)(nil)
var _ catalog.AccessChecker = (*HTTPCatalogGateway)(nil)

type HTTPCatalogGateway struct {
	baseURL        *url.URL
	defaultHeaders map[string]string
	bearerToken    string
	client         *http.Client
	limiter        *rate.Limiter
}

type GatewayOption func(*HTTPCatalogGateway)

// WithBearerToken overrides the configured token, used when the token is
// unsealed from a secret store after the connection config is loaded.
func WithBearerToken(token string) GatewayOption {
	return func(g *HTTPCatalogGateway) {
		if g == nil {
			return
		}
		g.bearerToken = strings.TrimSpace(token)
	}
}

func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *HTTPCatalogGateway) {
		if g == nil || client == nil {
			return
		}
		g.client = client
	}
}

func NewHTTPCatalogGateway(cfg config.HTTPCatalog, opts ...GatewayOption) (*HTTPCatalogGateway, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := tlsconfig.BuildTLSConfig(cfg.TLS, "catalog.http")
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	gateway := &HTTPCatalogGateway{
		baseURL:        baseURL,
		defaultHeaders: cloneStringMap(cfg.DefaultHeaders),
		client: &http.Client{
			Timeout:   defaultHTTPTimeout,
			Transport: transport,
		},
	}
	if cfg.Auth != nil && cfg.Auth.BearerToken != nil {
		gateway.bearerToken = strings.TrimSpace(cfg.Auth.BearerToken.Token)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		gateway.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(gateway)
	}
	return gateway, nil
}

func (g *HTTPCatalogGateway) Query(ctx context.Context, urn string) (metaobject.MetadataObject, error) {
	if strings.TrimSpace(urn) == "" {
		return metaobject.MetadataObject{}, validationError("query requires a urn", nil)
	}

	body, err := g.execute(ctx, http.MethodGet, "/entities/"+url.PathEscape(urn), nil, nil)
	if err != nil {
		return metaobject.MetadataObject{}, err
	}
	return decodeObjectResponse(body)
}

func (g *HTTPCatalogGateway) Create(ctx context.Context, entityType metaobject.EntityType, def metaobject.Definition) (string, error) {
	if !entityType.Valid() {
		return "", validationError(fmt.Sprintf("unsupported entity type %q", entityType), nil)
	}

	body, err := g.execute(ctx, http.MethodPost, "/entities", map[string]string{"type": string(entityType)}, def)
	if err != nil {
		return "", err
	}
	return decodeCreateResponse(body)
}

func (g *HTTPCatalogGateway) Update(ctx context.Context, urn string, def metaobject.Definition) error {
	if strings.TrimSpace(urn) == "" {
		return validationError("update requires a urn", nil)
	}

	_, err := g.execute(ctx, http.MethodPut, "/entities/"+url.PathEscape(urn), nil, def)
	return err
}

func (g *HTTPCatalogGateway) Delete(ctx context.Context, urn string) error {
	if strings.TrimSpace(urn) == "" {
		return validationError("delete requires a urn", nil)
	}

	_, err := g.execute(ctx, http.MethodDelete, "/entities/"+url.PathEscape(urn), nil, nil)
	return err
}

func (g *HTTPCatalogGateway) ListByType(ctx context.Context, entityType metaobject.EntityType) ([]metaobject.MetadataObject, error) {
	if !entityType.Valid() {
		return nil, validationError(fmt.Sprintf("unsupported entity type %q", entityType), nil)
	}

	var objects []metaobject.MetadataObject
	scrollID := ""
	for {
		query := map[string]string{"type": string(entityType)}
		if scrollID != "" {
			query["scrollId"] = scrollID
		}

		body, err := g.execute(ctx, http.MethodGet, "/entities", query, nil)
		if err != nil {
			return nil, err
		}

		page, nextScrollID, err := decodeListResponse(body)
		if err != nil {
			return nil, err
		}
		objects = append(objects, page...)

		if nextScrollID == "" || nextScrollID == scrollID {
			return objects, nil
		}
		scrollID = nextScrollID
	}
}

func (g *HTTPCatalogGateway) FetchReferenceData(ctx context.Context) (catalog.ReferenceData, error) {
	body, err := g.execute(ctx, http.MethodGet, "/reference-data", nil, nil)
	if err != nil {
		return catalog.ReferenceData{}, err
	}
	return decodeReferenceDataResponse(body)
}

// CheckAccess probes the reference-data endpoint so connection setup can
// fail fast on a bad base URL or token.
func (g *HTTPCatalogGateway) CheckAccess(ctx context.Context) error {
	_, err := g.FetchReferenceData(ctx)
	return err
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, validationError("catalog.http.base-url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return nil, validationError("catalog.http.base-url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, validationError("catalog.http.base-url must use http or https", nil)
	}
	if parsed.Host == "" {
		return nil, validationError("catalog.http.base-url host is required", nil)
	}

	if parsed.Path == "" {
		parsed.Path = "/"
	}
	return parsed, nil
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}

	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
