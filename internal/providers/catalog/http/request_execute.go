package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
)

func (g *HTTPCatalogGateway) execute(
	ctx context.Context,
	method string,
	requestPath string,
	query map[string]string,
	body any,
) ([]byte, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, connectivityError("request cancelled while rate limited", err)
		}
	}

	request, err := g.newRequest(ctx, method, requestPath, query, body)
	if err != nil {
		return nil, err
	}

	response, err := g.client.Do(request)
	if err != nil {
		return nil, connectivityError("remote catalog request failed", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return nil, connectivityError("failed to read remote catalog response", err)
	}

	if response.StatusCode >= http.StatusBadRequest {
		return nil, classifyStatusError(response.StatusCode, responseBody)
	}
	return responseBody, nil
}

func (g *HTTPCatalogGateway) newRequest(
	ctx context.Context,
	method string,
	requestPath string,
	query map[string]string,
	body any,
) (*http.Request, error) {
	target := *g.baseURL
	target.Path = joinBaseAndRequestPath(g.baseURL.Path, requestPath)

	values := target.Query()
	if len(query) > 0 {
		keys := make([]string, 0, len(query))
		for key := range query {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			values.Set(key, query[key])
		}
	}
	target.RawQuery = values.Encode()

	var bodyReader io.Reader
	hasBody := body != nil
	if hasBody {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, validationError("failed to encode request body", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, target.String(), bodyReader)
	if err != nil {
		return nil, internalError("failed to create remote catalog request", err)
	}

	request.Header.Set("Accept", defaultMediaType)
	if hasBody {
		request.Header.Set("Content-Type", defaultMediaType)
	}

	if len(g.defaultHeaders) > 0 {
		keys := make([]string, 0, len(g.defaultHeaders))
		for key := range g.defaultHeaders {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			request.Header.Set(key, g.defaultHeaders[key])
		}
	}

	if g.bearerToken != "" {
		request.Header.Set("Authorization", "Bearer "+g.bearerToken)
	}
	return request, nil
}

func joinBaseAndRequestPath(basePath string, requestPath string) string {
	base := strings.TrimSuffix(basePath, "/")
	request := "/" + strings.TrimPrefix(requestPath, "/")
	if base == "" {
		return request
	}
	return base + request
}
