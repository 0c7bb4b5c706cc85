package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/acrylJonny/metasync/catalog"
	"github.com/acrylJonny/metasync/metaobject"
)

type wireObject struct {
	URN        string                `json:"urn"`
	EntityType metaobject.EntityType `json:"entityType"`
	Definition metaobject.Definition `json:"definition"`
}

type wireListResponse struct {
	Objects  []wireObject `json:"objects"`
	ScrollID string       `json:"scrollId,omitempty"`
}

type wireCreateResponse struct {
	URN string `json:"urn"`
}

type wireReferenceEntry struct {
	URN         string `json:"urn"`
	DisplayName string `json:"displayName"`
}

type wireReferenceData struct {
	Users          []wireReferenceEntry `json:"users"`
	Groups         []wireReferenceEntry `json:"groups"`
	OwnershipTypes []wireReferenceEntry `json:"ownershipTypes"`
}

func decodeBody(body []byte, target any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return validationError("remote catalog returned an empty body", nil)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return validationError("remote catalog response is not valid JSON", err)
	}
	return nil
}

func decodeObjectResponse(body []byte) (metaobject.MetadataObject, error) {
	var wire wireObject
	if err := decodeBody(body, &wire); err != nil {
		return metaobject.MetadataObject{}, err
	}
	return wire.toObject()
}

func decodeCreateResponse(body []byte) (string, error) {
	var wire wireCreateResponse
	if err := decodeBody(body, &wire); err != nil {
		return "", err
	}
	if strings.TrimSpace(wire.URN) == "" {
		return "", validationError("create response did not include a urn", nil)
	}
	return wire.URN, nil
}

func decodeListResponse(body []byte) ([]metaobject.MetadataObject, string, error) {
	var wire wireListResponse
	if err := decodeBody(body, &wire); err != nil {
		return nil, "", err
	}

	objects := make([]metaobject.MetadataObject, 0, len(wire.Objects))
	for _, entry := range wire.Objects {
		obj, err := entry.toObject()
		if err != nil {
			return nil, "", err
		}
		objects = append(objects, obj)
	}
	return objects, wire.ScrollID, nil
}

func decodeReferenceDataResponse(body []byte) (catalog.ReferenceData, error) {
	var wire wireReferenceData
	if err := decodeBody(body, &wire); err != nil {
		return catalog.ReferenceData{}, err
	}

	data := catalog.ReferenceData{}
	for _, user := range wire.Users {
		data.Users = append(data.Users, catalog.ReferenceEntry{URN: user.URN, DisplayName: user.DisplayName})
	}
	for _, group := range wire.Groups {
		data.Groups = append(data.Groups, catalog.ReferenceEntry{URN: group.URN, DisplayName: group.DisplayName})
	}
	for _, ownershipType := range wire.OwnershipTypes {
		data.OwnershipTypes = append(data.OwnershipTypes, catalog.OwnershipType{
			URN:         ownershipType.URN,
			DisplayName: ownershipType.DisplayName,
		})
	}
	return data, nil
}

func (w wireObject) toObject() (metaobject.MetadataObject, error) {
	if strings.TrimSpace(w.URN) == "" {
		return metaobject.MetadataObject{}, validationError("remote object is missing a urn", nil)
	}
	if !w.EntityType.Valid() {
		return metaobject.MetadataObject{}, validationError(
			fmt.Sprintf("remote object %q has unsupported entity type %q", w.URN, w.EntityType), nil)
	}

	definition := w.Definition
	if definition.Payload != nil {
		normalized, err := metaobject.Normalize(definition.Payload)
		if err != nil {
			return metaobject.MetadataObject{}, err
		}
		definition.Payload = normalized
	}

	return metaobject.MetadataObject{
		URN:        w.URN,
		EntityType: w.EntityType,
		Definition: definition,
	}, nil
}

func classifyStatusError(statusCode int, body []byte) error {
	message := fmt.Sprintf("remote catalog request failed with status %d: %s", statusCode, summarizeBody(body))

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return authError(message, nil)
	case http.StatusNotFound:
		return notFoundError(message, nil)
	case http.StatusConflict:
		return conflictError(message, nil)
	case http.StatusTooManyRequests:
		return rateLimitError(message, nil)
	}

	if statusCode >= 400 && statusCode < 500 {
		return validationError(message, nil)
	}
	return connectivityError(message, nil)
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	if len(trimmed) > 512 {
		return trimmed[:512] + "..."
	}
	return trimmed
}
