// Package jsonapi re-encodes plain resources into JSON:API documents.
package jsonapi

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	// Version is the JSON:API version advertised in every document.
	Version = "1.0"
	// MediaType is the JSON:API content type.
	MediaType = "application/vnd.api+json"
)

// Info is the top-level jsonapi member.
type Info struct {
	Version string `json:"version"`
}

// ResourceLinks holds the self link of a resource object, null when unknown.
type ResourceLinks struct {
	Self *string `json:"self"`
}

// Resource is a JSON:API resource object.
type Resource struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
	Links      ResourceLinks  `json:"links"`
}

// Document is a single-resource document.
type Document struct {
	JSONAPI Info      `json:"jsonapi"`
	Meta    any       `json:"meta"`
	Data    *Resource `json:"data"`
}

// CollectionDocument is a resource collection document.
type CollectionDocument struct {
	JSONAPI Info       `json:"jsonapi"`
	Meta    any        `json:"meta"`
	Links   any        `json:"links"`
	Data    []Resource `json:"data"`
}

// Error is a JSON:API error object. Status is the HTTP status as a string.
type Error struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
}

// ErrorDocument carries errors instead of data.
type ErrorDocument struct {
	JSONAPI Info    `json:"jsonapi"`
	Errors  []Error `json:"errors"`
}

var internalFields = []string{"_id", "id", "__v", "_links"}

// FormatResource converts a plain resource. A nil resource yields nil.
func FormatResource(resource map[string]any, resourceType string) *Resource {
	if resource == nil {
		return nil
	}

	attributes := make(map[string]any, len(resource))
	for k, v := range resource {
		attributes[k] = v
	}
	for _, k := range internalFields {
		delete(attributes, k)
	}

	return &Resource{
		Type:       resourceType,
		ID:         identifier(resource),
		Attributes: attributes,
		Links:      ResourceLinks{Self: selfLink(resource["_links"])},
	}
}

// FormatCollection wraps formatted resources. Nil meta and links become empty objects.
func FormatCollection(resources []map[string]any, resourceType string, meta, links any) CollectionDocument {
	data := make([]Resource, 0, len(resources))
	for _, r := range resources {
		if formatted := FormatResource(r, resourceType); formatted != nil {
			data = append(data, *formatted)
		}
	}
	return CollectionDocument{
		JSONAPI: Info{Version: Version},
		Meta:    orEmpty(meta),
		Links:   orEmpty(links),
		Data:    data,
	}
}

// FormatSingleResource wraps one formatted resource.
func FormatSingleResource(resource map[string]any, resourceType string, meta any) Document {
	return Document{
		JSONAPI: Info{Version: Version},
		Meta:    orEmpty(meta),
		Data:    FormatResource(resource, resourceType),
	}
}

// FormatError builds an error document with a single error object.
func FormatError(title, detail string, status int, code string) ErrorDocument {
	return ErrorDocument{
		JSONAPI: Info{Version: Version},
		Errors: []Error{{
			Title:  title,
			Detail: detail,
			Status: strconv.Itoa(status),
			Code:   code,
		}},
	}
}

// Normalize turns any JSON-encodable value into its generic decoded form
// (maps, slices, float64, string, bool, nil).
func Normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode resource: %w", err)
	}
	return out, nil
}

func identifier(resource map[string]any) string {
	for _, key := range []string{"_id", "id"} {
		switch v := resource[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case fmt.Stringer:
			return v.String()
		}
	}
	return ""
}

// selfLink accepts either a {self:{href}} map or a [{rel,href}] list.
func selfLink(links any) *string {
	switch l := links.(type) {
	case map[string]any:
		if self, ok := l["self"].(map[string]any); ok {
			if href, ok := self["href"].(string); ok {
				return &href
			}
		}
	case []any:
		for _, entry := range l {
			link, ok := entry.(map[string]any)
			if !ok || link["rel"] != "self" {
				continue
			}
			if href, ok := link["href"].(string); ok {
				return &href
			}
		}
	}
	return nil
}

func orEmpty(v any) any {
	if v == nil {
		return map[string]any{}
	}
	return v
}
