package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zerowaste/payment-service/internal/hateoas"
	"github.com/zerowaste/payment-service/internal/jsonapi"
)

// Format is the wire format negotiated from the Accept header.
type Format int

const (
	FormatJSON Format = iota
	FormatHATEOAS
	FormatJSONAPI
)

const (
	formatKey = "response_format"

	mimeHAL  = "application/hal+json"
	mimeJSON = "application/json"
)

// NegotiateFormat picks the output format for an Accept header value.
func NegotiateFormat(accept string) Format {
	switch {
	case strings.Contains(accept, jsonapi.MediaType):
		return FormatJSONAPI
	case strings.Contains(accept, mimeHAL), strings.Contains(accept, mimeJSON):
		return FormatHATEOAS
	default:
		return FormatJSON
	}
}

func formatOf(c *gin.Context) Format {
	if v, ok := c.Get(formatKey); ok {
		if f, ok := v.(Format); ok {
			return f
		}
	}
	return FormatJSON
}

// respond writes an envelope in the format negotiated for the request.
// Handlers always build HATEOAS envelopes and never see the wire format.
func respond(c *gin.Context, status int, resp hateoas.Response) {
	switch formatOf(c) {
	case FormatJSONAPI:
		c.Header("Content-Type", jsonapi.MediaType)
		c.JSON(status, toJSONAPI(resp, status))
	case FormatHATEOAS:
		c.Header("Content-Type", mimeHAL)
		c.JSON(status, resp)
	default:
		c.Header("Content-Type", mimeJSON)
		c.JSON(status, resp)
	}
}

func toJSONAPI(resp hateoas.Response, status int) any {
	if !resp.Success {
		title := resp.Message
		if title == "" {
			title = "Error"
		}
		detail := resp.Error
		if detail == "" {
			detail = title
		}
		return jsonapi.FormatError(title, detail, status, resp.Code)
	}

	data, err := jsonapi.Normalize(resp.Data)
	if err != nil {
		return jsonapi.FormatError("Error", err.Error(), status, "ENCODING_ERROR")
	}
	links, _ := jsonapi.Normalize(resp.Links)

	switch d := data.(type) {
	case map[string]any:
		if items, ok := d["payments"].([]any); ok {
			meta := d["_meta"]
			if meta == nil {
				meta = resp.Meta
			}
			return jsonapi.FormatCollection(resourcesOf(items), "payments", meta, links)
		}
		if _, ok := d["_links"]; !ok {
			d["_links"] = links
		}
		return jsonapi.FormatSingleResource(d, "payment", map[string]any{"success": true})
	case []any:
		return jsonapi.FormatCollection(resourcesOf(d), "payments", resp.Meta, links)
	default:
		return jsonapi.FormatSingleResource(nil, "payment", map[string]any{"success": true})
	}
}

// resourcesOf accepts plain resources or per-item envelopes.
func resourcesOf(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if inner, ok := m["data"].(map[string]any); ok {
			if _, ok := inner["_links"]; !ok {
				inner["_links"] = m["_links"]
			}
			m = inner
		}
		if m["_id"] == nil && m["id"] == nil {
			if id, ok := m["paymentId"]; ok {
				m["id"] = id
			}
		}
		out = append(out, m)
	}
	return out
}
