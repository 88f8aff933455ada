package hateoas

// Body is the payload of an envelope: Single, Collection or Empty.
type Body interface {
	payload() any
}

type singleBody struct {
	data any
	ref  ResourceRef
}

func (b singleBody) payload() any { return b.data }

type collectionBody struct {
	data any
}

func (b collectionBody) payload() any { return b.data }

type emptyBody struct{}

func (emptyBody) payload() any { return nil }

// Single is one resource. ref drives relationship and profile enrichment.
func Single(data any, ref ResourceRef) Body {
	return singleBody{data: data, ref: ref}
}

// Collection is a list or a listing wrapper. It is never enriched.
func Collection(data any) Body {
	return collectionBody{data: data}
}

// Empty carries no data.
func Empty() Body {
	return emptyBody{}
}

// RequestContext enables enrichment of single resources.
type RequestContext struct {
	BaseURL string
}

// Response is the HATEOAS envelope returned by every endpoint.
type Response struct {
	Success       bool                    `json:"success"`
	Data          any                     `json:"data,omitempty"`
	Links         []Link                  `json:"_links"`
	Message       string                  `json:"message,omitempty"`
	Error         string                  `json:"error,omitempty"`
	Code          string                  `json:"code,omitempty"`
	Meta          any                     `json:"_meta,omitempty"`
	Relationships map[string]Relationship `json:"_relationships,omitempty"`
	Profiles      *Profiles               `json:"_profiles,omitempty"`
}

// NewResponse builds an envelope. Relationships are attached only to a Single body
// with an ID when rc is set; profiles additionally require an OrderID.
func NewResponse(success bool, body Body, links []Link, message string, rc *RequestContext, meta any) Response {
	if links == nil {
		links = []Link{}
	}
	if body == nil {
		body = Empty()
	}

	resp := Response{
		Success: success,
		Data:    body.payload(),
		Links:   links,
		Message: message,
		Meta:    meta,
	}

	single, ok := body.(singleBody)
	if !ok || rc == nil || single.ref.ID == "" {
		return resp
	}

	if rels := BuildRelationships(rc.BaseURL, single.ref); len(rels) > 0 {
		resp.Relationships = rels
	}
	if single.ref.OrderID != "" {
		profiles := ResourceProfiles(rc.BaseURL, "payment")
		resp.Profiles = &profiles
	}

	return resp
}

// ErrorResponse builds a failed envelope with an optional error detail.
func ErrorResponse(message, detail string, links []Link) Response {
	resp := NewResponse(false, Empty(), links, message, nil, nil)
	resp.Error = detail
	return resp
}
