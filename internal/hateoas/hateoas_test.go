package hateoas_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerowaste/payment-service/internal/hateoas"
)

const base = "http://localhost:3001"

func TestPaymentLinks(t *testing.T) {
	links := hateoas.PaymentLinks(base, "p1")

	require.Len(t, links, 5)
	rels := make([]string, 0, len(links))
	for _, l := range links {
		rels = append(rels, l.Rel)
	}
	assert.Equal(t, []string{"self", "cancel", "refund", "payments", "webhook"}, rels)
	assert.Equal(t, base+"/api/payments/p1", links[0].Href)
	assert.Equal(t, "GET", links[0].Method)
	assert.Equal(t, base+"/api/payments/p1/cancel", links[1].Href)
	assert.Equal(t, "POST", links[2].Method)
	assert.Equal(t, "All Payments", links[3].Title)
	assert.Equal(t, base+"/api/payments/webhook", links[4].Href)
}

func TestCollectionLinks_WithoutPagination(t *testing.T) {
	links := hateoas.CollectionLinks(base, "/api/payments", nil)

	require.Len(t, links, 2)
	assert.Equal(t, "self", links[0].Rel)
	assert.Equal(t, "create", links[1].Rel)
	assert.Equal(t, "POST", links[1].Method)
}

func TestCollectionLinks_WithPagination(t *testing.T) {
	links := hateoas.CollectionLinks(base, "/api/payments", &hateoas.PageState{Page: 2, Limit: 10, TotalPages: 3})

	rels := map[string]string{}
	for _, l := range links {
		rels[l.Rel] = l.Href
	}
	assert.Equal(t, base+"/api/payments?page=1&limit=10", rels["first"])
	assert.Equal(t, base+"/api/payments?page=1&limit=10", rels["prev"])
	assert.Equal(t, base+"/api/payments?page=3&limit=10", rels["next"])
	assert.Equal(t, base+"/api/payments?page=3&limit=10", rels["last"])
}

func TestCollectionLinks_FirstPageHasNoPrev(t *testing.T) {
	links := hateoas.CollectionLinks(base, "/api/payments", &hateoas.PageState{Page: 1, Limit: 10, TotalPages: 1})

	for _, l := range links {
		assert.NotEqual(t, "prev", l.Rel)
		assert.NotEqual(t, "next", l.Rel)
	}
}

func TestBuildRelationships(t *testing.T) {
	rels := hateoas.BuildRelationships(base, hateoas.ResourceRef{ID: "p1", UserID: "u1", ItemCount: 2})

	require.Contains(t, rels, "user")
	assert.Equal(t, base+"/api/users/u1", rels["user"].Links.Self)
	assert.Equal(t, base+"/api/users/u1/payments", rels["user"].Links.Related)
	require.Contains(t, rels, "items")
	assert.Equal(t, base+"/api/payments/p1/items", rels["items"].Links.Self)

	assert.Empty(t, hateoas.BuildRelationships(base, hateoas.ResourceRef{ID: "p1"}))
}

func TestNewResponse_EmptyBodyHasOnlyBaseKeys(t *testing.T) {
	links := []hateoas.Link{{Rel: "self", Href: "/x", Method: "GET"}}
	resp := hateoas.NewResponse(true, hateoas.Empty(), links, "msg", nil, nil)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Len(t, got, 3)
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "msg", got["message"])
	assert.Contains(t, got, "_links")
}

func TestNewResponse_SingleIsEnriched(t *testing.T) {
	data := map[string]any{"_id": "1", "userId": "u", "orderId": "o"}
	resp := hateoas.NewResponse(true,
		hateoas.Single(data, hateoas.ResourceRef{ID: "1", UserID: "u", OrderID: "o"}),
		nil, "", &hateoas.RequestContext{BaseURL: base}, nil)

	require.Contains(t, resp.Relationships, "user")
	require.NotNil(t, resp.Profiles)
	assert.Equal(t, base+"/profiles/payment/schema", resp.Profiles.Schema)
	assert.Equal(t, base+"/api-docs", resp.Profiles.Documentation)
}

func TestNewResponse_SingleWithoutOrderHasNoProfiles(t *testing.T) {
	resp := hateoas.NewResponse(true,
		hateoas.Single(map[string]any{"_id": "1", "userId": "u"}, hateoas.ResourceRef{ID: "1", UserID: "u"}),
		nil, "", &hateoas.RequestContext{BaseURL: base}, nil)

	assert.NotNil(t, resp.Relationships)
	assert.Nil(t, resp.Profiles)
}

func TestNewResponse_CollectionIsNeverEnriched(t *testing.T) {
	data := []map[string]any{{"_id": "1", "userId": "u", "orderId": "o"}}
	resp := hateoas.NewResponse(true, hateoas.Collection(data), nil, "", &hateoas.RequestContext{BaseURL: base}, nil)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "_relationships")
	assert.NotContains(t, string(raw), "_profiles")
}

func TestNewResponse_WithoutRequestContextIsNotEnriched(t *testing.T) {
	resp := hateoas.NewResponse(true,
		hateoas.Single(map[string]any{"_id": "1"}, hateoas.ResourceRef{ID: "1", UserID: "u", OrderID: "o"}),
		nil, "", nil, nil)

	assert.Nil(t, resp.Relationships)
	assert.Nil(t, resp.Profiles)
}

func TestErrorResponse(t *testing.T) {
	resp := hateoas.ErrorResponse("Payment not found", "", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "Payment not found", resp.Message)
	assert.Nil(t, resp.Data)
	assert.Empty(t, resp.Links)
}
