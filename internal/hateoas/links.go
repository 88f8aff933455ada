// Package hateoas builds hypermedia links and the response envelope shared by every endpoint.
package hateoas

import (
	"fmt"
	"net/http"

	"github.com/zerowaste/payment-service/internal/pagination"
)

// PaymentsPath is the mount point of the payment collection.
const PaymentsPath = "/api/payments"

// Link is an action the client may follow from a response.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
	Title  string `json:"title,omitempty"`
}

// PageState is the pagination input of CollectionLinks.
type PageState struct {
	Page       int
	Limit      int
	TotalPages int
}

// PaymentLinks returns self, cancel, refund, payments and webhook links for one payment.
func PaymentLinks(baseURL, paymentID string) []Link {
	collection := baseURL + PaymentsPath
	self := fmt.Sprintf("%s/%s", collection, paymentID)

	return []Link{
		{Rel: "self", Href: self, Method: http.MethodGet},
		{Rel: "cancel", Href: self + "/cancel", Method: http.MethodPost},
		{Rel: "refund", Href: self + "/refund", Method: http.MethodPost},
		{Rel: "payments", Href: collection, Method: http.MethodGet, Title: "All Payments"},
		{Rel: "webhook", Href: collection + "/webhook", Method: http.MethodPost, Title: "Payment Webhook"},
	}
}

// CollectionLinks returns self and create for route, plus page navigation when page is set.
func CollectionLinks(baseURL, route string, page *PageState) []Link {
	href := baseURL + route
	links := []Link{
		{Rel: "self", Href: href, Method: http.MethodGet},
		{Rel: "create", Href: href, Method: http.MethodPost, Title: "Create new resource"},
	}
	if page == nil {
		return links
	}

	pageHref := func(p int) string {
		return fmt.Sprintf("%s?page=%d&limit=%d", href, p, page.Limit)
	}
	links = append(links, Link{Rel: "first", Href: pageHref(1), Method: http.MethodGet})
	if page.Page > 1 {
		links = append(links, Link{Rel: "prev", Href: pageHref(page.Page - 1), Method: http.MethodGet})
	}
	if page.Page < page.TotalPages {
		links = append(links, Link{Rel: "next", Href: pageHref(page.Page + 1), Method: http.MethodGet})
	}
	links = append(links, Link{Rel: "last", Href: pageHref(page.TotalPages), Method: http.MethodGet})

	return links
}

// FromPagination converts calculated page links into link descriptors.
func FromPagination(links pagination.Links) []Link {
	out := []Link{{Rel: "self", Href: links.Self.Href, Method: http.MethodGet}}
	for _, rel := range links.Navigation() {
		out = append(out, Link{Rel: rel.Name, Href: rel.Href, Method: http.MethodGet})
	}
	return out
}

// ResourceRef carries the fields the envelope builder inspects on a single resource.
type ResourceRef struct {
	ID        string
	UserID    string
	OrderID   string
	ItemCount int
}

// RelationshipLinks are the self and related targets of one relationship.
type RelationshipLinks struct {
	Self    string `json:"self"`
	Related string `json:"related,omitempty"`
}

// Relationship wraps the links of a related resource.
type Relationship struct {
	Links RelationshipLinks `json:"links"`
}

// BuildRelationships emits user and items relationships for the fields ref carries.
func BuildRelationships(baseURL string, ref ResourceRef) map[string]Relationship {
	rels := make(map[string]Relationship)
	if ref.UserID != "" {
		rels["user"] = Relationship{Links: RelationshipLinks{
			Self:    fmt.Sprintf("%s/api/users/%s", baseURL, ref.UserID),
			Related: fmt.Sprintf("%s/api/users/%s/payments", baseURL, ref.UserID),
		}}
	}
	if ref.ItemCount > 0 && ref.ID != "" {
		rels["items"] = Relationship{Links: RelationshipLinks{
			Self: fmt.Sprintf("%s%s/%s/items", baseURL, PaymentsPath, ref.ID),
		}}
	}
	return rels
}

// Profiles points at the RFC 6906 profile documents of a resource type.
type Profiles struct {
	Documentation string `json:"documentation"`
	Schema        string `json:"schema"`
	Resource      string `json:"resource"`
	Collection    string `json:"collection"`
}

// ResourceProfiles returns the profile links for resourceType.
func ResourceProfiles(baseURL, resourceType string) Profiles {
	return Profiles{
		Documentation: baseURL + "/api-docs",
		Schema:        fmt.Sprintf("%s/profiles/%s/schema", baseURL, resourceType),
		Resource:      baseURL + "/profiles/payment",
		Collection:    baseURL + "/profiles/payments",
	}
}

// ProfileURL is the profile document of resourceType.
func ProfileURL(baseURL, resourceType string) string {
	return fmt.Sprintf("%s/profiles/%s", baseURL, resourceType)
}
