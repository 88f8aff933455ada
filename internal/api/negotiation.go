package api

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zerowaste/payment-service/internal/hateoas"
	"github.com/zerowaste/payment-service/internal/pagination"
)

const (
	versionKey    = "api_version"
	paginationKey = "pagination"

	// DefaultVersion is assumed when a request names no version.
	DefaultVersion = "1.0.0"
)

// ContentNegotiation reads the Accept header once and records the output format.
// Requests on a payment resource also get a profile Link header.
func ContentNegotiation() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(formatKey, NegotiateFormat(c.GetHeader("Accept")))

		if isPaymentResource(c.Request.URL.Path) {
			c.Header("Link", fmt.Sprintf(`<%s>; rel="profile"`, hateoas.ProfileURL(baseURL(c), "payment")))
		}

		c.Next()
	}
}

func isPaymentResource(path string) bool {
	return strings.HasPrefix(path, hateoas.PaymentsPath+"/")
}

// VersionHeaders advertises the API version and where to discover it.
func VersionHeaders(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		base := baseURL(c)
		c.Header("X-API-Version", version)
		c.Header("Link", fmt.Sprintf(`<%s/api>; rel="current-version", <%s/api/docs>; rel="documentation"`, base, base))
		c.Next()
	}
}

var acceptVersion = regexp.MustCompile(`version=([\d.]+)`)

// Versioned dispatches to the handler registered for the requested version.
// The version comes from the Accept header or the version query parameter.
// Unknown versions use the "default" handler when present, otherwise 406.
func Versioned(handlers map[string]gin.HandlerFunc) gin.HandlerFunc {
	supported := make([]string, 0, len(handlers))
	for v := range handlers {
		if v != "default" {
			supported = append(supported, v)
		}
	}
	sort.Strings(supported)

	return func(c *gin.Context) {
		version := DefaultVersion
		if m := acceptVersion.FindStringSubmatch(c.GetHeader("Accept")); m != nil {
			version = m[1]
		} else if q := c.Query("version"); q != "" {
			version = q
		}

		handler, ok := handlers[version]
		if !ok {
			handler, ok = handlers["default"]
		}
		if !ok {
			resp := hateoas.ErrorResponse("API version not supported", "", nil)
			resp.Code = "UNSUPPORTED_VERSION"
			resp.Meta = gin.H{"supportedVersions": supported}
			respond(c, http.StatusNotAcceptable, resp)
			c.Abort()
			return
		}

		c.Set(versionKey, version)
		handler(c)
	}
}

// Pagination validates page and limit and stores them for the handler.
// Missing or non-numeric values fall back to the defaults.
func Pagination() gin.HandlerFunc {
	return func(c *gin.Context) {
		page := queryInt(c, "page", pagination.DefaultPage)
		limit := queryInt(c, "limit", pagination.DefaultLimit)

		if page < 1 || limit < 1 || limit > pagination.MaxLimit {
			resp := hateoas.ErrorResponse(
				fmt.Sprintf("Invalid pagination parameters. Page must be >= 1, limit must be between 1 and %d.", pagination.MaxLimit),
				"", nil)
			resp.Code = "INVALID_PAGINATION"
			respond(c, http.StatusBadRequest, resp)
			c.Abort()
			return
		}

		c.Set(paginationKey, pagination.Params{Page: page, Limit: limit})
		c.Next()
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}

func pageParams(c *gin.Context) pagination.Params {
	if v, ok := c.Get(paginationKey); ok {
		if p, ok := v.(pagination.Params); ok {
			return p
		}
	}
	return pagination.Params{Page: pagination.DefaultPage, Limit: pagination.DefaultLimit}
}

// setPaginationHeaders exposes page navigation to clients that ignore the body.
func setPaginationHeaders(c *gin.Context, info pagination.Info) {
	if link := pagination.LinkHeader(info.Links); link != "" {
		c.Header("Link", link)
	}
	c.Header("X-Pagination-Page", strconv.Itoa(info.Meta.CurrentPage))
	c.Header("X-Pagination-Limit", strconv.Itoa(info.Meta.ItemsPerPage))
	c.Header("X-Pagination-Total", strconv.FormatInt(info.Meta.TotalItems, 10))
	c.Header("X-Pagination-Pages", strconv.Itoa(info.Meta.TotalPages))
}
