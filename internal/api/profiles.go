package api

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/zerowaste/payment-service/internal/hateoas"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed profiles
var profileFS embed.FS

// Templates parses the embedded HTML templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// Profile handles GET /profiles/:type
// It serves the RFC 6906 profile document of a resource type.
func (h *Handler) Profile(c *gin.Context) {
	resourceType := c.Param("type")
	content, err := fs.ReadFile(profileFS, path.Join("profiles", path.Base(resourceType), "index.md"))
	if err != nil {
		h.profileNotFound(c, err, fmt.Sprintf("Profile for %s not found", resourceType))
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", content)
}

// ProfileSchema handles GET /profiles/:type/schema
func (h *Handler) ProfileSchema(c *gin.Context) {
	resourceType := c.Param("type")
	content, err := fs.ReadFile(profileFS, path.Join("profiles", path.Base(resourceType), "schema.json"))
	if err != nil {
		h.profileNotFound(c, err, fmt.Sprintf("Schema for %s not found", resourceType))
		return
	}
	c.Header("Link", fmt.Sprintf(`<%s>; rel="profile"`, hateoas.ProfileURL(baseURL(c), resourceType)))
	c.Data(http.StatusOK, "application/schema+json", content)
}

func (h *Handler) profileNotFound(c *gin.Context, err error, message string) {
	if !errors.Is(err, fs.ErrNotExist) {
		_ = c.Error(err)
		return
	}
	resp := hateoas.ErrorResponse(message, "", nil)
	resp.Code = "NOT_FOUND"
	respond(c, http.StatusNotFound, resp)
}

// APIDocs handles GET /api-docs by pointing at the payment profile.
func (h *Handler) APIDocs(c *gin.Context) {
	c.Redirect(http.StatusFound, "/profiles/payment")
}
