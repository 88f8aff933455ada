package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerowaste/payment-service/internal/hateoas"
	"github.com/zerowaste/payment-service/internal/jsonapi"
)

func TestNegotiateFormat(t *testing.T) {
	tests := []struct {
		accept string
		want   Format
	}{
		{"", FormatJSON},
		{"*/*", FormatJSON},
		{"text/html", FormatJSON},
		{"application/json", FormatHATEOAS},
		{"application/hal+json", FormatHATEOAS},
		{"application/vnd.api+json", FormatJSONAPI},
		{"application/json, application/vnd.api+json", FormatJSONAPI},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			assert.Equal(t, tt.want, NegotiateFormat(tt.accept))
		})
	}
}

func TestToJSONAPI_Error(t *testing.T) {
	resp := hateoas.ErrorResponse("Payment not found", "", nil)
	resp.Code = "NOT_FOUND"

	doc, ok := toJSONAPI(resp, http.StatusNotFound).(jsonapi.ErrorDocument)
	require.True(t, ok)
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "Payment not found", doc.Errors[0].Title)
	assert.Equal(t, "Payment not found", doc.Errors[0].Detail)
	assert.Equal(t, "404", doc.Errors[0].Status)
	assert.Equal(t, "NOT_FOUND", doc.Errors[0].Code)
}

func TestToJSONAPI_EnvelopedItems(t *testing.T) {
	item := hateoas.NewResponse(true,
		hateoas.Single(map[string]any{"paymentId": "p1", "status": "pending"}, hateoas.ResourceRef{ID: "p1"}),
		hateoas.PaymentLinks("http://x", "p1"), "", nil, nil)
	resp := hateoas.NewResponse(true, hateoas.Collection([]hateoas.Response{item}), nil, "", nil, map[string]any{"total": 1})

	doc, ok := toJSONAPI(resp, http.StatusOK).(jsonapi.CollectionDocument)
	require.True(t, ok)
	require.Len(t, doc.Data, 1)
	assert.Equal(t, "p1", doc.Data[0].ID)
	assert.Equal(t, "pending", doc.Data[0].Attributes["status"])
	require.NotNil(t, doc.Data[0].Links.Self)
	assert.Equal(t, "http://x/api/payments/p1", *doc.Data[0].Links.Self)
	assert.Equal(t, map[string]any{"total": 1}, doc.Meta)
}

func TestToJSONAPI_EmptyBody(t *testing.T) {
	resp := hateoas.NewResponse(true, hateoas.Empty(), nil, "ok", nil, nil)

	doc, ok := toJSONAPI(resp, http.StatusAccepted).(jsonapi.Document)
	require.True(t, ok)
	assert.Nil(t, doc.Data)
}

func TestCacheHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CacheHeaders(30 * time.Second))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "public, max-age=30", w.Header().Get("Cache-Control"))
	expires, err := http.ParseTime(w.Header().Get("Expires"))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), expires, 2*time.Second)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
}

func TestETag_SkipsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/missing", ETag(), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))
	assert.JSONEq(t, `{"success":false}`, w.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
