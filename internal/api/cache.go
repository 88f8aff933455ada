package api

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zerowaste/payment-service/internal/domain"
)

// CacheHeaders marks GET and HEAD responses cacheable for maxAge.
// Every other method is marked non-cacheable.
func CacheHeaders(maxAge time.Duration) gin.HandlerFunc {
	seconds := int(maxAge.Seconds())
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", seconds))
			c.Header("Expires", time.Now().Add(maxAge).UTC().Format(http.TimeFormat))
		} else {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}

// bufferedWriter holds the response until the ETag is known.
type bufferedWriter struct {
	gin.ResponseWriter
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func (w *bufferedWriter) WriteHeader(code int) {
	if code > 0 {
		w.status = code
		w.wroteHeader = true
	}
}

func (w *bufferedWriter) WriteHeaderNow() {
	w.wroteHeader = true
}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.body.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	w.wroteHeader = true
	return w.body.WriteString(s)
}

func (w *bufferedWriter) Status() int {
	return w.status
}

func (w *bufferedWriter) Size() int {
	if !w.wroteHeader {
		return -1
	}
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool {
	return w.wroteHeader
}

// ETag tags successful responses with the MD5 of their body and answers
// a matching If-None-Match with 304.
func ETag() gin.HandlerFunc {
	return func(c *gin.Context) {
		original := c.Writer
		buf := &bufferedWriter{ResponseWriter: original, status: original.Status()}
		c.Writer = buf

		c.Next()

		c.Writer = original
		if !buf.wroteHeader {
			return
		}

		if buf.status == http.StatusOK && buf.body.Len() > 0 {
			sum := md5.Sum(buf.body.Bytes())
			etag := `"` + hex.EncodeToString(sum[:]) + `"`
			original.Header().Set("ETag", etag)

			if c.GetHeader("If-None-Match") == etag {
				original.Header().Del("Content-Type")
				original.Header().Del("Content-Length")
				original.WriteHeader(http.StatusNotModified)
				original.WriteHeaderNow()
				return
			}
		}

		original.WriteHeader(buf.status)
		original.WriteHeaderNow()
		if buf.body.Len() > 0 {
			_, _ = original.Write(buf.body.Bytes())
		}
	}
}

// LastModifiedFunc returns the modification time of the requested resource.
type LastModifiedFunc func(c *gin.Context) (time.Time, error)

// LastModified sets Last-Modified and answers a satisfied If-Modified-Since with 304.
// A missing resource is left to the handler.
func LastModified(load LastModifiedFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		modified, err := load(c)
		if err != nil {
			if errors.Is(err, domain.ErrPaymentNotFound) {
				c.Next()
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}
		if modified.IsZero() {
			c.Next()
			return
		}

		// HTTP dates carry whole seconds.
		modified = modified.UTC().Truncate(time.Second)
		c.Header("Last-Modified", modified.Format(http.TimeFormat))

		if since := c.GetHeader("If-Modified-Since"); since != "" {
			if t, err := http.ParseTime(since); err == nil && !modified.After(t) {
				c.AbortWithStatus(http.StatusNotModified)
				return
			}
		}

		c.Next()
	}
}
