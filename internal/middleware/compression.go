package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize          int
	CompressionLevel int
	ContentTypes     []string
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
		},
	}
}

// CompressionMiddleware provides gzip compression for HTTP responses
type CompressionMiddleware struct {
	config CompressionConfig
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	cm := &CompressionMiddleware{config: config}
	cm.pool.New = func() interface{} {
		writer, _ := gzip.NewWriterLevel(io.Discard, config.CompressionLevel)
		return writer
	}
	return cm
}

// Handler returns the gin middleware
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gz := cm.pool.Get().(*gzip.Writer)
		defer cm.pool.Put(gz)

		gzw := &gzipResponseWriter{
			ResponseWriter: c.Writer,
			gz:             gz,
			config:         &cm.config,
		}
		c.Writer = gzw

		c.Next()

		gzw.close()
	}
}

// gzipResponseWriter compresses the response once the first write shows
// the body is large enough and of a compressible content type. The
// decision is deferred to the first Write because gin sets headers late.
type gzipResponseWriter struct {
	gin.ResponseWriter
	gz          *gzip.Writer
	config      *CompressionConfig
	compressing bool
	decided     bool
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decided = true
		if len(data) >= w.config.MinSize && w.compressible() {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Del("Content-Length")
			w.gz.Reset(w.ResponseWriter)
			w.compressing = true
		}
	}

	if w.compressing {
		return w.gz.Write(data)
	}
	return w.ResponseWriter.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipResponseWriter) compressible() bool {
	contentType := w.Header().Get("Content-Type")
	for _, allowed := range w.config.ContentTypes {
		if strings.Contains(contentType, allowed) {
			return true
		}
	}
	return false
}

func (w *gzipResponseWriter) close() {
	if w.compressing {
		w.gz.Close()
	}
}

// Flush flushes buffered compressed data to the client
func (w *gzipResponseWriter) Flush() {
	if w.compressing {
		w.gz.Flush()
	}
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
