package middleware

import (
	"mime"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/gin-gonic/gin"
)

type BrotliConfig struct {
	Quality   int
	MinLength int
	Skipper   func(c *gin.Context) bool
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// incompressible lists content types that are already compressed. XLSX
// exports are zip archives.
var incompressible = map[string]bool{
	"application/zip":       true,
	"application/gzip":      true,
	"application/pdf":       true,
	"image/png":             true,
	"image/jpeg":            true,
	"image/webp":            true,
	service.XLSXContentType: true,
}

// brotliWriter buffers the first MinLength bytes, then decides once whether
// the response is worth compressing.
type brotliWriter struct {
	gin.ResponseWriter
	cfg     BrotliConfig
	buf     []byte
	br      *brotli.Writer
	decided bool
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.decided {
		if bw.br != nil {
			return bw.br.Write(data)
		}
		return bw.ResponseWriter.Write(data)
	}

	bw.buf = append(bw.buf, data...)
	if len(bw.buf) < bw.cfg.MinLength {
		return len(data), nil
	}
	if err := bw.decide(true); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// decide picks plain or compressed output and writes out the buffer.
// large reports whether the body reached MinLength.
func (bw *brotliWriter) decide(large bool) error {
	bw.decided = true

	h := bw.ResponseWriter.Header()
	if large && h.Get("Content-Encoding") == "" && compressible(h.Get("Content-Type")) {
		h.Set("Content-Encoding", "br")
		h.Del("Content-Length")
		bw.br = brotli.NewWriterLevel(bw.ResponseWriter, bw.cfg.Quality)
		_, err := bw.br.Write(bw.buf)
		bw.buf = nil
		return err
	}

	_, err := bw.ResponseWriter.Write(bw.buf)
	bw.buf = nil
	return err
}

// Flush is called by streaming endpoints. Anything flushed before the
// decision goes out uncompressed.
func (bw *brotliWriter) Flush() {
	if !bw.decided {
		_ = bw.decide(false)
	}
	if bw.br != nil {
		_ = bw.br.Flush()
	}
	bw.ResponseWriter.Flush()
}

func (bw *brotliWriter) close() error {
	if !bw.decided {
		if len(bw.buf) == 0 {
			return nil
		}
		if err := bw.decide(false); err != nil {
			return err
		}
	}
	if bw.br != nil {
		return bw.br.Close()
	}
	return nil
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if shouldSkip(c) || (cfg.Skipper != nil && cfg.Skipper(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{ResponseWriter: c.Writer, cfg: cfg}
		c.Writer = bw
		defer func() {
			if err := bw.close(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

// shouldSkip returns true for streaming protocols that must reach the client
// unbuffered.
func shouldSkip(c *gin.Context) bool {
	if c.Request.Method == http.MethodHead {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return true
	}
	return false
}

func compressible(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return !incompressible[mediaType]
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
