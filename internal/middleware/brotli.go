package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
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

// brotliWriter holds the body until the handler returns, then writes it
// compressed when it reached minLength and plain otherwise. A Flush switches
// to pass-through for the rest of the response.
type brotliWriter struct {
	gin.ResponseWriter
	buf         bytes.Buffer
	passthrough bool
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.passthrough {
		return bw.ResponseWriter.Write(data)
	}
	return bw.buf.Write(data)
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

func (bw *brotliWriter) Flush() {
	if !bw.passthrough {
		bw.passthrough = true
		if bw.buf.Len() > 0 {
			_, _ = bw.ResponseWriter.Write(bw.buf.Bytes())
			bw.buf.Reset()
		}
	}
	bw.ResponseWriter.Flush()
}

func (bw *brotliWriter) finish(quality, minLength int) error {
	if bw.passthrough || bw.buf.Len() == 0 {
		return nil
	}
	if bw.buf.Len() < minLength || bw.Header().Get("Content-Encoding") != "" {
		_, err := bw.ResponseWriter.Write(bw.buf.Bytes())
		return err
	}

	bw.Header().Set("Content-Encoding", "br")
	bw.Header().Del("Content-Length")
	w := brotli.NewWriterLevel(bw.ResponseWriter, quality)
	if _, err := w.Write(bw.buf.Bytes()); err != nil {
		return err
	}
	return w.Close()
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
		if isUpgrade(c) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}
		if cfg.Skipper != nil && cfg.Skipper(c) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{ResponseWriter: c.Writer}
		c.Writer = bw
		defer func() {
			c.Writer = bw.ResponseWriter
			if err := bw.finish(cfg.Quality, cfg.MinLength); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

// isUpgrade reports WebSocket handshakes, which must reach the hijacker unwrapped.
func isUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.EqualFold(strings.TrimSpace(strings.SplitN(enc, ";", 2)[0]), "br") {
			return true
		}
	}
	return false
}
