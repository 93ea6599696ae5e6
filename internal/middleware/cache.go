package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
)

// ResponseCache memoizes successful GET responses keyed by path and
// normalized query string.
type ResponseCache struct {
	store *cache.Cache
}

type cachedResponse struct {
	contentType string
	body        []byte
}

// NewResponseCache creates a new response cache. Entries default to ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: cache.New(ttl, 2*ttl)}
}

// Cache serves GET requests from the cache, storing 200 responses for ttl.
// A zero ttl uses the cache default.
func (c *ResponseCache) Cache(ttl time.Duration) func(next http.Handler) http.Handler {
	if ttl == 0 {
		ttl = cache.DefaultExpiration
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := cacheKey(r)
			if v, ok := c.store.Get(key); ok {
				resp := v.(cachedResponse)
				w.Header().Set("Content-Type", resp.contentType)
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(resp.body)
				return
			}

			rec := &recordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
			w.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(rec, r)

			if rec.statusCode == http.StatusOK {
				c.store.Set(key, cachedResponse{
					contentType: w.Header().Get("Content-Type"),
					body:        rec.body.Bytes(),
				}, ttl)
			}
		})
	}
}

// InvalidateOnWrite flushes the cache after any successful non-GET request
// so admin changes are visible immediately.
func (c *ResponseCache) InvalidateOnWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)
		if r.Method != http.MethodGet && ww.statusCode < http.StatusBadRequest {
			c.Flush()
		}
	})
}

// Flush drops every cached response.
func (c *ResponseCache) Flush() {
	c.store.Flush()
}

// Len reports the number of cached responses, including expired ones not yet evicted.
func (c *ResponseCache) Len() int {
	return c.store.ItemCount()
}

// Query().Encode sorts by key, so parameter order does not split entries.
func cacheKey(r *http.Request) string {
	return r.URL.Path + "?" + r.URL.Query().Encode()
}

// recordingWriter tees the response body while passing it through.
type recordingWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}
