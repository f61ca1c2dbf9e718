package mw

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CacheHeader reports whether a response was served from the cache.
const CacheHeader = "X-Cache"

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache keeps successful GET responses of slow-changing resources
// in memory until they expire or a writer invalidates their path.
type ResponseCache struct {
	store *cache.Cache
	ttl   time.Duration
}

// NewResponseCache creates a cache whose entries live for ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: cache.New(ttl, 2*ttl), ttl: ttl}
}

// cacheKey ignores query parameter order so equivalent URLs share an entry.
func cacheKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.Query().Encode()
}

// Invalidate drops the cached responses for path, whatever their query.
func (rc *ResponseCache) Invalidate(path string) {
	for key := range rc.store.Items() {
		if key == path || strings.HasPrefix(key, path+"?") {
			rc.store.Delete(key)
		}
	}
}

// Middleware serves cached GET responses and records 200 responses. A
// request with "Cache-Control: no-cache" skips the lookup but refreshes
// the entry.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c.Request)
		if !strings.Contains(c.GetHeader("Cache-Control"), "no-cache") {
			if v, found := rc.store.Get(key); found {
				cached := v.(cachedResponse)
				for k, vals := range cached.headers {
					c.Writer.Header()[k] = vals
				}
				c.Writer.Header().Set(CacheHeader, "HIT")
				c.Writer.WriteHeader(cached.status)
				_, _ = c.Writer.Write(cached.body)
				c.Abort()
				return
			}
		}

		w := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = w
		c.Header(CacheHeader, "MISS")

		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		headers := w.Header().Clone()
		headers.Del(CacheHeader)
		headers.Del(RequestIDHeader)
		rc.store.Set(key, cachedResponse{status: w.Status(), headers: headers, body: w.body.Bytes()}, rc.ttl)
	}
}
