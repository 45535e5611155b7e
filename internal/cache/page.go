package cache

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/anonto42/nano-blog/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// KeyPrefix namespaces page entries inside a Store.
const KeyPrefix = "page:"

// HeaderCache reports whether a response came from the cache.
const HeaderCache = "X-Cache"

type entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyRecorder struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Key returns the store key for a request URI (path plus query).
func Key(requestURI string) string {
	return KeyPrefix + requestURI
}

// CachePage serves GET responses from store while they are fresh and
// records successful responses. Store failures are logged and the page
// is rendered directly.
func CachePage(store Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}
			ctx := req.Context()
			log := logger.FromContext(ctx)
			key := Key(req.URL.RequestURI())

			raw, ok, err := store.Get(ctx, key)
			if err != nil {
				log.Warn("page cache read failed", "key", key, "error", err)
			} else if ok {
				var e entry
				if err := json.Unmarshal(raw, &e); err == nil {
					c.Response().Header().Set(HeaderCache, "HIT")
					return c.Blob(e.Status, e.ContentType, e.Body)
				}
				log.Warn("page cache entry corrupt", "key", key)
			}

			res := c.Response()
			rec := &bodyRecorder{ResponseWriter: res.Writer}
			res.Writer = rec
			res.Header().Set(HeaderCache, "MISS")
			err = next(c)
			res.Writer = rec.ResponseWriter
			if err != nil || res.Status != http.StatusOK {
				return err
			}

			payload, err := json.Marshal(entry{
				Status:      res.Status,
				ContentType: res.Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
			})
			if err == nil {
				err = store.Set(ctx, key, payload)
			}
			if err != nil {
				log.Warn("page cache write failed", "key", key, "error", err)
			}
			return nil
		}
	}
}
