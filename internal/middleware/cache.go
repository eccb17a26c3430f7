package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tripworks/seatline/internal/config"
)

// captureWriter tees the response body into a buffer, capped at limit,
// while forwarding everything to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size < cw.limit {
		remain := cw.limit - cw.size
		if cw.limit <= 0 || int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else if remain > 0 {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// cacheKey hashes route and query so the key stays short and opaque.
func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// payload layout: [4 bytes status][4 bytes ctypeLen][ctype][body]
func encodePayload(status int, ctype string, body []byte) []byte {
	out := make([]byte, 8+len(ctype)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(ctype)))
	copy(out[8:], ctype)
	copy(out[8+len(ctype):], body)
	return out
}

func decodePayload(bs []byte) (status int, ctype string, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, "", nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	clen := int(binary.BigEndian.Uint32(bs[4:8]))
	if clen < 0 || 8+clen > len(bs) {
		return 0, "", nil, false
	}
	return status, string(bs[8 : 8+clen]), bs[8+clen:], true
}

// NewRedisCache caches successful GET responses in Redis for the
// configured TTL. It is applied only to the public route listing; seat
// snapshots and booking state always hit the engine.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			key := cacheKey(cfg.Prefix, c)

			if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				if status, ctype, body, ok := decodePayload(bs); ok {
					if ctype != "" {
						c.Response().Header().Set(echo.HeaderContentType, ctype)
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			}

			cw := &captureWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Only complete 200 responses are cacheable; a body that hit the
			// capture limit is stored truncated otherwise.
			if cw.status == http.StatusOK && (cw.limit <= 0 || cw.size <= cw.limit) {
				ctype := c.Response().Header().Get(echo.HeaderContentType)
				payload := encodePayload(cw.status, ctype, cw.buf.Bytes())
				_ = rdb.SetEx(context.Background(), key, payload, cfg.TTL).Err()
			}
			return nil
		}
	}
}
