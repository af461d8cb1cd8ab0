package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"library-backend/pkg/id"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"

	// provisionalLockTTL bounds how long a crashed handler can keep its key locked.
	provisionalLockTTL = 60 * time.Second
	// maxClockSkew is the accepted distance between Ax-Request-At and server time.
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// idempRequest is what a mutating request must carry to be deduplicated.
type idempRequest struct {
	RequestID string
	RequestAt time.Time
	UserID    string
}

func readIdempHeaders(h http.Header, now time.Time) (idempRequest, error) {
	var out idempRequest

	out.RequestID = strings.TrimSpace(h.Get(HeaderRequestID))
	switch {
	case out.RequestID == "":
		return out, errors.New("missing " + HeaderRequestID)
	case !validRequestID(out.RequestID):
		return out, errors.New("invalid " + HeaderRequestID + " format")
	}

	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return out, err
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return out, errors.New(HeaderRequestAt + " too skewed")
	}
	out.RequestAt = at

	out.UserID = strings.TrimSpace(h.Get(HeaderUserID))
	switch {
	case out.UserID == "":
		return out, errors.New("missing " + HeaderUserID)
	case !id.Valid(out.UserID):
		return out, errors.New("invalid " + HeaderUserID)
	}
	return out, nil
}

// responseTap copies everything written to the client so it can be stored.
type responseTap struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (t *responseTap) Write(b []byte) (int, error) {
	t.buf.Write(b)
	return t.ResponseWriter.Write(b)
}

func (t *responseTap) WriteHeader(code int) {
	t.code = code
	t.ResponseWriter.WriteHeader(code)
}

// IdempotencyMiddleware makes POST/PUT/PATCH/DELETE safe to retry. A request is
// identified by route, Ax-User-Id and Ax-Request-Id; its first non-5xx response is
// stored for ttl and served again to retries carrying the same body.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := idempStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method == http.MethodGet || req.Method == http.MethodHead || req.Method == http.MethodOptions {
				return next(c)
			}

			hdr, err := readIdempHeaders(req.Header, nowUTC())
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := idempKey{Method: req.Method, Route: c.Path(), UserID: hdr.UserID, RequestID: hdr.RequestID}.String()
			entry := idempEntry{
				BodySHA256:  bodyHash(body),
				RequestID:   hdr.RequestID,
				RequestAtMS: hdr.RequestAt.UnixMilli(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			pending := entry
			pending.InProgress, pending.CreatedAt = true, nowUTC()
			fresh, err := store.reserve(ctx, key, pending)
			if err != nil {
				slog.WarnContext(ctx, "idempotency store unavailable", "err", err)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !fresh {
				return replayOrReject(c, store, key, entry.BodySHA256)
			}

			tap := &responseTap{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = tap
			if err := next(c); err != nil {
				c.Error(err)
			}

			entry.Code, entry.Body, entry.CreatedAt = tap.code, tap.buf.Bytes(), nowUTC()
			// the request context may already be gone; the outcome must still be recorded
			if err := store.finish(context.Background(), key, entry); err != nil {
				slog.Warn("idempotency entry not stored", "key", key, "code", tap.code, "err", err)
			}
			return nil
		}
	}
}

func replayOrReject(c echo.Context, store idempStore, key, bodySHA string) error {
	ctx := c.Request().Context()
	cur, err := store.load(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "idempotency entry load failed", "key", key, "err", err)
	}
	switch {
	case cur.BodySHA256 != "" && cur.BodySHA256 != bodySHA:
		return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
	case !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0:
		return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
	}
	return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
}
