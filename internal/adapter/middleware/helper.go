package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"library-backend/pkg/id"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const idempKeyPrefix = "library:idemp:"

// idempKey scopes a stored response to one caller on one route.
type idempKey struct {
	Method    string
	Route     string
	UserID    string
	RequestID string
}

func (k idempKey) String() string {
	return idempKeyPrefix + strings.ToLower(k.Method) + ":" + k.Route + ":" + k.UserID + ":" + k.RequestID
}

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// validRequestID accepts the same lowercase 32-hex form as public ids, or a
// canonical lowercase UUID. Case is never folded.
func validRequestID(s string) bool {
	if id.Valid(s) {
		return true
	}
	u, err := uuid.Parse(s)
	return err == nil && u.String() == s
}

// replayable reports whether a response may be served again for the same key.
// Server errors are not: the client is expected to retry them.
func replayable(code int) bool { return code < http.StatusInternalServerError }

var errRequestAtFormat = errors.New("Ax-Request-At must be epoch (s/ms) or RFC3339 with timezone")

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339 with a zone.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing Ax-Request-At")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errRequestAtFormat
	}
	return t.UTC(), nil
}

// idempStore keeps one JSON entry per key: a short provisional lock while the
// handler runs, then the final response for ttl.
type idempStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s idempStore) reserve(ctx context.Context, key string, e idempEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (s idempStore) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(v, &e)
	return e, err
}

// finish stores a replayable response, or drops the lock so a retry runs the handler again.
func (s idempStore) finish(ctx context.Context, key string, e idempEntry) error {
	if !replayable(e.Code) {
		return s.rdb.Del(ctx, key).Err()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}
