package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type healthBody struct {
	Status       string            `json:"status"`
	Time         string            `json:"time"`
	Dependencies map[string]string `json:"dependencies"`
}

func probeHealth(t *testing.T, h *Handler) (int, healthBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	require.NoError(t, h.Health(c))
	require.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

	var body healthBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "raw=%s", rec.Body.String())
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		handler  *Handler
		wantCode int
		status   string
		deps     map[string]string
	}{
		{"no probes", NewHandler(), http.StatusOK, "ok", nil},
		{"store and cache up", NewHandler().WithCheck("db", up).WithCheck("redis", up),
			http.StatusOK, "ok", map[string]string{"db": "ok", "redis": "ok"}},
		{"cache down", NewHandler().WithCheck("db", up).WithCheck("redis", down),
			http.StatusServiceUnavailable, "degraded", map[string]string{"db": "ok", "redis": "connection refused"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := probeHealth(t, tt.handler)
			require.Equal(t, tt.wantCode, code)
			require.Equal(t, tt.status, body.Status)
			require.Equal(t, tt.deps, body.Dependencies)
		})
	}
}

func TestHealth_TimeIsUTC(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	_, body := probeHealth(t, NewHandler())

	at, err := time.Parse(time.RFC3339Nano, body.Time)
	require.NoError(t, err)
	require.Equal(t, time.UTC, at.Location())
	require.WithinDuration(t, time.Now().UTC(), at, 2*time.Second)
	require.True(t, at.After(before))
}

func TestHealth_ProbesSeeDeadline(t *testing.T) {
	var hasDeadline bool
	h := NewHandler().WithCheck("db", func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})
	code, _ := probeHealth(t, h)
	require.Equal(t, http.StatusOK, code)
	require.True(t, hasDeadline, "probes must run under a timeout")
}
