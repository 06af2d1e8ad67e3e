package bridge_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alkime/mixgraph/internal/backend"
	"github.com/alkime/mixgraph/internal/bridge"
	"github.com/alkime/mixgraph/internal/config"
	"github.com/alkime/mixgraph/internal/mixer"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const token = "s3cret"

func newSim() *backend.Simulated {
	speakers := 64.0

	return backend.NewSimulated(backend.Scenario{
		Devices: []backend.ScenarioDevice{
			{Name: "Mic A", Type: backend.Input},
			{Name: "Speakers", Type: backend.Output, Volume: &speakers},
		},
		Sessions: []backend.AppSession{{PID: 42, Name: "Player", Volume: 55}},
	})
}

func newServer(t *testing.T, sim *backend.Simulated, tok string) *bridge.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Env: "test", HSTSMaxAge: 31536000, BridgeAddr: "127.0.0.1:0"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return bridge.New(cfg, sim, tok, logger)
}

func do(t *testing.T, srv *bridge.Server, method, target, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newServer(t, newSim(), token)

	w := do(t, srv, http.MethodGet, "/health", "", false)

	assert.Equal(t, http.StatusOK, w.Code, "Health endpoint should return 200 OK")
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "mixgraph-bridge")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestAuth(t *testing.T) {
	srv := newServer(t, newSim(), token)

	t.Run("missing token", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/v1/devices", "", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/devices", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("no token configured", func(t *testing.T) {
		open := newServer(t, newSim(), "")
		w := do(t, open, http.MethodGet, "/v1/devices", "", false)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRoutes(t *testing.T) {
	sim := newSim()
	srv := newServer(t, sim, token)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "devices", method: http.MethodGet, target: "/v1/devices", wantStatus: http.StatusOK,
			wantBody: `[{"name":"Mic A","device_type":"Input"},{"name":"Speakers","device_type":"Output"}]`},
		{name: "sessions", method: http.MethodGet, target: "/v1/sessions", wantStatus: http.StatusOK,
			wantBody: `[{"pid":42,"name":"Player","volume":55,"is_muted":false}]`},
		{name: "get volume", method: http.MethodGet, target: "/v1/devices/volume?name=Speakers&input=false",
			wantStatus: http.StatusOK, wantBody: `64`},
		{name: "get volume missing name", method: http.MethodGet, target: "/v1/devices/volume",
			wantStatus: http.StatusBadRequest},
		{name: "get volume bad flag", method: http.MethodGet, target: "/v1/devices/volume?name=Speakers&input=maybe",
			wantStatus: http.StatusBadRequest},
		{name: "get volume unknown device", method: http.MethodGet, target: "/v1/devices/volume?name=Nope",
			wantStatus: http.StatusNotFound},
		{name: "set device volume", method: http.MethodPut, target: "/v1/devices/volume",
			body: `{"name":"Mic A","volume":30,"isInput":true}`, wantStatus: http.StatusNoContent},
		{name: "set device volume out of range", method: http.MethodPut, target: "/v1/devices/volume",
			body: `{"name":"Mic A","volume":130,"isInput":true}`, wantStatus: http.StatusBadRequest},
		{name: "set device volume bad body", method: http.MethodPut, target: "/v1/devices/volume",
			body: `{"name":`, wantStatus: http.StatusBadRequest},
		{name: "set device volume unknown", method: http.MethodPut, target: "/v1/devices/volume",
			body: `{"name":"Nope","volume":30}`, wantStatus: http.StatusNotFound},
		{name: "set app volume", method: http.MethodPut, target: "/v1/sessions/42/volume",
			body: `{"volume":10}`, wantStatus: http.StatusNoContent},
		{name: "set app volume bad pid", method: http.MethodPut, target: "/v1/sessions/abc/volume",
			body: `{"volume":10}`, wantStatus: http.StatusBadRequest},
		{name: "set app volume unknown pid", method: http.MethodPut, target: "/v1/sessions/7/volume",
			body: `{"volume":10}`, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, tt.method, tt.target, tt.body, true)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
			if tt.wantStatus >= http.StatusBadRequest {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestBackendFailures(t *testing.T) {
	sim := newSim()
	srv := newServer(t, sim, token)

	sim.SetFaults(backend.Faults{FailEnumerate: true, FailReads: true})

	assert.Equal(t, http.StatusBadGateway, do(t, srv, http.MethodGet, "/v1/devices", "", true).Code)
	assert.Equal(t, http.StatusBadGateway,
		do(t, srv, http.MethodGet, "/v1/devices/volume?name=Speakers", "", true).Code)

	sim.SetFaults(backend.Faults{MalformedReads: true})
	w := do(t, srv, http.MethodGet, "/v1/devices/volume?name=Speakers", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	sim := newSim()
	ts := httptest.NewServer(newServer(t, sim, token).Router())
	t.Cleanup(ts.Close)

	client := backend.NewBridgeClient(ts.URL, token, time.Second)

	t.Run("enumeration matches the backend", func(t *testing.T) {
		want, err := sim.EnumerateDevices(ctx)
		require.NoError(t, err)
		got, err := client.EnumerateDevices(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		wantSessions, err := sim.EnumerateSessions(ctx)
		require.NoError(t, err)
		gotSessions, err := client.EnumerateSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, wantSessions, gotSessions)
	})

	t.Run("volumes", func(t *testing.T) {
		require.NoError(t, client.SetDeviceVolume(ctx, "Mic A", 33, true))

		v, err := client.GetDeviceVolume(ctx, "Mic A", true)
		require.NoError(t, err)
		assert.Equal(t, 33.0, v)

		require.NoError(t, client.SetAppVolume(ctx, 42, 12))
		assert.Contains(t, sim.Writes(), backend.Write{Kind: backend.AppWrite, PID: 42, Volume: 12})
	})

	t.Run("unknown entities keep their sentinel", func(t *testing.T) {
		_, err := client.GetDeviceVolume(ctx, "Nope", false)
		require.ErrorIs(t, err, backend.ErrUnknownDevice)

		err = client.SetAppVolume(ctx, 7, 10)
		require.ErrorIs(t, err, backend.ErrUnknownSession)
	})

	t.Run("malformed volume is NaN and discarded", func(t *testing.T) {
		sim.SetFaults(backend.Faults{MalformedReads: true})
		t.Cleanup(func() { sim.SetFaults(backend.Faults{}) })

		v, err := client.GetDeviceVolume(ctx, "Speakers", false)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(v))

		state := mixer.NewDeviceVolume(mixer.DefaultDeviceVolume)
		gen, ok := state.BeginRead()
		require.True(t, ok)
		assert.Equal(t, mixer.Malformed, state.ApplyRead(gen, v))
		assert.Equal(t, 80.0, state.Displayed)
	})

	t.Run("wrong token", func(t *testing.T) {
		bad := backend.NewBridgeClient(ts.URL, "nope", time.Second)
		_, err := bad.EnumerateDevices(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})
}
