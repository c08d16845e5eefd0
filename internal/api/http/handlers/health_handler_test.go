package handlers

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubProbe struct {
	configured bool
	err        error
}

func (p stubProbe) Ping(context.Context) error { return p.err }
func (p stubProbe) Configured() bool           { return p.configured }

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name   string
		probes map[string]Probe
		status int
		body   string
	}{
		{"no dependencies", nil, fiber.StatusOK, `"ready"`},
		{"unconfigured is skipped", map[string]Probe{"redis": stubProbe{}}, fiber.StatusOK, `"redis":"disabled"`},
		{"healthy", map[string]Probe{"postgres": stubProbe{configured: true}}, fiber.StatusOK, `"postgres":"ok"`},
		{"down", map[string]Probe{"postgres": stubProbe{configured: true, err: errors.New("dial tcp: refused")}}, fiber.StatusServiceUnavailable, `"postgres":"unavailable"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/ready", NewHealthHandler("identity-service", "v1.0", tt.probes, nil, nil).Ready)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, string(body), tt.body)
		})
	}
}

func TestHealthHandler_ReadyKeepsCauseInLogs(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	probes := map[string]Probe{"postgres": stubProbe{configured: true, err: errors.New("dial tcp 10.0.0.7:5432: connection refused")}}

	app := fiber.New()
	app.Get("/ready", NewHealthHandler("identity-service", "v1.0", probes, nil, zap.New(core)).Ready)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.NotContains(t, string(body), "10.0.0.7")
	assert.NotContains(t, string(body), "refused")

	entries := logs.FilterMessage("readiness check failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "postgres", entries[0].ContextMap()["dependency"])
	assert.Contains(t, entries[0].ContextMap()["error"], "connection refused")
}
