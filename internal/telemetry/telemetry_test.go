package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoGogDBD/inventory/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	p, err := Init(context.Background(), config.TelemetryConfig{ServiceName: "inventory"})
	require.NoError(t, err)
	assert.Nil(t, p.MetricsHandler)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInitMetrics(t *testing.T) {
	p, err := Init(context.Background(), config.TelemetryConfig{
		ServiceName:    "inventory",
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	require.NotNil(t, p.MetricsHandler)

	rr := httptest.NewRecorder()
	p.MetricsHandler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestInstrumentPassesThrough(t *testing.T) {
	var p *Providers
	h := p.Instrument(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
