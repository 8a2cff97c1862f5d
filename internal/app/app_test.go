package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/RoGogDBD/inventory/internal/config"
	"github.com/RoGogDBD/inventory/internal/events"
	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	for _, key := range []string{"CONFIG_PATH", "HOST", "PORT", "CACHE_DIR", "STORAGE_BACKEND", "KAFKA_BROKERS", "PUBLIC_URL", "STATIC_DIR"} {
		t.Setenv(key, "")
	}
	cfg, err := config.Load([]string{"-cache-dir", filepath.Join(t.TempDir(), "cache")})
	require.NoError(t, err)
	return cfg
}

func TestNewAppMemoryBackend(t *testing.T) {
	ctx := context.Background()
	a, err := NewApp(ctx, testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(ctx) })

	assert.IsType(t, &repository.MemStorage{}, a.Items)
	assert.IsType(t, events.NopPublisher{}, a.Publisher)
	assert.Nil(t, a.DBPool)
	assert.DirExists(t, a.Photos.Root())
	assert.Equal(t, "localhost:8080", a.Server.Addr)
}

func TestAppHandlerServesAPIAndMetrics(t *testing.T) {
	ctx := context.Background()
	a, err := NewApp(ctx, testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(ctx) })

	h := a.Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/inventory", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var views []models.ItemView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&views))
	assert.Empty(t, views)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Content-Type"))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0

	a, err := NewApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	a.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.Run(ctx))
}
