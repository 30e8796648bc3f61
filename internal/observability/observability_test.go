package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/farm-shop/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/login", "POST", 200, 15*time.Millisecond)
	m.RecordRequest("/api/login", "POST", 200, 5*time.Millisecond)
	m.RecordError("/api/login", "POST", "UNAUTHORIZED")
	m.RecordUtterance("idle")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/login|POST|200"])
	assert.Equal(t, int64(20), snap.RequestMillis["/api/login|POST|200"])
	assert.Equal(t, int64(1), snap.Errors["/api/login|POST|UNAUTHORIZED"])
	assert.Equal(t, int64(1), snap.Utterances["idle"])

	snap.Requests["/api/login|POST|200"] = 99
	assert.Equal(t, int64(2), m.Snapshot().Requests["/api/login|POST|200"])

	var nilMetrics *Metrics
	nilMetrics.RecordUtterance("idle")
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/products/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products/3", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/products/:id", entries[0].ContextMap()["route"])
	assert.Equal(t, int64(1), metrics.Snapshot().Requests["/products/:id|GET|204"])
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.NotNil(t, Named(nil, "chat"))
}
