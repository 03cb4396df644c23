package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := New(Options{Registerer: reg})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/users/:id", func(c *fiber.Ctx) error {
		return c.SendString(c.Params("id"))
	})
	app.Get("/teapot", func(*fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot)
	})

	for _, path := range []string{"/users/1", "/users/2", "/teapot"} {
		_, err = app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/users/:id", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/teapot", "418")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.InFlight), 0)
}

func TestNew_Reuses(t *testing.T) {
	reg := prometheus.NewRegistry()

	a, err := New(Options{Registerer: reg})
	require.NoError(t, err)

	b, err := New(Options{Registerer: reg})
	require.NoError(t, err)

	assert.Same(t, a.Requests, b.Requests)
	assert.Same(t, a.Duration, b.Duration)
}
