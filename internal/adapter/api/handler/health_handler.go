package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	backend string
	checks  map[string]Pinger
}

var healthHandler *HealthHandler

func NewHealthHandler(backend string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		backend: backend,
		checks:  checks,
	}
}

func SetupHealthHandler(backend string, checks map[string]Pinger) {
	healthHandler = NewHealthHandler(backend, checks)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	dependencies := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			dependencies[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		dependencies[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}

	return c.JSON(status, map[string]interface{}{
		"status":       state,
		"backend":      h.backend,
		"dependencies": dependencies,
		"time":         time.Now().Format(time.RFC3339),
	})
}
