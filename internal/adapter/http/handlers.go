package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Probe is a dependency the health endpoint pings.
type Probe interface {
	Name() string
	Check(ctx context.Context) error
}

type Handler struct{ probes []Probe }

func NewHandler(probes ...Probe) *Handler { return &Handler{probes: probes} }

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(h.probes))
	for _, p := range h.probes {
		if err := p.Check(ctx); err != nil {
			checks[p.Name()] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[p.Name()] = "ok"
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}
