package http

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register mounts every route. mutating wraps the POST routes (idempotency).
func Register(e *echo.Echo, h *Handler, loans *LoanHandler, m *MatchingHandler, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/loans/:loan_id", loans.GetLoan)
	e.GET("/loans/:loan_id/matches", loans.ListMatches)

	e.POST("/loans/:loan_id/matching", m.StartMatching, mutating...)
	e.POST("/loans/:loan_id/rematch", m.Rematch, mutating...)
	e.POST("/matches/:match_id/accept", m.AcceptOffer, mutating...)
	e.POST("/matches/:match_id/decline", m.DeclineOffer, mutating...)
	e.POST("/internal/matching/sweep", m.Sweep, mutating...)
}
