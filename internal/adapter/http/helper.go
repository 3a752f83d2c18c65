package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lendmatch/internal/domain/lender"
	"lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
	"lendmatch/internal/infrastructure/logger"
)

// statusOf maps domain errors onto HTTP codes; anything unknown is a 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, match.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, match.ErrNotOfferee):
		return http.StatusForbidden
	case errors.Is(err, loan.ErrAlreadyAssigned),
		errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, loan.ErrStale),
		errors.Is(err, match.ErrUnavailable):
		return http.StatusConflict
	case errors.Is(err, match.ErrExpired):
		return http.StatusGone
	case errors.Is(err, lender.ErrInsufficientCapital):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(c echo.Context, log logger.Logger, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.WithError(err).Error("request failed", map[string]interface{}{
			"method": c.Request().Method, "path": c.Path(),
		})
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

// bindAndValidate writes the 400/422 response itself and reports false when
// the handler should stop.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
