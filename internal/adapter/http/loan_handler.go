package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lendmatch/internal/infrastructure/logger"
	"lendmatch/internal/usecase/loan"
)

type LoanHandler struct {
	uc  *loan.Usecase
	log logger.Logger
}

func NewLoanHandler(uc *loan.Usecase, log logger.Logger) *LoanHandler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &LoanHandler{uc: uc, log: log}
}

type loanPath struct {
	LoanID string `param:"loan_id" validate:"required,hex32"`
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	var p loanPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), p.LoanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListMatches(c echo.Context) error {
	var p loanPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	out, err := h.uc.ListMatches(c.Request().Context(), p.LoanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": p.LoanID, "matches": out})
}
