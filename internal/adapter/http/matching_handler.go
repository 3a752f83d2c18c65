package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"lendmatch/internal/infrastructure/logger"
	"lendmatch/internal/usecase/matching"
)

// MatchingService is the orchestrator as seen by the transport.
type MatchingService interface {
	StartMatching(ctx context.Context, loanID string) (*matching.Result, error)
	Rematch(ctx context.Context, loanID string) (*matching.Result, error)
	AcceptOffer(ctx context.Context, in matching.OfferInput) (*matching.OfferResult, error)
	DeclineOffer(ctx context.Context, in matching.DeclineInput) (*matching.OfferResult, error)
	SweepExpired(ctx context.Context, limit int) (*matching.SweepResult, error)
}

type MatchingHandler struct {
	svc        MatchingService
	log        logger.Logger
	sweepBatch int
}

func NewMatchingHandler(svc MatchingService, log logger.Logger, sweepBatch int) *MatchingHandler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if sweepBatch <= 0 {
		sweepBatch = 100
	}
	return &MatchingHandler{svc: svc, log: log, sweepBatch: sweepBatch}
}

func (h *MatchingHandler) StartMatching(c echo.Context) error {
	var p loanPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	res, err := h.svc.StartMatching(c.Request().Context(), p.LoanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *MatchingHandler) Rematch(c echo.Context) error {
	var p loanPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	res, err := h.svc.Rematch(c.Request().Context(), p.LoanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

type offerReq struct {
	MatchID    string `param:"match_id" json:"-" validate:"required,hex32"`
	LenderKind string `json:"lender_kind" validate:"required,lenderkind"`
	LenderID   string `json:"lender_id" validate:"required,max=32"`
	Reason     string `json:"reason" validate:"max=255"`
}

func (h *MatchingHandler) AcceptOffer(c echo.Context) error {
	var req offerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.svc.AcceptOffer(c.Request().Context(), matching.OfferInput{
		MatchID: req.MatchID, LenderKind: req.LenderKind, LenderID: req.LenderID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *MatchingHandler) DeclineOffer(c echo.Context) error {
	var req offerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.svc.DeclineOffer(c.Request().Context(), matching.DeclineInput{
		MatchID: req.MatchID, LenderKind: req.LenderKind, LenderID: req.LenderID, Reason: req.Reason,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

type sweepReq struct {
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

func (h *MatchingHandler) Sweep(c echo.Context) error {
	var req sweepReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if req.Limit == 0 {
		req.Limit = h.sweepBatch
	}
	res, err := h.svc.SweepExpired(c.Request().Context(), req.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}
