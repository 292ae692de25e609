package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"TipFusion/internal/domain/models"
	"TipFusion/internal/service/ratelimit"
	"TipFusion/internal/service/stream"
	"TipFusion/internal/usecase"
	xhttp "TipFusion/pkg/http"
	xlogger "TipFusion/pkg/logger"
)

const (
	decisionLookback = 7 * 24 * time.Hour
	historyLookback  = 30 * 24 * time.Hour
)

// HealthCheck reports one dependency; a nil error means healthy.
type HealthCheck func(ctx context.Context) error

// TipsHandler serves the decision, bankroll, model and picks API.
type TipsHandler struct {
	logger    *xlogger.Logger
	decisions *usecase.DecisionService
	bankroll  *usecase.BankrollService
	catalog   *usecase.ModelCatalog
	strategy  *usecase.Strategy
	hub       *stream.Hub
	limiter   *ratelimit.Limiter
	checks    map[string]HealthCheck
}

type Option func(*TipsHandler)

// WithRateLimit limits /api requests per client IP.
func WithRateLimit(rps float64, burst int) Option {
	return func(h *TipsHandler) {
		if rps > 0 {
			h.limiter = ratelimit.New(rps, burst)
		}
	}
}

func WithHub(hub *stream.Hub) Option {
	return func(h *TipsHandler) { h.hub = hub }
}

func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *TipsHandler) { h.checks[name] = check }
}

func NewTipsHandler(
	logger *xlogger.Logger,
	decisions *usecase.DecisionService,
	bankroll *usecase.BankrollService,
	catalog *usecase.ModelCatalog,
	strategy *usecase.Strategy,
	opts ...Option,
) *TipsHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	h := &TipsHandler{
		logger:    logger,
		decisions: decisions,
		bankroll:  bankroll,
		catalog:   catalog,
		strategy:  strategy,
		checks:    map[string]HealthCheck{},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *TipsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/ws/live", h.Live)

	g := e.Group("/api/v1")
	if h.limiter != nil {
		g.Use(h.rateLimit)
	}
	g.POST("/decisions", h.Decide)
	g.POST("/decisions/batch", h.DecideBatch)
	g.GET("/decisions", h.Decisions)
	g.POST("/kombi", h.Kombi)
	g.POST("/run", h.Run)
	g.GET("/bankroll/:pool", h.Bankroll)
	g.POST("/bankroll/:pool/settle", h.Settle)
	g.GET("/bankroll/:pool/history", h.History)
	g.GET("/engines", h.Engines)
	g.GET("/models", h.Models)
	g.POST("/models", h.RegisterModel)
	g.GET("/picks/daily", h.DailyPicks)
}

func (h *TipsHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP()) {
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError())
		}
		return next(c)
	}
}

func (h *TipsHandler) Decide(c echo.Context) error {
	req := &models.DecideRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.decisions.Decide(c.Request().Context(), req.Event, req.Meta))
}

func (h *TipsHandler) DecideBatch(c echo.Context) error {
	req := &models.BatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.decisions.DecideBatch(c.Request().Context(), req.Events, req.Meta))
}

type kombiResponse struct {
	Slip  models.KombiSlip            `json:"slip"`
	Stake *models.StakeRecommendation `json:"stake,omitempty"`
}

func (h *TipsHandler) Kombi(c echo.Context) error {
	req := &models.KombiRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	slip, stake, err := h.decisions.Kombi(c.Request().Context(), req.Events)
	if err != nil {
		h.logger.Error("kombi usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, kombiResponse{Slip: slip, Stake: stake})
}

// Run accepts any JSON object and runs the plain engine pass over it.
func (h *TipsHandler) Run(c echo.Context) error {
	raw := map[string]any{}
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{Code: xhttp.CodeInvalidJSON, Message: "body must be a JSON object"}})
	}
	return xhttp.SuccessResponse(c, h.decisions.Run(c.Request().Context(), raw))
}

func (h *TipsHandler) Decisions(c echo.Context) error {
	req := &models.DecisionQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, to := xhttp.QueryRange(req.From, req.To, decisionLookback)
	ds, err := h.decisions.Query(c.Request().Context(), req.EventID, from, to, req.Limit)
	if err != nil {
		if errors.Is(err, usecase.ErrNoDecisionStore) {
			return xhttp.AppErrorResponse(c, xhttp.UnavailableError(err.Error()))
		}
		h.logger.Error("decision query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, ds, int64(len(ds)))
}

func (h *TipsHandler) Bankroll(c echo.Context) error {
	req := &models.PoolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	st, err := h.bankroll.State(models.Pool(req.Pool))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *TipsHandler) Settle(c echo.Context) error {
	req := &models.SettleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	change, err := h.bankroll.Settle(c.Request().Context(), models.Settlement{
		Pool:       models.Pool(req.Pool),
		DecisionID: req.DecisionID,
		EventID:    req.EventID,
		Sport:      req.Sport,
		Won:        req.Won,
		Stake:      req.Stake,
		Odds:       req.Odds,
		Value:      req.Value,
		Confidence: req.Confidence,
	})
	switch {
	case errors.Is(err, usecase.ErrInvalidSettlement):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	case err != nil:
		// the pool moved already; report the change and log the persistence failure
		h.logger.Error("settlement persistence error", xlogger.String("event_id", req.EventID), xlogger.Error(err))
	}
	return xhttp.SuccessResponse(c, change)
}

func (h *TipsHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, to := xhttp.QueryRange(req.From, req.To, historyLookback)
	recs, err := h.bankroll.History(c.Request().Context(), models.Pool(req.Pool), from, to, req.Limit)
	if err != nil {
		h.logger.Error("bankroll history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}

func (h *TipsHandler) Engines(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.decisions.Orchestrator().Registry().ListEngines())
}

func (h *TipsHandler) Models(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.catalog.List())
}

func (h *TipsHandler) RegisterModel(c echo.Context) error {
	req := &models.RegisterModelRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	info, err := h.catalog.Register(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("register model error", xlogger.String("model", req.Name), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, info)
}

func (h *TipsHandler) DailyPicks(c echo.Context) error {
	dp, ok := h.strategy.Latest()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no daily picks generated yet"))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=30")
	return xhttp.SuccessResponse(c, dp)
}

func (h *TipsHandler) Live(c echo.Context) error {
	if h.hub == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("live stream disabled"))
	}
	if err := h.hub.ServeWS(c.Response(), c.Request()); err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
	}
	return nil
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *TipsHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for n := range h.checks {
		names = append(names, n)
	}
	sort.Strings(names)

	res := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, n := range names {
		if err := h.checks[n](ctx); err != nil {
			res.Status = "degraded"
			res.Checks[n] = err.Error()
			continue
		}
		res.Checks[n] = "ok"
	}
	if res.Status != "ok" {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, res)
	}
	return xhttp.SuccessResponse(c, res)
}

var _ xhttp.Handler = (*TipsHandler)(nil)
