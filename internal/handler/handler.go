// Package handler serves the engine over HTTP.
package handler

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"projection-engine/internal/compare"
	"projection-engine/internal/engine"
	"projection-engine/internal/lots"
	"projection-engine/internal/model"
	"projection-engine/internal/transitions"
)

// Handler routes API requests. It holds no per-request state and is safe
// for concurrent use.
type Handler struct {
	engine *engine.Engine
	now    func() time.Time
}

func New(e *engine.Engine) *Handler {
	if e == nil {
		e = engine.New()
	}
	return &Handler{engine: e, now: time.Now}
}

// Handle is the fasthttp entry point.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	switch path {
	case "/healthz":
		if h.allow(ctx, fasthttp.MethodGet) {
			writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		}
	case "/v1/defaults":
		if h.allow(ctx, fasthttp.MethodGet) {
			h.defaults(ctx)
		}
	case "/v1/simulate":
		if h.allow(ctx, fasthttp.MethodPost) {
			h.simulate(ctx)
		}
	case "/v1/compare":
		if h.allow(ctx, fasthttp.MethodPost) {
			h.compare(ctx)
		}
	case "/v1/transitions/validate":
		if h.allow(ctx, fasthttp.MethodPost) {
			h.validateTransition(ctx)
		}
	case "/v1/holdings/purchase":
		if h.allow(ctx, fasthttp.MethodPost) {
			h.purchase(ctx)
		}
	case "/v1/holdings/sell":
		if h.allow(ctx, fasthttp.MethodPost) {
			h.sell(ctx)
		}
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found: "+path)
	}
}

func (h *Handler) allow(ctx *fasthttp.RequestCtx, method string) bool {
	if string(ctx.Method()) != method {
		ctx.Response.Header.Set("Allow", method)
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

func (h *Handler) defaults(ctx *fasthttp.RequestCtx) {
	today := model.DateOf(h.now())
	start := model.NewDate(today.Year(), today.Month(), 1)
	writeJSON(ctx, fasthttp.StatusOK, model.DefaultConfiguration(start))
}

func (h *Handler) simulate(ctx *fasthttp.RequestCtx) {
	var req model.SimulationRequest
	if !decode(ctx, &req) {
		return
	}
	started := h.now()
	res, err := h.engine.RunEnhanced(req.Configuration)
	if err != nil {
		writeFailure(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, model.SimulationResponse{
		CalculationMetadata: h.metadata(req.TenantID, started),
		CalculationResult:   &res,
	})
}

func (h *Handler) compare(ctx *fasthttp.RequestCtx) {
	var req model.SimulationRequest
	if !decode(ctx, &req) {
		return
	}
	started := h.now()
	res, err := compare.Compare(h.engine, req.Configuration)
	if err != nil {
		writeFailure(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, model.ComparisonResponse{
		CalculationMetadata: h.metadata(req.TenantID, started),
		CalculationResult:   &res,
	})
}

func (h *Handler) validateTransition(ctx *fasthttp.RequestCtx) {
	var req model.TransitionRequest
	if !decode(ctx, &req) {
		return
	}
	if err := req.Configuration.BaseParameters.Validate(); err != nil {
		writeFailure(ctx, err)
		return
	}
	out, err := transitions.Apply(req.Configuration, req.Transition)
	if err != nil {
		writeFailure(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, model.ValidationResponse{Valid: true, Configuration: &out})
}

func (h *Handler) purchase(ctx *fasthttp.RequestCtx) {
	var req model.PurchaseRequest
	if !decode(ctx, &req) {
		return
	}
	holding, err := lots.AddPurchase(req.Holding, req.Purchase)
	if err != nil {
		writeFailure(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, model.HoldingResponse{Holding: holding})
}

func (h *Handler) sell(ctx *fasthttp.RequestCtx) {
	var req model.SellRequest
	if !decode(ctx, &req) {
		return
	}
	holding, sale, err := lots.Sell(req.Holding, req.Units, req.PricePerUnit)
	if err != nil {
		writeFailure(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, model.HoldingResponse{Holding: holding, Sale: &sale})
}

func (h *Handler) metadata(tenantID string, started time.Time) model.CalculationMetadata {
	completed := h.now()
	return model.CalculationMetadata{
		CalculationID:          uuid.New().String(),
		TenantID:               tenantID,
		CalculationStartedAt:   started.UTC().Format(time.RFC3339),
		CalculationCompletedAt: completed.UTC().Format(time.RFC3339),
		CalculationDurationMs:  completed.Sub(started).Milliseconds(),
		CalculationOutcome:     model.OutcomeSuccess,
	}
}

// decode parses the body strictly. Unknown keys are a validation failure,
// anything else unparseable is a bad request.
func decode(ctx *fasthttp.RequestCtx, v any) bool {
	body := ctx.PostBody()
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "Request body is required")
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			writeFailure(ctx, &model.ValidationError{Code: model.CodeUnknownParameter, Message: err.Error()})
			return false
		}
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeFailure maps a typed error to its status code.
func writeFailure(ctx *fasthttp.RequestCtx, err error) {
	var (
		vErr    *model.ValidationError
		calcErr *model.CalculationError
		accErr  *lots.AccountingError
	)
	switch {
	case errors.As(err, &vErr):
		writeResponse(ctx, model.ErrorResponse{
			Status:  fasthttp.StatusUnprocessableEntity,
			Message: err.Error(),
			Code:    vErr.Code,
			Field:   vErr.Field,
		})
	case errors.As(err, &calcErr):
		period := calcErr.Period
		writeResponse(ctx, model.ErrorResponse{
			Status:  fasthttp.StatusUnprocessableEntity,
			Message: err.Error(),
			Code:    "INVALID_CALCULATION",
			Period:  &period,
			Field:   calcErr.Field,
		})
	case errors.As(err, &accErr):
		writeResponse(ctx, model.ErrorResponse{
			Status:  fasthttp.StatusUnprocessableEntity,
			Message: err.Error(),
			Code:    accErr.Code,
		})
	default:
		log.Printf("request %s failed: %v", ctx.Path(), err)
		writeError(ctx, fasthttp.StatusInternalServerError, "Internal error")
	}
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeResponse(ctx, model.ErrorResponse{Status: status, Message: message})
}

func writeResponse(ctx *fasthttp.RequestCtx, resp model.ErrorResponse) {
	writeJSON(ctx, resp.Status, resp)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("encoding response for %s: %v", ctx.Path(), err)
		ctx.Error(`{"status":500,"message":"Internal error"}`, fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json")
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
