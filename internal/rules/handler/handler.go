package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vaxledger/internal/rules/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/httputil"
	request "vaxledger/pkg/platform/middleware/request"
)

type Service interface {
	RegisterRule(ctx context.Context, area id.Area, maxAge time.Duration, vaccines []models.Vaccine) (*models.Rule, error)
	GetRule(ctx context.Context, area id.Area) (*models.Rule, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAuthenticated mounts routes that require a caller identity.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Put("/rules/{area}", h.HandleRegisterRule)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/rules/{area}", h.HandleGetRule)
}

// HandleRegisterRule sets or replaces the acceptance rule of an area.
func (h *Handler) HandleRegisterRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	if _, err := httputil.RequireCaller(ctx, h.logger, requestID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	area, err := id.ParseArea(chi.URLParam(r, "area"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterRuleRequest](w, r, h.logger, ctx, requestID, schemaCheck(ruleSchema))
	if !ok {
		return
	}

	rule, err := h.service.RegisterRule(ctx, area, req.MaxAge(), req.VaccineList())
	if err != nil {
		h.logger.ErrorContext(ctx, "register rule failed", "error", err, "request_id", requestID, "area", area.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRuleResponse(rule))
}

func (h *Handler) HandleGetRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	area, err := id.ParseArea(chi.URLParam(r, "area"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rule, err := h.service.GetRule(ctx, area)
	if err != nil {
		h.logger.WarnContext(ctx, "get rule failed", "error", err, "request_id", requestID, "area", area.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRuleResponse(rule))
}
