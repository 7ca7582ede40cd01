package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vaxledger/internal/center/models"
	"vaxledger/internal/center/service"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/httputil"
	request "vaxledger/pkg/platform/middleware/request"
)

type Service interface {
	RegisterCenter(ctx context.Context, cmd service.RegisterCommand) (*models.Center, error)
	GetCenter(ctx context.Context, centerID id.CenterID) (*models.Center, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts routes that must sit behind the admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/centers", h.HandleRegisterCenter)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/centers/{id}", h.HandleGetCenter)
}

// HandleRegisterCenter adds a center to the authority list.
func (h *Handler) HandleRegisterCenter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterCenterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	center, err := h.service.RegisterCenter(ctx, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "register center failed", "error", err, "request_id", requestID, "center_id", cmd.ID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toCenterResponse(center))
}

func (h *Handler) HandleGetCenter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	centerID, err := id.ParseCenterID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid center id"))
		return
	}

	center, err := h.service.GetCenter(ctx, centerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get center failed", "error", err, "request_id", requestID, "center_id", centerID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toCenterResponse(center))
}
