package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vaxledger/internal/ledger/models"
	"vaxledger/internal/personid"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/httputil"
	request "vaxledger/pkg/platform/middleware/request"
)

type Service interface {
	CertifyAndRegister(ctx context.Context, cmd models.CertifyCommand) (id.ProofToken, error)
	Validate(ctx context.Context, q models.ValidateQuery) error
	GetRecord(ctx context.Context, token id.ProofToken) (*models.Record, error)
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
	r.Post("/vaccinations", h.HandleCertify)
	r.Post("/vaccinations/validate", h.HandleValidate)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/vaccinations/{token}", h.HandleGetRecord)
	r.Post("/person-ids", h.HandleComputePersonID)
}

// HandleCertify registers a vaccination on behalf of the calling center.
func (h *Handler) HandleCertify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CertifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	cmd, err := req.ToCommand(caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	token, err := h.service.CertifyAndRegister(ctx, cmd)
	if err != nil {
		h.logFailure(ctx, "certify vaccination failed", err, requestID, "center_id", cmd.CenterID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, &CertifyResponse{ProofToken: token.String()})
}

// HandleValidate answers whether a presented credential is valid in an area
// at a reference time. Rejections carry the reason in error_description.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Validate(ctx, req.ToQuery(caller)); err != nil {
		h.logFailure(ctx, "validation rejected", err, requestID, "area", req.Area)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &ValidateResponse{Valid: true})
}

func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	token, err := id.ParseProofToken(chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.GetRecord(ctx, token)
	if err != nil {
		h.logFailure(ctx, "get vaccination failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(record))
}

// HandleComputePersonID derives a person identifier. It is stateless.
func (h *Handler) HandleComputePersonID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PersonIDRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	attrs, err := req.ToAttributes()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pid, err := personid.Compute(attrs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &PersonIDResponse{PersonID: pid.String()})
}

// logFailure keeps registry rejections at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, requestID string, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", requestID)
	if dErrors.CategoryOf(dErrors.CodeOf(err)) == dErrors.CategoryInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.WarnContext(ctx, msg, attrs...)
}
