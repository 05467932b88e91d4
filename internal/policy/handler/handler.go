package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
	"github.com/polisdoc/polisdoc-backend/internal/policy/service"
	"github.com/polisdoc/polisdoc-backend/pkg/errors"
	"github.com/polisdoc/polisdoc-backend/pkg/httputil"
	"github.com/polisdoc/polisdoc-backend/pkg/logger"
)

// PolicyHandler handles policy extraction endpoints
type PolicyHandler struct {
	service *service.Service
	log     *logger.Logger
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(svc *service.Service, log *logger.Logger) *PolicyHandler {
	return &PolicyHandler{
		service: svc,
		log:     log,
	}
}

// Routes mounts the handler under /policies
func (h *PolicyHandler) Routes(r chi.Router) {
	r.Route("/policies", func(r chi.Router) {
		r.Post("/extract", h.Extract)
		r.Post("/extract-text", h.ExtractText)
		r.Get("/audit", h.ListAudit)
	})
}

// ExtractRequest is the body of POST /policies/extract
type ExtractRequest struct {
	File string `json:"file" validate:"required"`
}

// ExtractTextRequest is the body of POST /policies/extract-text.
// Text is a pointer so that an empty string is accepted but a missing key is not.
type ExtractTextRequest struct {
	Text *string `json:"text" validate:"required"`
}

// ExtractResponse keeps the shape existing clients parse
type ExtractResponse struct {
	Success           bool            `json:"success"`
	Result            string          `json:"result"`
	Details           domain.Record   `json:"details"`
	DetailsCollection []domain.Record `json:"detailsCollection"`
}

func newExtractResponse(ext *domain.Extraction) ExtractResponse {
	return ExtractResponse{
		Success:           true,
		Result:            ext.Record.Summary(),
		Details:           ext.Record,
		DetailsCollection: []domain.Record{ext.Record},
	}
}

// Extract handles POST /policies/extract with a base64 encoded PDF
func (h *PolicyHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	ext, err := h.service.ExtractPDF(r.Context(), httputil.GetRequestID(r.Context()), req.File)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.RawJSON(w, http.StatusOK, newExtractResponse(ext))
}

// ExtractText handles POST /policies/extract-text
func (h *PolicyHandler) ExtractText(w http.ResponseWriter, r *http.Request) {
	var req ExtractTextRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	ext := h.service.ExtractText(r.Context(), httputil.GetRequestID(r.Context()), *req.Text)
	httputil.RawJSON(w, http.StatusOK, newExtractResponse(ext))
}

// ListAudit handles GET /policies/audit?limit=N
func (h *PolicyHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.ErrorLocalized(w, r, errors.Validation(map[string]string{"limit": "must be an integer"}))
			return
		}
		limit = n
	}

	entries, err := h.service.ListAudit(r.Context(), limit)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}
