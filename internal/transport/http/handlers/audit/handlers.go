package audithandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/auth"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

type Handler struct {
	Audit *audit.Service
}

func NewHandler(svc *audit.Service) *Handler {
	return &Handler{Audit: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReadAudit)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermReadAudit)).Get("/stats", h.handleStats)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	filter := audit.Filter{
		ActorID:  r.URL.Query().Get("actorId"),
		Action:   r.URL.Query().Get("action"),
		Resource: r.URL.Query().Get("resource"),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "validation_error", "invalid from date", reqID)
			return
		}
		filter.From = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "validation_error", "invalid to date", reqID)
			return
		}
		filter.To = t
	}

	total, err := h.Audit.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit entries", reqID)
		return
	}
	entries, err := h.Audit.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit entries", reqID)
		return
	}
	api.Success(w, map[string]any{
		"entries":    entries,
		"pagination": shared.PageMeta{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, reqID)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	stats, err := h.Audit.Stats(r.Context(), r.URL.Query().Get("timeframe"), time.Now())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_stats_failed", "failed to compute audit stats", reqID)
		return
	}
	api.Success(w, stats, reqID)
}
