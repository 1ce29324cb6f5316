package departmenthandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/auth"
	"hrpay/internal/domain/employee"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

type Handler struct {
	Store *employee.Store
	Audit audit.Recorder
}

func NewHandler(store *employee.Store, recorder audit.Recorder) *Handler {
	return &Handler{Store: store, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCreateDepartment)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermReadDepartment)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermReadDepartment)).Get("/{departmentID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermUpdateDepartment)).Put("/{departmentID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermDeleteDepartment)).Delete("/{departmentID}", h.handleDelete)
	})
}

type departmentPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := &shared.Validator{}
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, reqID) {
		return
	}

	dept, err := h.Store.InsertDepartment(r.Context(), employee.Department{
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		writeDeptError(w, reqID, err, "department_create_failed", "failed to create department")
		return
	}

	h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actor.ID,
		Action:     "department.create",
		Resource:   "department",
		ResourceID: dept.ID,
		Details:    map[string]any{"name": dept.Name},
		IP:         shared.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	api.Created(w, dept, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	depts, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", reqID)
		return
	}
	api.Success(w, depts, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	dept, err := h.Store.FindDepartment(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		writeDeptError(w, reqID, err, "department_get_failed", "failed to load department")
		return
	}
	api.Success(w, dept, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := &shared.Validator{}
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, reqID) {
		return
	}

	dept, err := h.Store.UpdateDepartment(r.Context(), employee.Department{
		ID:          chi.URLParam(r, "departmentID"),
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		writeDeptError(w, reqID, err, "department_update_failed", "failed to update department")
		return
	}

	h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actor.ID,
		Action:     "department.update",
		Resource:   "department",
		ResourceID: dept.ID,
		Details:    map[string]any{"name": dept.Name},
		IP:         shared.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	api.Success(w, dept, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	deptID := chi.URLParam(r, "departmentID")
	if err := h.Store.DeleteDepartment(r.Context(), deptID); err != nil {
		writeDeptError(w, reqID, err, "department_delete_failed", "failed to delete department")
		return
	}

	h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actor.ID,
		Action:     "department.delete",
		Resource:   "department",
		ResourceID: deptID,
		IP:         shared.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func writeDeptError(w http.ResponseWriter, reqID string, err error, code, fallback string) {
	switch {
	case errors.Is(err, employee.ErrDepartmentNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
	case errors.Is(err, employee.ErrDepartmentExists):
		api.Fail(w, http.StatusConflict, "duplicate_resource", "department name already in use", reqID)
	case errors.Is(err, employee.ErrDepartmentInUse):
		api.Fail(w, http.StatusConflict, "invalid_state", "department still has employees", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, fallback, reqID)
	}
}
