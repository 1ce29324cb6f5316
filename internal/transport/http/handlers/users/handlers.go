package userhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/auth"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

type Handler struct {
	Auth *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{Auth: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequireSuperAdmin).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermReadUser)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermReadUser)).Get("/{userID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermUpdateUser)).Put("/{userID}", h.handleUpdate)
		r.With(middleware.RequireSuperAdmin).Delete("/{userID}", h.handleDelete)
		r.With(middleware.RequireSuperAdmin).Post("/{userID}/reset-password", h.handleResetPassword)
		r.With(middleware.RequireSuperAdmin).Put("/{userID}/permissions", h.handleSetPermissions)
	})
}

func requestMeta(r *http.Request) audit.RequestMeta {
	return audit.RequestMeta{IP: shared.ClientIP(r), UserAgent: r.UserAgent()}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload auth.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := &shared.Validator{}
	v.Required("username", payload.Username, "username is required")
	v.MinLength("password", payload.Password, 8, "password must be at least 8 characters")
	v.Email("email", payload.Email)
	v.Enum("role", payload.Role, auth.Roles, "unknown role")
	if v.Reject(w, reqID) {
		return
	}

	user, err := h.Auth.CreateUser(r.Context(), actor.ID, requestMeta(r), payload)
	if err != nil {
		writeUserError(w, reqID, err, "user_create_failed", "failed to create user")
		return
	}
	api.Created(w, user, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	users, total, err := h.Auth.ListUsers(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", reqID)
		return
	}
	api.Success(w, map[string]any{
		"users":      users,
		"pagination": shared.PageMeta{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	user, err := h.Auth.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeUserError(w, reqID, err, "user_get_failed", "failed to load user")
		return
	}
	api.Success(w, user, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload auth.UpdateUserInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.Role != nil {
		v := &shared.Validator{}
		v.Enum("role", *payload.Role, auth.Roles, "unknown role")
		if v.Reject(w, reqID) {
			return
		}
	}

	user, err := h.Auth.UpdateUser(r.Context(), actor.ID, requestMeta(r), chi.URLParam(r, "userID"), payload)
	if err != nil {
		writeUserError(w, reqID, err, "user_update_failed", "failed to update user")
		return
	}
	api.Success(w, user, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	userID := chi.URLParam(r, "userID")
	if userID == actor.ID {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "cannot delete own account", reqID)
		return
	}

	if err := h.Auth.DeleteUser(r.Context(), actor.ID, requestMeta(r), userID); err != nil {
		writeUserError(w, reqID, err, "user_delete_failed", "failed to delete user")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload struct {
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := &shared.Validator{}
	v.MinLength("newPassword", payload.NewPassword, 8, "password must be at least 8 characters")
	if v.Reject(w, reqID) {
		return
	}

	if err := h.Auth.ResetPassword(r.Context(), actor.ID, requestMeta(r), chi.URLParam(r, "userID"), payload.NewPassword); err != nil {
		writeUserError(w, reqID, err, "password_reset_failed", "failed to reset password")
		return
	}
	api.Success(w, map[string]string{"status": "password_reset"}, reqID)
}

func (h *Handler) handleSetPermissions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload struct {
		Permissions []string `json:"permissions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	user, err := h.Auth.SetCustomPermissions(r.Context(), actor.ID, requestMeta(r), chi.URLParam(r, "userID"), payload.Permissions)
	if err != nil {
		writeUserError(w, reqID, err, "permissions_update_failed", "failed to update permissions")
		return
	}
	api.Success(w, user, reqID)
}

func writeUserError(w http.ResponseWriter, reqID string, err error, code, fallback string) {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
	case errors.Is(err, auth.ErrUserExists):
		api.Fail(w, http.StatusConflict, "duplicate_resource", "username or email already in use", reqID)
	case errors.Is(err, auth.ErrUnknownRole), errors.Is(err, auth.ErrUnknownPermission):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, fallback, reqID)
	}
}
