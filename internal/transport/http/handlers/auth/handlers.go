package authhandler

import (
	"encoding/json"
	"errors"
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
	Auth *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{Auth: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		// Login gets a tighter, strictly per-IP limit to slow down
		// credential stuffing.
		loginLimit := middleware.RateLimit(10, time.Minute, middleware.WithKeyFunc(middleware.ClientIPKey))
		r.With(loginLimit).Post("/login", h.handleLogin)
		r.With(middleware.RequireAuth).Get("/me", h.handleMe)
	})
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := &shared.Validator{}
	v.Required("username", payload.Username, "username is required")
	v.Required("password", payload.Password, "password is required")
	if v.Reject(w, reqID) {
		return
	}

	meta := audit.RequestMeta{IP: shared.ClientIP(r), UserAgent: r.UserAgent()}
	user, token, err := h.Auth.Login(r.Context(), meta, payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to log in", reqID)
		return
	}

	api.Success(w, loginResponse{Token: token, User: user}, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	api.Success(w, middleware.Actor(r.Context()), middleware.GetRequestID(r.Context()))
}
