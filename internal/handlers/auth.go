package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ronghua-heritage/storefront/internal/platform/auth"
	"github.com/ronghua-heritage/storefront/internal/platform/httpx"
)

const maxAuthBodySize = 8 * 1024

// AuthHandlers exposes account registration, login, and session endpoints.
type AuthHandlers struct {
	manager *auth.Manager
}

// NewAuthHandlers constructs handlers over the auth manager.
func NewAuthHandlers(manager *auth.Manager) *AuthHandlers {
	return &AuthHandlers{manager: manager}
}

// Routes wires the /auth endpoints onto the provided router.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.manager == nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "auth service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req registerRequest
	if err := decodeJSONBody(r, maxAuthBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	user, err := h.manager.Register(ctx, auth.RegisterCommand{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, "注册成功", user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.manager == nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "auth service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req loginRequest
	if err := decodeJSONBody(r, maxAuthBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	session, err := h.manager.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "登录成功", session)
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.manager == nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "auth service is unavailable", http.StatusServiceUnavailable))
		return
	}

	user, err := h.manager.CurrentUser(ctx, bearerToken(r))
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	if err := h.manager.Logout(ctx, user.ID); err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "已退出登录", nil)
}

func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.manager == nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "auth service is unavailable", http.StatusServiceUnavailable))
		return
	}

	user, err := h.manager.CurrentUser(ctx, bearerToken(r))
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", user)
}

func (h *AuthHandlers) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid account details", http.StatusBadRequest))
	case errors.Is(err, auth.ErrUserExists):
		httpx.WriteError(ctx, w, httpx.NewError("user_exists", "username is already registered", http.StatusConflict))
	case errors.Is(err, auth.ErrInvalidCredentials):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "username or password incorrect", http.StatusUnauthorized))
	case errors.Is(err, auth.ErrUnauthenticated):
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "auth service failed", http.StatusServiceUnavailable))
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
