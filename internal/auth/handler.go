// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/middleware"
)

type Handler struct {
	service   *Service
	reset     *ResetService
	google    *GoogleOAuth
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandler wires the auth endpoints. google may be nil when OAuth is not
// configured.
func NewHandler(
	service *Service,
	reset *ResetService,
	google *GoogleOAuth,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		service:   service,
		reset:     reset,
		google:    google,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

// RegisterRoutes mounts /auth and the password reset endpoints. limiter
// guards every credential-accepting route.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limiter func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limiter)
			r.Post("/login", h.Login)
			r.Post("/login/employee", h.LoginEmployee)
			r.Post("/refresh", h.Refresh)
			r.Get("/oauth/google", h.GoogleStart)
			r.Get("/oauth/google/callback", h.GoogleCallback)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Post("/logout", h.Logout)
			r.Post("/logout-all", h.LogoutAll)
			r.Get("/sessions", h.GetSessions)
			r.Delete("/sessions/{sessionID}", h.RevokeSession)
			r.Post("/change-password", h.ChangePassword)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(limiter)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
	})
}

func decode[T any](h *Handler, w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}
	return req, true
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[LoginRequest](h, w, r)
	if !ok {
		return
	}

	resp, err := h.service.Login(r.Context(), req, r.UserAgent(), middleware.ClientIP(r))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(w, core.UnauthorizedError("invalid email or password"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) LoginEmployee(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[EmployeeLoginRequest](h, w, r)
	if !ok {
		return
	}

	resp, err := h.service.LoginEmployee(r.Context(), req, r.UserAgent(), middleware.ClientIP(r))
	switch {
	case err == nil:
		core.OK(w, resp)
	case errors.Is(err, ErrInvalidCredentials):
		core.JSONError(w, core.UnauthorizedError("invalid employee id or password"))
	case errors.Is(err, ErrEmployeeAuthOff):
		core.JSONError(w, core.NewAppError(err, "employee login is disabled",
			http.StatusNotFound, "EMPLOYEE_LOGIN_DISABLED"))
	case errors.Is(err, ErrERPUnavailable):
		h.logger.ErrorContext(r.Context(), "erp login failed", "error", err)
		core.JSONError(w, core.NewAppError(err, "employee directory unavailable",
			http.StatusBadGateway, "ERP_UNAVAILABLE"))
	default:
		core.InternalServerError(w, err)
	}
}

func (h *Handler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		core.NotFound(w, "oauth provider")
		return
	}

	url, err := h.google.AuthCodeURL(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if r.URL.Query().Get("redirect") == "true" {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}
	core.OK(w, OAuthStartResponse{URL: url})
}

func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		core.NotFound(w, "oauth provider")
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		core.Unauthorized(w, "google sign-in was cancelled")
		return
	}

	profile, err := h.google.Exchange(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		if errors.Is(err, ErrOAuthState) {
			core.BadRequest(w, "invalid or expired oauth state")
			return
		}
		h.logger.ErrorContext(r.Context(), "google exchange failed", "error", err)
		core.Unauthorized(w, "google sign-in failed")
		return
	}

	resp, err := h.service.LoginGoogle(r.Context(), *profile, r.UserAgent(), middleware.ClientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			core.Unauthorized(w, "google sign-in failed")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "google email is not verified")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[RefreshRequest](h, w, r)
	if !ok {
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken, r.UserAgent(), middleware.ClientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenReuse):
			core.JSONError(w, core.NewAppError(
				core.ErrTokenRevoked,
				"token reuse detected, session family revoked",
				http.StatusUnauthorized,
				"TOKEN_REUSE_DETECTED",
			))
		case errors.Is(err, core.ErrTokenExpired):
			core.JSONError(w, core.TokenExpiredError())
		case errors.Is(err, core.ErrTokenRevoked):
			core.JSONError(w, core.TokenRevokedError())
		case errors.Is(err, core.ErrTokenInvalid):
			core.JSONError(w, core.TokenInvalidError())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, resp)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetCurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "user"))
		return
	}
	core.OK(w, user)
}

type logoutBody struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var body logoutBody
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}
	}

	if err := h.service.Logout(r.Context(), body.RefreshToken, middleware.GetClaims(r.Context())); err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.Forbidden(w, "token does not belong to caller")
			return
		}
		core.JSONError(w, core.ToAppError(err, "session"))
		return
	}

	core.NoContent(w)
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.LogoutAll(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.NoContent(w)
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.GetActiveSessions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, SessionsResponse{Sessions: sessions})
}

func (h *Handler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	err := h.service.RevokeSession(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "sessionID"),
	)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "session"))
		return
	}
	core.NoContent(w)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[ChangePasswordRequest](h, w, r)
	if !ok {
		return
	}

	err := h.service.ChangePassword(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req.CurrentPassword,
		req.NewPassword,
	)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.Unauthorized(w, "current password is incorrect")
			return
		}
		core.JSONError(w, core.ToAppError(err, "user"))
		return
	}

	core.NoContent(w)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[ForgotPasswordRequest](h, w, r)
	if !ok {
		return
	}

	if err := h.reset.Forgot(r.Context(), req.Email); err != nil {
		h.logger.ErrorContext(r.Context(), "forgot password failed", "error", err)
	}

	core.OK(w, MessageResponse{Message: ForgotPasswordMessage})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[ResetPasswordRequest](h, w, r)
	if !ok {
		return
	}

	err := h.reset.Reset(r.Context(), req.Token, req.Password)
	switch {
	case err == nil:
		core.OK(w, MessageResponse{Message: "Password has been reset successfully"})
	case errors.Is(err, ErrResetTokenInvalid):
		core.BadRequest(w, "Invalid token")
	case errors.Is(err, ErrResetTokenExpired):
		core.BadRequest(w, "Token expired")
	default:
		core.InternalServerError(w, err)
	}
}
