package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dentalops/clinicgate/internal/identity/domain"
	"github.com/dentalops/clinicgate/internal/identity/service"
	"github.com/dentalops/clinicgate/pkg/httpx"
	"github.com/dentalops/clinicgate/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	Active    bool       `json:"active"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	TokenType    string       `json:"tokenType"`
	ExpiresIn    int          `json:"expiresIn"`
	User         userResponse `json:"user"`
}

func toUserResponse(u domain.User) userResponse {
	resp := userResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		Active:   u.Active,
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

func toTokenResponse(pair *domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		User:         toUserResponse(pair.User),
	}
}

// HandleLogin serves POST /v1/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Login = strings.TrimSpace(req.Login)
	fieldErrs := map[string]string{}
	if req.Login == "" {
		fieldErrs["login"] = "login is required"
	}
	if req.Password == "" {
		fieldErrs["password"] = "password is required"
	}
	if len(fieldErrs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorBody{
			Message:     "validation failed",
			FieldErrors: fieldErrs,
		})
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteMessage(w, http.StatusUnauthorized, "invalid login or password")
		case errors.Is(err, service.ErrAccountDisabled):
			httpx.WriteMessage(w, http.StatusForbidden, "account is disabled")
		default:
			log.Error("login failed", "error", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleRefresh serves POST /v1/auth/refresh.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	pair, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteMessage(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		log.Error("refresh failed", "error", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleValidate serves GET /v1/auth/validate. 204 means the bearer token is
// good and its user is still active; 401 means it is not.
func (h *AuthHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := bearerToken(r)
	if token == "" {
		httpx.WriteMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	if _, err := h.AuthService.Validate(ctx, token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			httpx.WriteMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}
		slogx.FromContext(ctx).Error("validate failed", "error", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLogout serves POST /v1/auth/logout. Always 204: logging out twice, or
// with a dead token, is not an error.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if token := bearerToken(r); token != "" {
		if err := h.AuthService.Logout(ctx, token); err != nil {
			slogx.FromContext(ctx).Warn("logout revocation failed", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
