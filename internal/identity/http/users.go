package http

import (
	"errors"
	"net/http"

	"github.com/dentalops/clinicgate/internal/identity/service"
	"github.com/dentalops/clinicgate/internal/identity/store"
	"github.com/dentalops/clinicgate/pkg/httpx"
	"github.com/dentalops/clinicgate/pkg/jwtx"
	"github.com/dentalops/clinicgate/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
	Verifier    jwtx.Verifier
}

type updateMeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// subject authenticates the request and returns the user ID, or writes a 401
// and returns "".
func (h *UsersHandler) subject(w http.ResponseWriter, r *http.Request) string {
	token := bearerToken(r)
	if token == "" {
		httpx.WriteMessage(w, http.StatusUnauthorized, "missing bearer token")
		return ""
	}
	claims, err := h.Verifier.Verify(token)
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, "invalid token")
		return ""
	}
	return claims.Subject
}

// HandleMe serves GET /v1/users/me.
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.subject(w, r)
	if userID == "" {
		return
	}

	u, err := h.UserService.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}
		slogx.FromContext(ctx).Error("get user failed", "error", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleUpdateMe serves PATCH /v1/users/me.
func (h *UsersHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.subject(w, r)
	if userID == "" {
		return
	}

	var req updateMeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.UserService.UpdateProfile(ctx, userID, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, httpx.ErrorBody{
				Message:     "email already in use",
				FieldErrors: map[string]string{"email": "email already in use"},
			})
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteMessage(w, http.StatusUnauthorized, "invalid token")
		default:
			slogx.FromContext(ctx).Error("profile update failed", "error", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleChangePassword serves POST /v1/users/me/password. A successful change
// revokes every refresh token, so other sessions fail their next validation.
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.subject(w, r)
	if userID == "" {
		return
	}

	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorBody{
			Message:     "validation failed",
			FieldErrors: map[string]string{"newPassword": "new password is required"},
		})
		return
	}

	if err := h.UserService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			httpx.WriteError(w, http.StatusForbidden, httpx.ErrorBody{
				Message:     "current password is incorrect",
				FieldErrors: map[string]string{"currentPassword": "current password is incorrect"},
			})
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteMessage(w, http.StatusUnauthorized, "invalid token")
		default:
			slogx.FromContext(ctx).Error("password change failed", "error", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
