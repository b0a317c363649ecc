package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/dentalops/clinicgate/internal/console/authclient"
	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/dentalops/clinicgate/internal/platform/metrics"
	"github.com/dentalops/clinicgate/pkg/httpx"
	"github.com/dentalops/clinicgate/pkg/slogx"
)

// SessionHandler serves the /api/session endpoints that back the login
// screen, the header's logout button and the profile form.
type SessionHandler struct {
	Sessions   *session.Managers
	Metrics    *metrics.Metrics
	Secure     bool
	SessionTTL time.Duration
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type snapshotResponse struct {
	User            *session.UserProfile `json:"user"`
	IsAuthenticated bool                 `json:"isAuthenticated"`
	IsLoading       bool                 `json:"isLoading"`
}

func toSnapshotResponse(s session.Snapshot) snapshotResponse {
	return snapshotResponse{
		User:            s.User,
		IsAuthenticated: s.IsAuthenticated,
		IsLoading:       s.IsLoading,
	}
}

// HandleLogin serves POST /api/session. A successful login is the only place
// the session cookie and the coarse auth flag get set, and they are set
// together after the tokens are already persisted. The flag never exists
// without a stored token behind it.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Login == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "login and password are required")
		return
	}

	sid := session.SIDFromRequest(r)
	if sid == "" {
		sid = session.NewSID()
	}
	mgr := h.Sessions.For(sid)

	if err := mgr.Login(ctx, req.Login, req.Password); err != nil {
		var credErr *authclient.CredentialError
		if errors.As(err, &credErr) {
			h.Metrics.Logins.WithLabelValues("rejected").Inc()
			status := credErr.Status
			if status < 400 || status > 499 {
				status = http.StatusUnauthorized
			}
			httpx.WriteError(w, status, httpx.ErrorBody{
				Message:     credErr.Message,
				FieldErrors: credErr.FieldErrors,
				Errors:      credErr.Errors,
			})
			return
		}
		h.Metrics.Logins.WithLabelValues("error").Inc()
		log.Error("login failed against identity backend", "error", err)
		httpx.WriteMessage(w, http.StatusBadGateway, "authentication service unavailable")
		return
	}

	h.Metrics.Logins.WithLabelValues("ok").Inc()
	session.SetAuthCookies(w, sid, h.SessionTTL, h.Secure)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toSnapshotResponse(mgr.Snapshot()))
}

// HandleGet serves GET /api/session: the current snapshot, no network.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sid := session.SIDFromRequest(r)
	if sid == "" {
		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, snapshotResponse{})
		return
	}
	snap := h.Sessions.For(sid).CheckAuth(r.Context())
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

// HandleLogout serves DELETE /api/session. Always 204; logging out an
// already-dead session is fine.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sid := session.SIDFromRequest(r); sid != "" {
		mgr := h.Sessions.For(sid)
		mgr.Logout(r.Context())
		h.Sessions.Drop(sid)
	}
	session.ClearAuthCookies(w, h.Secure)
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateUser serves PATCH /api/session/user.
func (h *SessionHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sid := session.SIDFromRequest(r)
	if sid == "" {
		httpx.WriteMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}
	mgr := h.Sessions.For(sid)
	if !mgr.Snapshot().IsAuthenticated {
		httpx.WriteMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var patch session.UserPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := mgr.UpdateUser(ctx, patch)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			httpx.WriteMessage(w, http.StatusUnauthorized, "session expired")
			return
		}
		slogx.FromContext(ctx).Error("profile update failed", "error", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user)
}
