// Package authclient owns the token lifecycle on the gateway side: it is the
// only writer of the session store and the only component that talks to the
// identity backend.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/dentalops/clinicgate/pkg/httpx"
)

// expirySkew is subtracted from the reported access-token lifetime so the
// local "looks authenticated" heuristic flips slightly before the backend
// would start rejecting the token.
const expirySkew = 30 * time.Second

// DefaultTimeout bounds every identity-backend call. Validation and refresh
// fail closed when the deadline is exceeded.
const DefaultTimeout = 5 * time.Second

// Client is an HTTP client for the identity backend's auth contract.
type Client struct {
	baseURL string
	httpc   *http.Client
	store   session.Store
	log     *slog.Logger
}

// New builds a client. The store is where successful logins and refreshes
// are persisted and failed validations are cleared.
func New(baseURL string, store session.Store, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   &http.Client{Timeout: DefaultTimeout},
		store:   store,
		log:     log,
	}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken,omitempty"`
	TokenType    string              `json:"tokenType,omitempty"`
	ExpiresIn    int                 `json:"expiresIn"`
	User         session.UserProfile `json:"user"`
}

// Login exchanges credentials for a session. On success the session is
// persisted before returning; on a 4xx nothing is persisted and a
// *CredentialError is returned for the login form.
func (c *Client) Login(ctx context.Context, sid, login, password string) (session.Session, error) {
	var tr tokenResponse
	status, errBody, err := c.postJSON(ctx, "/v1/auth/login", loginRequest{Login: login, Password: password}, "", &tr)
	if err != nil {
		return session.Session{}, err
	}
	if status != http.StatusOK {
		credErr := &CredentialError{Message: "login failed", Status: status}
		if errBody != nil {
			if errBody.Message != "" {
				credErr.Message = errBody.Message
			}
			credErr.FieldErrors = errBody.FieldErrors
			credErr.Errors = errBody.Errors
		}
		return session.Session{}, credErr
	}

	sess := sessionFromToken(tr)
	if err := c.store.Put(ctx, sid, sess); err != nil {
		return session.Session{}, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// Logout revokes the session server-side on a best-effort basis and always
// clears the local store afterwards. It never reports revocation failures to
// the caller; the local clear is what matters. Calling it twice is harmless.
func (c *Client) Logout(ctx context.Context, sid string) error {
	sess, err := c.store.Get(ctx, sid)
	if err == nil && sess.AccessToken != "" {
		if status, _, err := c.postJSON(ctx, "/v1/auth/logout", nil, sess.AccessToken, nil); err != nil {
			c.log.Warn("server-side logout failed, clearing locally anyway", "error", err)
		} else if status >= 300 {
			c.log.Warn("server-side logout rejected, clearing locally anyway", "status", status)
		}
	}
	if err := c.store.Clear(ctx, sid); err != nil {
		c.log.Warn("session clear failed", "error", err)
	}
	return nil
}

// Refresh exchanges the stored refresh token for a new access token. A
// definitive rejection (expired or revoked refresh token) clears the store
// and returns *SessionExpiredError; a transient network failure leaves the
// store untouched.
func (c *Client) Refresh(ctx context.Context, sid string) (session.Session, error) {
	sess, err := c.store.Get(ctx, sid)
	if err != nil || sess.RefreshToken == "" {
		_ = c.store.Clear(ctx, sid)
		return session.Session{}, &SessionExpiredError{Reason: "no refresh token"}
	}

	var tr tokenResponse
	status, _, err := c.postJSON(ctx, "/v1/auth/refresh", refreshRequest{RefreshToken: sess.RefreshToken}, "", &tr)
	if err != nil {
		return session.Session{}, fmt.Errorf("refresh: %w", err)
	}
	if status != http.StatusOK {
		_ = c.store.Clear(ctx, sid)
		return session.Session{}, &SessionExpiredError{Reason: fmt.Sprintf("refresh rejected with status %d", status)}
	}

	next := sessionFromToken(tr)
	// Refresh responses may omit the profile; the cached one stays valid.
	if next.User.ID == "" {
		next.User = sess.User
	}
	if next.RefreshToken == "" {
		next.RefreshToken = sess.RefreshToken
	}
	if err := c.store.Put(ctx, sid, next); err != nil {
		return session.Session{}, fmt.Errorf("persist session: %w", err)
	}
	return next, nil
}

// ValidateSession is the authoritative boolean gate: it sends the current
// access token to the backend and returns false on any rejection, missing
// token, or network error, and never returns an error. On a 401 it attempts
// a single refresh and re-validates once.
func (c *Client) ValidateSession(ctx context.Context, sid string) bool {
	sess, err := c.store.Get(ctx, sid)
	if err != nil || sess.AccessToken == "" {
		return false
	}

	status, err := c.getValidate(ctx, sess.AccessToken)
	if err != nil {
		c.log.Warn("session validation unreachable, failing closed", "error", err)
		return false
	}
	if status < 300 {
		return true
	}
	if status != http.StatusUnauthorized {
		return false
	}

	// Access token rejected: one refresh, one re-validate, then give up.
	refreshed, err := c.Refresh(ctx, sid)
	if err != nil {
		return false
	}
	status, err = c.getValidate(ctx, refreshed.AccessToken)
	return err == nil && status < 300
}

// IsAuthenticated is the fast local check, no network.
func (c *Client) IsAuthenticated(ctx context.Context, sid string) bool {
	sess, err := c.store.Get(ctx, sid)
	return err == nil && sess.LooksAuthenticated()
}

// HasAccessToken reports whether any bearer credential is stored at all.
func (c *Client) HasAccessToken(ctx context.Context, sid string) bool {
	sess, err := c.store.Get(ctx, sid)
	return err == nil && sess.HasAccessToken()
}

// User returns the cached profile, or nil without a session.
func (c *Client) User(ctx context.Context, sid string) *session.UserProfile {
	sess, err := c.store.Get(ctx, sid)
	if err != nil {
		return nil
	}
	u := sess.User
	return &u
}

// UpdateUser merges a partial profile into the cached copy without a round
// trip. Tokens are untouched.
func (c *Client) UpdateUser(ctx context.Context, sid string, patch session.UserPatch) (session.UserProfile, error) {
	sess, err := c.store.Get(ctx, sid)
	if err != nil {
		return session.UserProfile{}, err
	}
	sess.User = patch.Apply(sess.User)
	if err := c.store.Put(ctx, sid, sess); err != nil {
		return session.UserProfile{}, err
	}
	return sess.User, nil
}

func sessionFromToken(tr tokenResponse) session.Session {
	expiresAt := time.Time{}
	if tr.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - expirySkew)
	}
	return session.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		ExpiresIn:    tr.ExpiresIn,
		ExpiresAt:    expiresAt,
		User:         tr.User,
	}
}

// postJSON issues a POST with an optional JSON body and bearer token. A 200
// response is decoded into out when out is non-nil; other statuses get their
// body decoded into the shared error shape, best-effort.
func (c *Client) postJSON(ctx context.Context, path string, body any, bearer string, out any) (int, *httpx.ErrorBody, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return 0, nil, fmt.Errorf("decode response: %w", err)
			}
		}
		return resp.StatusCode, nil, nil
	}

	var errBody httpx.ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		return resp.StatusCode, nil, nil
	}
	return resp.StatusCode, &errBody, nil
}

func (c *Client) getValidate(ctx context.Context, bearer string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/auth/validate", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
