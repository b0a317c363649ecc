// Package session owns the gateway's per-browser session state: the token
// store (access/refresh tokens plus the cached user profile, keyed by the
// opaque session cookie) and the reactive manager page handlers read their
// authentication snapshot from.
package session

import "time"

// UserProfile is the cached identity of the signed-in console user.
type UserProfile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Username  string     `json:"username,omitempty"`
	Role      string     `json:"role,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// UserPatch is a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// Apply merges the patch into a copy of u and returns it.
func (p UserPatch) Apply(u UserProfile) UserProfile {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	return u
}

// Session is the authoritative authentication state for one browser session.
// Created on login, the access token half replaced on refresh, cleared
// entirely on logout or failed validation.
type Session struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	TokenType    string      `json:"tokenType,omitempty"`
	ExpiresIn    int         `json:"expiresIn"` // access token lifetime at issuance, seconds
	ExpiresAt    time.Time   `json:"expiresAt"`
	User         UserProfile `json:"user"`
}

// HasAccessToken reports whether a bearer credential is present at all.
// The route guard treats absence as "redirect to login" without a backend
// round trip.
func (s Session) HasAccessToken() bool { return s.AccessToken != "" }

// LooksAuthenticated reports whether the session carries a non-expired-looking
// access token. Expiry here is a local heuristic only; the backend validate
// call remains the authority.
func (s Session) LooksAuthenticated() bool {
	if s.AccessToken == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().Before(s.ExpiresAt)
}
