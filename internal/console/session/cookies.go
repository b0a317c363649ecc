package session

import (
	"net/http"
	"time"

	"github.com/dentalops/clinicgate/pkg/cryptox"
)

// Cookie names. SIDCookie carries the opaque session ID and is HttpOnly.
// AuthFlagCookie is the coarse "probably signed in" signal the edge filter
// reads; it never carries a credential and is intentionally script-readable
// so the frontend can mirror it.
const (
	SIDCookie      = "clinic_sid"
	AuthFlagCookie = "clinic_auth"
)

// NewSID mints an opaque session identifier.
func NewSID() string {
	return cryptox.MustGenerateToken(cryptox.TokenSize256)
}

// SetAuthCookies sets the session ID cookie and the coarse auth flag
// together. The invariant "token stored ⇔ flag set" holds because login is
// the only path that calls this and it only runs after a successful Put.
func SetAuthCookies(w http.ResponseWriter, sid string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SIDCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     AuthFlagCookie,
		Value:    "1",
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookies expires both cookies.
func ClearAuthCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{SIDCookie, AuthFlagCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == SIDCookie,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// SIDFromRequest returns the session ID cookie value, or "".
func SIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(SIDCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// AuthFlagFromRequest reports whether the coarse auth flag cookie is set.
// This is the only session signal the edge filter is allowed to read.
func AuthFlagFromRequest(r *http.Request) bool {
	c, err := r.Cookie(AuthFlagCookie)
	return err == nil && c.Value == "1"
}
