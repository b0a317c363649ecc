// Package gate implements the two-layer navigation gate: a cheap cookie-only
// edge filter that runs before anything else, and the authoritative route
// guard that re-validates the session against the identity backend on every
// navigation.
package gate

import (
	"net/http"
	"net/url"

	"github.com/dentalops/clinicgate/internal/console/routes"
	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/dentalops/clinicgate/internal/platform/metrics"
	"github.com/dentalops/clinicgate/pkg/httpx"
	"github.com/dentalops/clinicgate/pkg/slogx"
)

// EdgeFilter classifies the request path against the route table and the
// coarse auth-flag cookie, and redirects before any content is produced. It
// sees only the path and cookies, never the store or the network. The flag is
// client-readable and not proof of a valid token, so this layer only prevents
// obvious flashes of protected content; the route guard is the boundary.
func EdgeFilter(tbl *routes.Table, m *metrics.Metrics) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			// Static assets, API and operational endpoints are never
			// redirected.
			if tbl.Skip(path) || tbl.IsAPI(path) {
				next.ServeHTTP(w, r)
				return
			}

			flagged := session.AuthFlagFromRequest(r)

			// A flagged user has no business on the login screen.
			if flagged && path == tbl.LoginPath {
				m.GateRedirects.WithLabelValues("edge", "already_authenticated").Inc()
				http.Redirect(w, r, tbl.DashboardPath, http.StatusFound)
				return
			}

			if tbl.Classify(path) == routes.Protected && !flagged && !tbl.IsPublic(path) {
				m.GateRedirects.WithLabelValues("edge", "unauthenticated").Inc()
				slogx.FromContext(r.Context()).Debug("edge filter redirecting to login", "path", path)
				http.Redirect(w, r, loginURL(tbl, path), http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// loginURL builds the login path with a redirect parameter carrying the
// original destination so the post-login flow can return the user there.
func loginURL(tbl *routes.Table, dest string) string {
	q := url.Values{"redirect": {dest}}
	return tbl.LoginPath + "?" + q.Encode()
}
