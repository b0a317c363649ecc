// Package http wires the gateway's surface: the session API the login screen
// talks to, the clinic API, operational endpoints, and the page proxy, all
// behind the edge filter and the route guard.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	clinichttp "github.com/dentalops/clinicgate/internal/clinic/http"
	clinicservice "github.com/dentalops/clinicgate/internal/clinic/service"
	"github.com/dentalops/clinicgate/internal/console/authclient"
	"github.com/dentalops/clinicgate/internal/console/gate"
	"github.com/dentalops/clinicgate/internal/console/routes"
	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/dentalops/clinicgate/internal/platform/metrics"
	"github.com/dentalops/clinicgate/pkg/httpx"
	"github.com/dentalops/clinicgate/pkg/slogx"
)

// Router holds shared dependencies for the gateway handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	routes     *routes.Table
	store      session.Store
	sessions   *session.Managers
	auth       *authclient.Client
	metrics    *metrics.Metrics
	secure     bool
	sessionTTL time.Duration

	ClinicService *clinicservice.Service
	PagesUpstream string
}

func NewRouter(
	tbl *routes.Table,
	st session.Store,
	sessions *session.Managers,
	auth *authclient.Client,
	m *metrics.Metrics,
	buildVersion string,
	secure bool,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		routes:       tbl,
		store:        st,
		sessions:     sessions,
		auth:         auth,
		metrics:      m,
		secure:       secure,
		sessionTTL:   sessionTTL,
	}

	guard := gate.NewGuard(tbl, auth, sessions, m, secure)

	// Order matters: logging first, then the cookie-only edge filter, then
	// the authoritative guard.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, tbl.SkipPrefixes...),
		gate.EdgeFilter(tbl, m),
		guard.Middleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerSystem()
	clinichttp.Register(r.Mux, r.ClinicService)
	r.registerPages()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	h := &SessionHandler{
		Sessions:   r.sessions,
		Metrics:    r.metrics,
		Secure:     r.secure,
		SessionTTL: r.sessionTTL,
	}

	// POST /api/session - a login attempt; strict limit by IP + login field
	r.Mux.Handle("POST /api/session",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "login"),
		),
	)
	r.Mux.Handle("GET /api/session",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /api/session",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /api/session/user",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateUser),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}

func (r *Router) registerPages() {
	r.Mux.Handle("/", PagesHandler(r.PagesUpstream, r.logger))
}
