package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/dentalops/clinicgate/pkg/httpx"
)

type healthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// LivezHandler always answers 200 while the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler probes the session store with a throwaway read; a miss is a
// healthy answer, only ErrUnavailable degrades readiness.
func ReadyzHandler(startTime time.Time, version string, st session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"session_store": "ok"}
		status := "ok"
		code := http.StatusOK

		if _, err := st.Get(r.Context(), "readyz-probe"); err != nil && !errors.Is(err, session.ErrNotFound) {
			checks["session_store"] = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, healthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
