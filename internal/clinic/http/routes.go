// Package http exposes the clinic records as a JSON API. The handlers are
// mounted on the gateway mux behind the route guard, so every request here
// already carries a validated session.
package http

import (
	"errors"
	"net/http"

	"github.com/dentalops/clinicgate/internal/clinic/service"
	"github.com/dentalops/clinicgate/internal/clinic/store"
	"github.com/dentalops/clinicgate/pkg/httpx"
	"github.com/dentalops/clinicgate/pkg/slogx"
)

// Register mounts the clinic API on mux.
func Register(mux *http.ServeMux, svc *service.Service) {
	dentists := &DentistsHandler{Service: svc}
	mux.Handle("GET /api/dentists", httpx.Chain(http.HandlerFunc(dentists.HandleList),
		httpx.RateLimitByIP(httpx.LenientLimit)))
	mux.Handle("POST /api/dentists", httpx.Chain(http.HandlerFunc(dentists.HandleCreate),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("GET /api/dentists/{id}", httpx.Chain(http.HandlerFunc(dentists.HandleGet),
		httpx.RateLimitByIP(httpx.LenientLimit)))
	mux.Handle("PUT /api/dentists/{id}", httpx.Chain(http.HandlerFunc(dentists.HandleUpdate),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("DELETE /api/dentists/{id}", httpx.Chain(http.HandlerFunc(dentists.HandleDelete),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("GET /api/dentists/{id}/appointments", httpx.Chain(http.HandlerFunc(dentists.HandleAppointments),
		httpx.RateLimitByIP(httpx.LenientLimit)))

	patients := &PatientsHandler{Service: svc}
	mux.Handle("GET /api/patients", httpx.Chain(http.HandlerFunc(patients.HandleList),
		httpx.RateLimitByIP(httpx.LenientLimit)))
	mux.Handle("POST /api/patients", httpx.Chain(http.HandlerFunc(patients.HandleCreate),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("GET /api/patients/{id}", httpx.Chain(http.HandlerFunc(patients.HandleGet),
		httpx.RateLimitByIP(httpx.LenientLimit)))
	mux.Handle("PUT /api/patients/{id}", httpx.Chain(http.HandlerFunc(patients.HandleUpdate),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("DELETE /api/patients/{id}", httpx.Chain(http.HandlerFunc(patients.HandleDelete),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("GET /api/patients/{id}/treatment-plans", httpx.Chain(http.HandlerFunc(patients.HandlePlans),
		httpx.RateLimitByIP(httpx.LenientLimit)))

	appts := &AppointmentsHandler{Service: svc}
	mux.Handle("GET /api/appointments", httpx.Chain(http.HandlerFunc(appts.HandleList),
		httpx.RateLimitByIP(httpx.LenientLimit)))
	mux.Handle("POST /api/appointments", httpx.Chain(http.HandlerFunc(appts.HandleCreate),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("GET /api/appointments/{id}", httpx.Chain(http.HandlerFunc(appts.HandleGet),
		httpx.RateLimitByIP(httpx.LenientLimit)))
	mux.Handle("POST /api/appointments/{id}/status", httpx.Chain(http.HandlerFunc(appts.HandleStatus),
		httpx.RateLimitByIP(httpx.ModerateLimit)))

	waitlist := &WaitlistHandler{Service: svc}
	mux.Handle("GET /api/waitlist", httpx.Chain(http.HandlerFunc(waitlist.HandleList),
		httpx.RateLimitByIP(httpx.LenientLimit)))
	mux.Handle("POST /api/waitlist", httpx.Chain(http.HandlerFunc(waitlist.HandleCreate),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("DELETE /api/waitlist/{id}", httpx.Chain(http.HandlerFunc(waitlist.HandleDelete),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("POST /api/waitlist/{id}/promote", httpx.Chain(http.HandlerFunc(waitlist.HandlePromote),
		httpx.RateLimitByIP(httpx.ModerateLimit)))

	plans := &PlansHandler{Service: svc}
	mux.Handle("POST /api/treatment-plans", httpx.Chain(http.HandlerFunc(plans.HandleCreate),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("GET /api/treatment-plans/{id}", httpx.Chain(http.HandlerFunc(plans.HandleGet),
		httpx.RateLimitByIP(httpx.LenientLimit)))
	mux.Handle("PUT /api/treatment-plans/{id}", httpx.Chain(http.HandlerFunc(plans.HandleUpdate),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
	mux.Handle("POST /api/treatment-plans/{id}/status", httpx.Chain(http.HandlerFunc(plans.HandleStatus),
		httpx.RateLimitByIP(httpx.ModerateLimit)))
}

// writeServiceError maps service errors onto HTTP statuses with the shared
// error body shape.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrValidation):
		httpx.WriteMessage(w, http.StatusBadRequest, "validation failed")
	case errors.Is(err, service.ErrUnknownPatient):
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorBody{
			Message:     "unknown patient",
			FieldErrors: map[string]string{"patientId": "patient does not exist"},
		})
	case errors.Is(err, service.ErrUnknownDentist):
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorBody{
			Message:     "unknown dentist",
			FieldErrors: map[string]string{"dentistId": "dentist does not exist"},
		})
	case errors.Is(err, service.ErrDentistInactive):
		httpx.WriteMessage(w, http.StatusUnprocessableEntity, "dentist is not accepting appointments")
	case errors.Is(err, service.ErrDoubleBooked):
		httpx.WriteMessage(w, http.StatusConflict, "the requested slot is already booked")
	case errors.Is(err, service.ErrBadTransition), errors.Is(err, service.ErrUnknownStatus):
		httpx.WriteMessage(w, http.StatusConflict, "invalid status change")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteMessage(w, http.StatusConflict, "already exists")
	default:
		slogx.FromContext(r.Context()).Error("clinic api error", "error", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
	}
}
