package http

import (
	"net/http"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/service"
	"github.com/dentalops/clinicgate/pkg/httpx"
)

type WaitlistHandler struct {
	Service *service.Service
}

type waitlistJSON struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patientId"`
	DentistID string    `json:"dentistId,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

type waitlistRequest struct {
	PatientID string `json:"patientId"`
	DentistID string `json:"dentistId"`
	Reason    string `json:"reason"`
	Priority  int    `json:"priority"`
}

type promoteRequest struct {
	DentistID string    `json:"dentistId"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
}

func toWaitlistJSON(e domain.WaitlistEntry) waitlistJSON {
	return waitlistJSON{
		ID:        e.ID,
		PatientID: e.PatientID,
		DentistID: e.DentistID,
		Reason:    e.Reason,
		Priority:  e.Priority,
		CreatedAt: e.CreatedAt,
	}
}

func (h *WaitlistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListWaitlist(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]waitlistJSON, 0, len(list))
	for _, e := range list {
		out = append(out, toWaitlistJSON(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *WaitlistHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req waitlistRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, err := h.Service.AddToWaitlist(r.Context(), domain.WaitlistEntry{
		PatientID: req.PatientID,
		DentistID: req.DentistID,
		Reason:    req.Reason,
		Priority:  req.Priority,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toWaitlistJSON(e))
}

func (h *WaitlistHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemoveFromWaitlist(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WaitlistHandler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := h.Service.PromoteWaitlistEntry(r.Context(),
		r.PathValue("id"), req.DentistID, req.StartsAt, req.EndsAt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAppointmentJSON(a))
}
