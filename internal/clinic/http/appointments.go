package http

import (
	"net/http"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/service"
	"github.com/dentalops/clinicgate/pkg/httpx"
)

type AppointmentsHandler struct {
	Service *service.Service
}

type appointmentJSON struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patientId"`
	DentistID string    `json:"dentistId"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type appointmentRequest struct {
	PatientID string    `json:"patientId"`
	DentistID string    `json:"dentistId"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
	Reason    string    `json:"reason"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func toAppointmentJSON(a domain.Appointment) appointmentJSON {
	return appointmentJSON{
		ID:        a.ID,
		PatientID: a.PatientID,
		DentistID: a.DentistID,
		StartsAt:  a.StartsAt,
		EndsAt:    a.EndsAt,
		Reason:    a.Reason,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (h *AppointmentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAppointments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]appointmentJSON, 0, len(list))
	for _, a := range list {
		out = append(out, toAppointmentJSON(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *AppointmentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.GetAppointment(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAppointmentJSON(a))
}

func (h *AppointmentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := h.Service.ScheduleAppointment(r.Context(), domain.Appointment{
		PatientID: req.PatientID,
		DentistID: req.DentistID,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		Reason:    req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAppointmentJSON(a))
}

func (h *AppointmentsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := h.Service.SetAppointmentStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAppointmentJSON(a))
}
