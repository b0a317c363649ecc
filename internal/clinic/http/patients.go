package http

import (
	"net/http"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/service"
	"github.com/dentalops/clinicgate/pkg/httpx"
)

type PatientsHandler struct {
	Service *service.Service
}

type patientJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	DateOfBirth string    `json:"dateOfBirth,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type patientRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
	Notes       string `json:"notes"`
}

func toPatientJSON(p domain.Patient) patientJSON {
	return patientJSON{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		DateOfBirth: p.DateOfBirth,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *PatientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListPatients(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]patientJSON, 0, len(list))
	for _, p := range list {
		out = append(out, toPatientJSON(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *PatientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPatientJSON(p))
}

func (h *PatientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.Service.CreatePatient(r.Context(), domain.Patient{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toPatientJSON(p))
}

func (h *PatientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.Service.UpdatePatient(r.Context(), domain.Patient{
		ID:          r.PathValue("id"),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPatientJSON(p))
}

func (h *PatientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeletePatient(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PatientsHandler) HandlePlans(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListTreatmentPlansForPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]planJSON, 0, len(list))
	for _, p := range list {
		out = append(out, toPlanJSON(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
