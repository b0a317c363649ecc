package http

import (
	"net/http"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/service"
	"github.com/dentalops/clinicgate/pkg/httpx"
)

type DentistsHandler struct {
	Service *service.Service
}

type dentistJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty,omitempty"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type dentistRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
	Active    *bool  `json:"active"`
}

func toDentistJSON(d domain.Dentist) dentistJSON {
	return dentistJSON{
		ID:        d.ID,
		Name:      d.Name,
		Specialty: d.Specialty,
		Email:     d.Email,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (h *DentistsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListDentists(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]dentistJSON, 0, len(list))
	for _, d := range list {
		out = append(out, toDentistJSON(d))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *DentistsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.GetDentist(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDentistJSON(d))
}

func (h *DentistsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req dentistRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d, err := h.Service.CreateDentist(r.Context(), domain.Dentist{
		Name:      req.Name,
		Specialty: req.Specialty,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toDentistJSON(d))
}

func (h *DentistsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req dentistRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	d, err := h.Service.UpdateDentist(r.Context(), domain.Dentist{
		ID:        r.PathValue("id"),
		Name:      req.Name,
		Specialty: req.Specialty,
		Email:     req.Email,
		Active:    active,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDentistJSON(d))
}

func (h *DentistsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteDentist(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DentistsHandler) HandleAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAppointmentsForDentist(r.Context(), r.PathValue("id"))
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
