package http

import (
	"net/http"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/service"
	"github.com/dentalops/clinicgate/pkg/httpx"
)

type PlansHandler struct {
	Service *service.Service
}

type planJSON struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId"`
	DentistID   string    `json:"dentistId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type planRequest struct {
	PatientID   string `json:"patientId"`
	DentistID   string `json:"dentistId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func toPlanJSON(p domain.TreatmentPlan) planJSON {
	return planJSON{
		ID:          p.ID,
		PatientID:   p.PatientID,
		DentistID:   p.DentistID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *PlansHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetTreatmentPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPlanJSON(p))
}

func (h *PlansHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.Service.CreateTreatmentPlan(r.Context(), domain.TreatmentPlan{
		PatientID:   req.PatientID,
		DentistID:   req.DentistID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toPlanJSON(p))
}

func (h *PlansHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.Service.UpdateTreatmentPlan(r.Context(), domain.TreatmentPlan{
		ID:          r.PathValue("id"),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPlanJSON(p))
}

func (h *PlansHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.Service.TransitionTreatmentPlan(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPlanJSON(p))
}
