package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/store"
	"github.com/dentalops/clinicgate/pkg/idx"
)

func (s *Service) GetTreatmentPlan(ctx context.Context, id string) (domain.TreatmentPlan, error) {
	return s.Store.TreatmentPlans().GetTreatmentPlanByID(ctx, id)
}

func (s *Service) ListTreatmentPlansForPatient(ctx context.Context, patientID string) ([]domain.TreatmentPlan, error) {
	return s.Store.TreatmentPlans().ListTreatmentPlansForPatient(ctx, patientID)
}

// CreateTreatmentPlan creates a plan in draft.
func (s *Service) CreateTreatmentPlan(ctx context.Context, p domain.TreatmentPlan) (domain.TreatmentPlan, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" || p.PatientID == "" || p.DentistID == "" {
		return domain.TreatmentPlan{}, ErrValidation
	}
	if _, err := s.Store.Patients().GetPatientByID(ctx, p.PatientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TreatmentPlan{}, ErrUnknownPatient
		}
		return domain.TreatmentPlan{}, err
	}
	if _, err := s.Store.Dentists().GetDentistByID(ctx, p.DentistID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TreatmentPlan{}, ErrUnknownDentist
		}
		return domain.TreatmentPlan{}, err
	}

	p.ID = idx.New().String()
	p.Status = domain.PlanDraft
	if err := s.Store.TreatmentPlans().CreateTreatmentPlan(ctx, p); err != nil {
		return domain.TreatmentPlan{}, err
	}
	return s.Store.TreatmentPlans().GetTreatmentPlanByID(ctx, p.ID)
}

func (s *Service) UpdateTreatmentPlan(ctx context.Context, p domain.TreatmentPlan) (domain.TreatmentPlan, error) {
	if strings.TrimSpace(p.Title) == "" {
		return domain.TreatmentPlan{}, ErrValidation
	}
	if err := s.Store.TreatmentPlans().UpdateTreatmentPlan(ctx, p); err != nil {
		return domain.TreatmentPlan{}, err
	}
	return s.Store.TreatmentPlans().GetTreatmentPlanByID(ctx, p.ID)
}

// TransitionTreatmentPlan enforces the plan lifecycle: draft to active,
// active to completed, and cancellation from any non-terminal state.
func (s *Service) TransitionTreatmentPlan(ctx context.Context, id, to string) (domain.TreatmentPlan, error) {
	switch to {
	case domain.PlanActive, domain.PlanCompleted, domain.PlanCancelled:
	default:
		return domain.TreatmentPlan{}, ErrUnknownStatus
	}

	p, err := s.Store.TreatmentPlans().GetTreatmentPlanByID(ctx, id)
	if err != nil {
		return domain.TreatmentPlan{}, err
	}
	if !domain.CanTransition(p.Status, to) {
		return domain.TreatmentPlan{}, ErrBadTransition
	}
	if err := s.Store.TreatmentPlans().UpdateTreatmentPlanStatus(ctx, id, to); err != nil {
		return domain.TreatmentPlan{}, err
	}
	return s.Store.TreatmentPlans().GetTreatmentPlanByID(ctx, id)
}
