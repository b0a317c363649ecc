// Package service holds the clinic's business rules: overlap-free scheduling,
// waitlist promotion and treatment plan lifecycle.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/store"
	"github.com/dentalops/clinicgate/pkg/idx"
)

var (
	ErrValidation      = errors.New("validation_failed")
	ErrDoubleBooked    = errors.New("double_booked")
	ErrBadTransition   = errors.New("invalid_status_transition")
	ErrUnknownPatient  = errors.New("unknown_patient")
	ErrUnknownDentist  = errors.New("unknown_dentist")
	ErrDentistInactive = errors.New("dentist_inactive")
	ErrUnknownStatus   = errors.New("unknown_status")
)

type Service struct {
	Store store.Store
}

func (s *Service) ListDentists(ctx context.Context) ([]domain.Dentist, error) {
	return s.Store.Dentists().ListDentists(ctx)
}

func (s *Service) GetDentist(ctx context.Context, id string) (domain.Dentist, error) {
	return s.Store.Dentists().GetDentistByID(ctx, id)
}

func (s *Service) CreateDentist(ctx context.Context, d domain.Dentist) (domain.Dentist, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	if d.Name == "" || d.Email == "" {
		return domain.Dentist{}, ErrValidation
	}
	d.ID = idx.New().String()
	d.Active = true
	if err := s.Store.Dentists().CreateDentist(ctx, d); err != nil {
		return domain.Dentist{}, err
	}
	return s.Store.Dentists().GetDentistByID(ctx, d.ID)
}

func (s *Service) UpdateDentist(ctx context.Context, d domain.Dentist) (domain.Dentist, error) {
	if strings.TrimSpace(d.Name) == "" {
		return domain.Dentist{}, ErrValidation
	}
	if err := s.Store.Dentists().UpdateDentist(ctx, d); err != nil {
		return domain.Dentist{}, err
	}
	return s.Store.Dentists().GetDentistByID(ctx, d.ID)
}

func (s *Service) DeleteDentist(ctx context.Context, id string) error {
	return s.Store.Dentists().DeleteDentist(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	return s.Store.Patients().ListPatients(ctx)
}

func (s *Service) GetPatient(ctx context.Context, id string) (domain.Patient, error) {
	return s.Store.Patients().GetPatientByID(ctx, id)
}

func (s *Service) CreatePatient(ctx context.Context, p domain.Patient) (domain.Patient, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Patient{}, ErrValidation
	}
	p.ID = idx.New().String()
	if err := s.Store.Patients().CreatePatient(ctx, p); err != nil {
		return domain.Patient{}, err
	}
	return s.Store.Patients().GetPatientByID(ctx, p.ID)
}

func (s *Service) UpdatePatient(ctx context.Context, p domain.Patient) (domain.Patient, error) {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Patient{}, ErrValidation
	}
	if err := s.Store.Patients().UpdatePatient(ctx, p); err != nil {
		return domain.Patient{}, err
	}
	return s.Store.Patients().GetPatientByID(ctx, p.ID)
}

func (s *Service) DeletePatient(ctx context.Context, id string) error {
	return s.Store.Patients().DeletePatient(ctx, id)
}
