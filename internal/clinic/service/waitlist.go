package service

import (
	"context"
	"errors"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/store"
	"github.com/dentalops/clinicgate/pkg/idx"
)

func (s *Service) ListWaitlist(ctx context.Context) ([]domain.WaitlistEntry, error) {
	return s.Store.Waitlist().ListWaitlist(ctx)
}

func (s *Service) AddToWaitlist(ctx context.Context, e domain.WaitlistEntry) (domain.WaitlistEntry, error) {
	if e.PatientID == "" {
		return domain.WaitlistEntry{}, ErrValidation
	}
	if _, err := s.Store.Patients().GetPatientByID(ctx, e.PatientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.WaitlistEntry{}, ErrUnknownPatient
		}
		return domain.WaitlistEntry{}, err
	}
	if e.Priority == 0 {
		e.Priority = 100
	}
	e.ID = idx.New().String()
	if err := s.Store.Waitlist().CreateWaitlistEntry(ctx, e); err != nil {
		return domain.WaitlistEntry{}, err
	}
	return s.Store.Waitlist().GetWaitlistEntryByID(ctx, e.ID)
}

func (s *Service) RemoveFromWaitlist(ctx context.Context, id string) error {
	return s.Store.Waitlist().DeleteWaitlistEntry(ctx, id)
}

// PromoteWaitlistEntry turns a waitlist entry into a scheduled appointment.
// The appointment insert, the overlap check and the waitlist removal happen
// in one transaction: either the patient has a slot and is off the list, or
// nothing changed.
func (s *Service) PromoteWaitlistEntry(ctx context.Context, entryID, dentistID string, startsAt, endsAt time.Time) (domain.Appointment, error) {
	if !endsAt.After(startsAt) {
		return domain.Appointment{}, ErrValidation
	}

	entry, err := s.Store.Waitlist().GetWaitlistEntryByID(ctx, entryID)
	if err != nil {
		return domain.Appointment{}, err
	}

	// An entry pinned to a dentist can only be promoted to that dentist.
	if dentistID == "" {
		dentistID = entry.DentistID
	}
	if entry.DentistID != "" && dentistID != entry.DentistID {
		return domain.Appointment{}, ErrValidation
	}

	dentist, err := s.Store.Dentists().GetDentistByID(ctx, dentistID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Appointment{}, ErrUnknownDentist
		}
		return domain.Appointment{}, err
	}
	if !dentist.Active {
		return domain.Appointment{}, ErrDentistInactive
	}

	appt := domain.Appointment{
		ID:        idx.New().String(),
		PatientID: entry.PatientID,
		DentistID: dentistID,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		Reason:    entry.Reason,
		Status:    domain.AppointmentScheduled,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Appointments().CountOverlapping(ctx, dentistID, startsAt, endsAt)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDoubleBooked
		}
		if err := tx.Appointments().CreateAppointment(ctx, appt); err != nil {
			return err
		}
		return tx.Waitlist().DeleteWaitlistEntry(ctx, entryID)
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	return s.Store.Appointments().GetAppointmentByID(ctx, appt.ID)
}
