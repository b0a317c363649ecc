package service

import (
	"context"
	"errors"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/store"
	"github.com/dentalops/clinicgate/pkg/idx"
	"github.com/dentalops/clinicgate/pkg/slogx"
)

func (s *Service) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	return s.Store.Appointments().ListAppointments(ctx)
}

func (s *Service) ListAppointmentsForDentist(ctx context.Context, dentistID string) ([]domain.Appointment, error) {
	return s.Store.Appointments().ListAppointmentsForDentist(ctx, dentistID)
}

func (s *Service) GetAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	return s.Store.Appointments().GetAppointmentByID(ctx, id)
}

// ScheduleAppointment books a slot. The dentist must exist and be active, the
// patient must exist, and the slot must not overlap any scheduled appointment
// for the same dentist. Overlap is checked and the row inserted in one
// transaction so two concurrent bookings cannot both pass the check.
func (s *Service) ScheduleAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	if a.PatientID == "" || a.DentistID == "" || !a.EndsAt.After(a.StartsAt) {
		return domain.Appointment{}, ErrValidation
	}

	if _, err := s.Store.Patients().GetPatientByID(ctx, a.PatientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Appointment{}, ErrUnknownPatient
		}
		return domain.Appointment{}, err
	}
	dentist, err := s.Store.Dentists().GetDentistByID(ctx, a.DentistID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Appointment{}, ErrUnknownDentist
		}
		return domain.Appointment{}, err
	}
	if !dentist.Active {
		return domain.Appointment{}, ErrDentistInactive
	}

	a.ID = idx.New().String()
	a.Status = domain.AppointmentScheduled

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Appointments().CountOverlapping(ctx, a.DentistID, a.StartsAt, a.EndsAt)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDoubleBooked
		}
		return tx.Appointments().CreateAppointment(ctx, a)
	})
	if err != nil {
		if errors.Is(err, ErrDoubleBooked) {
			slogx.FromContext(ctx).Info("appointment rejected, slot taken",
				"dentist_id", a.DentistID, "starts_at", a.StartsAt)
		}
		return domain.Appointment{}, err
	}

	return s.Store.Appointments().GetAppointmentByID(ctx, a.ID)
}

// SetAppointmentStatus moves an appointment to completed or cancelled.
// Scheduled is the only state that can move; the other two are terminal.
func (s *Service) SetAppointmentStatus(ctx context.Context, id, status string) (domain.Appointment, error) {
	if status != domain.AppointmentCompleted && status != domain.AppointmentCancelled {
		return domain.Appointment{}, ErrUnknownStatus
	}
	a, err := s.Store.Appointments().GetAppointmentByID(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if a.Status != domain.AppointmentScheduled {
		return domain.Appointment{}, ErrBadTransition
	}
	if err := s.Store.Appointments().UpdateAppointmentStatus(ctx, id, status); err != nil {
		return domain.Appointment{}, err
	}
	return s.Store.Appointments().GetAppointmentByID(ctx, id)
}

func (s *Service) CancelAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	return s.SetAppointmentStatus(ctx, id, domain.AppointmentCancelled)
}

// DentistDaySchedule returns a dentist's appointments that start on the given
// civil day, UTC.
func (s *Service) DentistDaySchedule(ctx context.Context, dentistID string, day time.Time) ([]domain.Appointment, error) {
	all, err := s.Store.Appointments().ListAppointmentsForDentist(ctx, dentistID)
	if err != nil {
		return nil, err
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var out []domain.Appointment
	for _, a := range all {
		if !a.StartsAt.Before(dayStart) && a.StartsAt.Before(dayEnd) {
			out = append(out, a)
		}
	}
	return out, nil
}
