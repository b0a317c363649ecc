package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/service"
	"github.com/stretchr/testify/require"
)

func TestAddToWaitlist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("defaults priority", func(t *testing.T) {
		f := newClinicFixture(t)

		entry, err := f.svc.AddToWaitlist(ctx, domain.WaitlistEntry{
			PatientID: f.patient.ID,
			Reason:    "crown fitting",
		})
		require.NoError(t, err)
		require.Equal(t, 100, entry.Priority)
	})

	t.Run("unknown patient", func(t *testing.T) {
		f := newClinicFixture(t)

		_, err := f.svc.AddToWaitlist(ctx, domain.WaitlistEntry{PatientID: "nope"})
		require.ErrorIs(t, err, service.ErrUnknownPatient)
	})

	t.Run("ordered by priority then age", func(t *testing.T) {
		f := newClinicFixture(t)

		first, err := f.svc.AddToWaitlist(ctx, domain.WaitlistEntry{PatientID: f.patient.ID, Priority: 50})
		require.NoError(t, err)
		_, err = f.svc.AddToWaitlist(ctx, domain.WaitlistEntry{PatientID: f.patient.ID, Priority: 100})
		require.NoError(t, err)
		urgent, err := f.svc.AddToWaitlist(ctx, domain.WaitlistEntry{PatientID: f.patient.ID, Priority: 10})
		require.NoError(t, err)

		list, err := f.svc.ListWaitlist(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		require.Equal(t, urgent.ID, list[0].ID)
		require.Equal(t, first.ID, list[1].ID)
	})
}

func TestPromoteWaitlistEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("promotion books and removes the entry", func(t *testing.T) {
		f := newClinicFixture(t)

		entry, err := f.svc.AddToWaitlist(ctx, domain.WaitlistEntry{
			PatientID: f.patient.ID,
			Reason:    "crown fitting",
		})
		require.NoError(t, err)

		appt, err := f.svc.PromoteWaitlistEntry(ctx, entry.ID, f.dentist.ID, at(9), at(10))
		require.NoError(t, err)
		require.Equal(t, f.patient.ID, appt.PatientID)
		require.Equal(t, "crown fitting", appt.Reason)
		require.Equal(t, domain.AppointmentScheduled, appt.Status)

		list, err := f.svc.ListWaitlist(ctx)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("taken slot leaves the entry on the list", func(t *testing.T) {
		f := newClinicFixture(t)

		_, err := f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: f.dentist.ID,
			StartsAt: at(9), EndsAt: at(10),
		})
		require.NoError(t, err)

		entry, err := f.svc.AddToWaitlist(ctx, domain.WaitlistEntry{PatientID: f.patient.ID})
		require.NoError(t, err)

		_, err = f.svc.PromoteWaitlistEntry(ctx, entry.ID, f.dentist.ID, at(9).Add(30*time.Minute), at(10).Add(30*time.Minute))
		require.ErrorIs(t, err, service.ErrDoubleBooked)

		list, err := f.svc.ListWaitlist(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("pinned entry defaults to its dentist", func(t *testing.T) {
		f := newClinicFixture(t)

		entry, err := f.svc.AddToWaitlist(ctx, domain.WaitlistEntry{
			PatientID: f.patient.ID,
			DentistID: f.dentist.ID,
		})
		require.NoError(t, err)

		appt, err := f.svc.PromoteWaitlistEntry(ctx, entry.ID, "", at(9), at(10))
		require.NoError(t, err)
		require.Equal(t, f.dentist.ID, appt.DentistID)
	})

	t.Run("pinned entry refuses another dentist", func(t *testing.T) {
		f := newClinicFixture(t)
		other, err := f.svc.CreateDentist(ctx, domain.Dentist{Name: "Dr. Lee", Email: "lee@clinic.local"})
		require.NoError(t, err)

		entry, err := f.svc.AddToWaitlist(ctx, domain.WaitlistEntry{
			PatientID: f.patient.ID,
			DentistID: f.dentist.ID,
		})
		require.NoError(t, err)

		_, err = f.svc.PromoteWaitlistEntry(ctx, entry.ID, other.ID, at(9), at(10))
		require.ErrorIs(t, err, service.ErrValidation)
	})
}
