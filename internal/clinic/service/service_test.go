package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/service"
	"github.com/dentalops/clinicgate/internal/clinic/store"
	"github.com/dentalops/clinicgate/internal/clinic/store/drivers/memory"
	"github.com/stretchr/testify/require"
)

type clinicFixture struct {
	svc     *service.Service
	dentist domain.Dentist
	patient domain.Patient
}

func newClinicFixture(t *testing.T) *clinicFixture {
	t.Helper()
	ctx := context.Background()

	st := memory.NewStore()
	t.Cleanup(func() { _ = st.Close() })
	svc := &service.Service{Store: st}

	dentist, err := svc.CreateDentist(ctx, domain.Dentist{
		Name:      "Dr. Priya Shah",
		Specialty: "orthodontics",
		Email:     "priya@clinic.local",
	})
	require.NoError(t, err)

	patient, err := svc.CreatePatient(ctx, domain.Patient{
		Name:        "Sam Carter",
		Email:       "sam@example.com",
		DateOfBirth: "1990-04-12",
	})
	require.NoError(t, err)

	return &clinicFixture{svc: svc, dentist: dentist, patient: patient}
}

func at(hour int) time.Time {
	return time.Date(2026, 9, 14, hour, 0, 0, 0, time.UTC)
}

func TestCreateDentistValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newClinicFixture(t)

	_, err := f.svc.CreateDentist(ctx, domain.Dentist{Name: "  ", Email: "x@y.z"})
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = f.svc.CreateDentist(ctx, domain.Dentist{Name: "Dr. No Email"})
	require.ErrorIs(t, err, service.ErrValidation)

	require.True(t, f.dentist.Active, "new dentists start active")
}

func TestScheduleAppointment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("books a free slot", func(t *testing.T) {
		f := newClinicFixture(t)

		appt, err := f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID,
			DentistID: f.dentist.ID,
			StartsAt:  at(9),
			EndsAt:    at(10),
			Reason:    "checkup",
		})
		require.NoError(t, err)
		require.Equal(t, domain.AppointmentScheduled, appt.Status)
		require.NotEmpty(t, appt.ID)
	})

	t.Run("rejects overlap with same dentist", func(t *testing.T) {
		f := newClinicFixture(t)

		_, err := f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: f.dentist.ID,
			StartsAt: at(9), EndsAt: at(10),
		})
		require.NoError(t, err)

		_, err = f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: f.dentist.ID,
			StartsAt: at(9).Add(30 * time.Minute), EndsAt: at(10).Add(30 * time.Minute),
		})
		require.ErrorIs(t, err, service.ErrDoubleBooked)
	})

	t.Run("back to back is not an overlap", func(t *testing.T) {
		f := newClinicFixture(t)

		_, err := f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: f.dentist.ID,
			StartsAt: at(9), EndsAt: at(10),
		})
		require.NoError(t, err)

		_, err = f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: f.dentist.ID,
			StartsAt: at(10), EndsAt: at(11),
		})
		require.NoError(t, err)
	})

	t.Run("cancelled slot frees the time", func(t *testing.T) {
		f := newClinicFixture(t)

		appt, err := f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: f.dentist.ID,
			StartsAt: at(9), EndsAt: at(10),
		})
		require.NoError(t, err)
		_, err = f.svc.CancelAppointment(ctx, appt.ID)
		require.NoError(t, err)

		_, err = f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: f.dentist.ID,
			StartsAt: at(9), EndsAt: at(10),
		})
		require.NoError(t, err)
	})

	t.Run("another dentist can take the same slot", func(t *testing.T) {
		f := newClinicFixture(t)
		other, err := f.svc.CreateDentist(ctx, domain.Dentist{Name: "Dr. Lee", Email: "lee@clinic.local"})
		require.NoError(t, err)

		_, err = f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: f.dentist.ID,
			StartsAt: at(9), EndsAt: at(10),
		})
		require.NoError(t, err)

		_, err = f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: other.ID,
			StartsAt: at(9), EndsAt: at(10),
		})
		require.NoError(t, err)
	})

	t.Run("unknown references", func(t *testing.T) {
		f := newClinicFixture(t)

		_, err := f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: "nope", DentistID: f.dentist.ID,
			StartsAt: at(9), EndsAt: at(10),
		})
		require.ErrorIs(t, err, service.ErrUnknownPatient)

		_, err = f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: "nope",
			StartsAt: at(9), EndsAt: at(10),
		})
		require.ErrorIs(t, err, service.ErrUnknownDentist)
	})

	t.Run("inactive dentist cannot be booked", func(t *testing.T) {
		f := newClinicFixture(t)
		f.dentist.Active = false
		_, err := f.svc.UpdateDentist(ctx, f.dentist)
		require.NoError(t, err)

		_, err = f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: f.dentist.ID,
			StartsAt: at(9), EndsAt: at(10),
		})
		require.ErrorIs(t, err, service.ErrDentistInactive)
	})

	t.Run("end before start", func(t *testing.T) {
		f := newClinicFixture(t)

		_, err := f.svc.ScheduleAppointment(ctx, domain.Appointment{
			PatientID: f.patient.ID, DentistID: f.dentist.ID,
			StartsAt: at(10), EndsAt: at(9),
		})
		require.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestSetAppointmentStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newClinicFixture(t)

	appt, err := f.svc.ScheduleAppointment(ctx, domain.Appointment{
		PatientID: f.patient.ID, DentistID: f.dentist.ID,
		StartsAt: at(9), EndsAt: at(10),
	})
	require.NoError(t, err)

	t.Run("unknown status", func(t *testing.T) {
		_, err := f.svc.SetAppointmentStatus(ctx, appt.ID, "rescheduled")
		require.ErrorIs(t, err, service.ErrUnknownStatus)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		done, err := f.svc.SetAppointmentStatus(ctx, appt.ID, domain.AppointmentCompleted)
		require.NoError(t, err)
		require.Equal(t, domain.AppointmentCompleted, done.Status)

		_, err = f.svc.SetAppointmentStatus(ctx, appt.ID, domain.AppointmentCancelled)
		require.ErrorIs(t, err, service.ErrBadTransition)
	})

	t.Run("missing appointment", func(t *testing.T) {
		_, err := f.svc.SetAppointmentStatus(ctx, "nope", domain.AppointmentCompleted)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDentistDaySchedule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newClinicFixture(t)

	_, err := f.svc.ScheduleAppointment(ctx, domain.Appointment{
		PatientID: f.patient.ID, DentistID: f.dentist.ID,
		StartsAt: at(9), EndsAt: at(10),
	})
	require.NoError(t, err)
	_, err = f.svc.ScheduleAppointment(ctx, domain.Appointment{
		PatientID: f.patient.ID, DentistID: f.dentist.ID,
		StartsAt: at(9).Add(24 * time.Hour), EndsAt: at(10).Add(24 * time.Hour),
	})
	require.NoError(t, err)

	day, err := f.svc.DentistDaySchedule(ctx, f.dentist.ID, at(0))
	require.NoError(t, err)
	require.Len(t, day, 1)
	require.Equal(t, at(9), day[0].StartsAt)
}
