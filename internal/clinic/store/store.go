package store

import (
	"context"
	"errors"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for clinic records. Concrete
// drivers (sqlite, memory) implement it.
type Store interface {
	Dentists() Dentists
	Patients() Patients
	Appointments() Appointments
	Waitlist() Waitlist
	TreatmentPlans() TreatmentPlans

	ApplyMigrations() error

	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction; waitlist promotion uses it so
	// the appointment and the waitlist removal happen atomically.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Dentists interface {
	GetDentistByID(ctx context.Context, id string) (domain.Dentist, error)
	ListDentists(ctx context.Context) ([]domain.Dentist, error)
	CreateDentist(ctx context.Context, d domain.Dentist) error
	UpdateDentist(ctx context.Context, d domain.Dentist) error
	DeleteDentist(ctx context.Context, id string) error
}

type Patients interface {
	GetPatientByID(ctx context.Context, id string) (domain.Patient, error)
	ListPatients(ctx context.Context) ([]domain.Patient, error)
	CreatePatient(ctx context.Context, p domain.Patient) error
	UpdatePatient(ctx context.Context, p domain.Patient) error
	DeletePatient(ctx context.Context, id string) error
}

type Appointments interface {
	GetAppointmentByID(ctx context.Context, id string) (domain.Appointment, error)
	ListAppointments(ctx context.Context) ([]domain.Appointment, error)
	ListAppointmentsForDentist(ctx context.Context, dentistID string) ([]domain.Appointment, error)
	CreateAppointment(ctx context.Context, a domain.Appointment) error
	UpdateAppointmentStatus(ctx context.Context, id, status string) error
	DeleteAppointment(ctx context.Context, id string) error

	// CountOverlapping counts scheduled appointments for a dentist that
	// overlap [startsAt, endsAt). Double-booking rejection is built on this.
	CountOverlapping(ctx context.Context, dentistID string, startsAt, endsAt time.Time) (int, error)
}

type Waitlist interface {
	GetWaitlistEntryByID(ctx context.Context, id string) (domain.WaitlistEntry, error)

	// ListWaitlist returns entries ordered by priority, then age.
	ListWaitlist(ctx context.Context) ([]domain.WaitlistEntry, error)
	CreateWaitlistEntry(ctx context.Context, e domain.WaitlistEntry) error
	DeleteWaitlistEntry(ctx context.Context, id string) error
}

type TreatmentPlans interface {
	GetTreatmentPlanByID(ctx context.Context, id string) (domain.TreatmentPlan, error)
	ListTreatmentPlansForPatient(ctx context.Context, patientID string) ([]domain.TreatmentPlan, error)
	CreateTreatmentPlan(ctx context.Context, p domain.TreatmentPlan) error
	UpdateTreatmentPlan(ctx context.Context, p domain.TreatmentPlan) error
	UpdateTreatmentPlanStatus(ctx context.Context, id, status string) error
}
