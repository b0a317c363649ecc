// Package domain holds the clinic's core records. Time fields are stored UTC.
package domain

import "time"

type Dentist struct {
	ID        string
	Name      string
	Specialty string
	Email     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	DateOfBirth string // ISO date, no time component
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Appointment statuses.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

type Appointment struct {
	ID        string
	PatientID string
	DentistID string
	StartsAt  time.Time
	EndsAt    time.Time
	Reason    string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WaitlistEntry is a patient waiting for a slot. DentistID may be empty when
// any dentist will do. Lower Priority numbers are served first.
type WaitlistEntry struct {
	ID        string
	PatientID string
	DentistID string
	Reason    string
	Priority  int
	CreatedAt time.Time
}

// Treatment plan statuses and their allowed transitions:
// draft -> active -> completed, and any non-terminal state -> cancelled.
const (
	PlanDraft     = "draft"
	PlanActive    = "active"
	PlanCompleted = "completed"
	PlanCancelled = "cancelled"
)

type TreatmentPlan struct {
	ID          string
	PatientID   string
	DentistID   string
	Title       string
	Description string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanTransition reports whether a plan may move from one status to another.
func CanTransition(from, to string) bool {
	switch from {
	case PlanDraft:
		return to == PlanActive || to == PlanCancelled
	case PlanActive:
		return to == PlanCompleted || to == PlanCancelled
	default:
		return false
	}
}
