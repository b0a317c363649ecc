package sqlite

import (
	"context"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
)

type appointmentsRepo struct {
	db dbtx
}

const appointmentColumns = `id, patient_id, dentist_id, starts_at, ends_at, reason, status, created_at, updated_at`

func scanAppointment(row interface{ Scan(dest ...any) error }) (domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DentistID, &a.StartsAt, &a.EndsAt,
		&a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Appointment{}, mapNotFound(err)
	}
	return a, nil
}

func (r *appointmentsRepo) GetAppointmentByID(ctx context.Context, id string) (domain.Appointment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	return scanAppointment(row)
}

func (r *appointmentsRepo) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *appointmentsRepo) ListAppointmentsForDentist(ctx context.Context, dentistID string) ([]domain.Appointment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE dentist_id = ? ORDER BY starts_at`,
		dentistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *appointmentsRepo) CreateAppointment(ctx context.Context, a domain.Appointment) error {
	now := nowUTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO appointments (id, patient_id, dentist_id, starts_at, ends_at, reason, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PatientID, a.DentistID, a.StartsAt.UTC(), a.EndsAt.UTC(),
		a.Reason, a.Status, now, now)
	return mapConstraint(err)
}

func (r *appointmentsRepo) UpdateAppointmentStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?`,
		status, nowUTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *appointmentsRepo) DeleteAppointment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *appointmentsRepo) CountOverlapping(ctx context.Context, dentistID string, startsAt, endsAt time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments
		 WHERE dentist_id = ? AND status = ? AND starts_at < ? AND ends_at > ?`,
		dentistID, domain.AppointmentScheduled, endsAt.UTC(), startsAt.UTC()).Scan(&n)
	return n, err
}
