package sqlite

import (
	"context"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
)

type waitlistRepo struct {
	db dbtx
}

const waitlistColumns = `id, patient_id, dentist_id, reason, priority, created_at`

func scanWaitlistEntry(row interface{ Scan(dest ...any) error }) (domain.WaitlistEntry, error) {
	var e domain.WaitlistEntry
	err := row.Scan(&e.ID, &e.PatientID, &e.DentistID, &e.Reason, &e.Priority, &e.CreatedAt)
	if err != nil {
		return domain.WaitlistEntry{}, mapNotFound(err)
	}
	return e, nil
}

func (r *waitlistRepo) GetWaitlistEntryByID(ctx context.Context, id string) (domain.WaitlistEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+waitlistColumns+` FROM waitlist WHERE id = ?`, id)
	return scanWaitlistEntry(row)
}

func (r *waitlistRepo) ListWaitlist(ctx context.Context) ([]domain.WaitlistEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+waitlistColumns+` FROM waitlist ORDER BY priority, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WaitlistEntry
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *waitlistRepo) CreateWaitlistEntry(ctx context.Context, e domain.WaitlistEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO waitlist (id, patient_id, dentist_id, reason, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.PatientID, e.DentistID, e.Reason, e.Priority, nowUTC())
	return mapConstraint(err)
}

func (r *waitlistRepo) DeleteWaitlistEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM waitlist WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
