package sqlite

import (
	"context"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
)

type patientsRepo struct {
	db dbtx
}

const patientColumns = `id, name, email, phone, date_of_birth, notes, created_at, updated_at`

func scanPatient(row interface{ Scan(dest ...any) error }) (domain.Patient, error) {
	var p domain.Patient
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.DateOfBirth, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Patient{}, mapNotFound(err)
	}
	return p, nil
}

func (r *patientsRepo) GetPatientByID(ctx context.Context, id string) (domain.Patient, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)
	return scanPatient(row)
}

func (r *patientsRepo) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+patientColumns+` FROM patients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *patientsRepo) CreatePatient(ctx context.Context, p domain.Patient) error {
	now := nowUTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO patients (id, name, email, phone, date_of_birth, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Email, p.Phone, p.DateOfBirth, p.Notes, now, now)
	return mapConstraint(err)
}

func (r *patientsRepo) UpdatePatient(ctx context.Context, p domain.Patient) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE patients SET name = ?, email = ?, phone = ?, date_of_birth = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Email, p.Phone, p.DateOfBirth, p.Notes, nowUTC(), p.ID)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *patientsRepo) DeletePatient(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
