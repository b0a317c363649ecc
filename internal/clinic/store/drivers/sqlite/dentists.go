package sqlite

import (
	"context"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
)

type dentistsRepo struct {
	db dbtx
}

const dentistColumns = `id, name, specialty, email, active, created_at, updated_at`

func scanDentist(row interface{ Scan(dest ...any) error }) (domain.Dentist, error) {
	var d domain.Dentist
	err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.Email, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.Dentist{}, mapNotFound(err)
	}
	return d, nil
}

func (r *dentistsRepo) GetDentistByID(ctx context.Context, id string) (domain.Dentist, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+dentistColumns+` FROM dentists WHERE id = ?`, id)
	return scanDentist(row)
}

func (r *dentistsRepo) ListDentists(ctx context.Context) ([]domain.Dentist, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+dentistColumns+` FROM dentists ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Dentist
	for rows.Next() {
		d, err := scanDentist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *dentistsRepo) CreateDentist(ctx context.Context, d domain.Dentist) error {
	now := nowUTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dentists (id, name, specialty, email, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Specialty, d.Email, d.Active, now, now)
	return mapConstraint(err)
}

func (r *dentistsRepo) UpdateDentist(ctx context.Context, d domain.Dentist) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE dentists SET name = ?, specialty = ?, email = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		d.Name, d.Specialty, d.Email, d.Active, nowUTC(), d.ID)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *dentistsRepo) DeleteDentist(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dentists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
