package sqlite

import (
	"context"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
)

type plansRepo struct {
	db dbtx
}

const planColumns = `id, patient_id, dentist_id, title, description, status, created_at, updated_at`

func scanPlan(row interface{ Scan(dest ...any) error }) (domain.TreatmentPlan, error) {
	var p domain.TreatmentPlan
	err := row.Scan(&p.ID, &p.PatientID, &p.DentistID, &p.Title, &p.Description,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.TreatmentPlan{}, mapNotFound(err)
	}
	return p, nil
}

func (r *plansRepo) GetTreatmentPlanByID(ctx context.Context, id string) (domain.TreatmentPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM treatment_plans WHERE id = ?`, id)
	return scanPlan(row)
}

func (r *plansRepo) ListTreatmentPlansForPatient(ctx context.Context, patientID string) ([]domain.TreatmentPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM treatment_plans WHERE patient_id = ? ORDER BY created_at DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TreatmentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *plansRepo) CreateTreatmentPlan(ctx context.Context, p domain.TreatmentPlan) error {
	now := nowUTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO treatment_plans (id, patient_id, dentist_id, title, description, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.PatientID, p.DentistID, p.Title, p.Description, p.Status, now, now)
	return mapConstraint(err)
}

func (r *plansRepo) UpdateTreatmentPlan(ctx context.Context, p domain.TreatmentPlan) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE treatment_plans SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Description, nowUTC(), p.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *plansRepo) UpdateTreatmentPlanStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE treatment_plans SET status = ?, updated_at = ? WHERE id = ?`,
		status, nowUTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
