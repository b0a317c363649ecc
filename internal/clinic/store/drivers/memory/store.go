// Package memory is an in-process clinic store backed by maps, for tests and
// database-free development runs. Tx uses copy-on-write snapshots under a
// single lock, matching the sqlite driver's atomicity.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dentalops/clinicgate/internal/clinic/domain"
	"github.com/dentalops/clinicgate/internal/clinic/store"
)

type data struct {
	dentists     map[string]domain.Dentist
	patients     map[string]domain.Patient
	appointments map[string]domain.Appointment
	waitlist     map[string]domain.WaitlistEntry
	plans        map[string]domain.TreatmentPlan
}

func newData() *data {
	return &data{
		dentists:     make(map[string]domain.Dentist),
		patients:     make(map[string]domain.Patient),
		appointments: make(map[string]domain.Appointment),
		waitlist:     make(map[string]domain.WaitlistEntry),
		plans:        make(map[string]domain.TreatmentPlan),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.dentists {
		c.dentists[k] = v
	}
	for k, v := range d.patients {
		c.patients[k] = v
	}
	for k, v := range d.appointments {
		c.appointments[k] = v
	}
	for k, v := range d.waitlist {
		c.waitlist[k] = v
	}
	for k, v := range d.plans {
		c.plans[k] = v
	}
	return c
}

type Store struct {
	mu sync.Mutex
	d  *data
}

func NewStore() *Store {
	return &Store{d: newData()}
}

func (s *Store) ApplyMigrations() error         { return nil }
func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	s.mu.Lock()
	return &txStore{s: s, work: s.d.clone()}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) Dentists() store.Dentists {
	return &dentistsRepo{repo: repo{s: s, d: func() *data { return s.d }}}
}

func (s *Store) Patients() store.Patients {
	return &patientsRepo{repo: repo{s: s, d: func() *data { return s.d }}}
}

func (s *Store) Appointments() store.Appointments {
	return &appointmentsRepo{repo: repo{s: s, d: func() *data { return s.d }}}
}

func (s *Store) Waitlist() store.Waitlist {
	return &waitlistRepo{repo: repo{s: s, d: func() *data { return s.d }}}
}

func (s *Store) TreatmentPlans() store.TreatmentPlans {
	return &plansRepo{repo: repo{s: s, d: func() *data { return s.d }}}
}

type txStore struct {
	s    *Store
	work *data
	done bool
}

func (t *txStore) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.d = t.work
	t.s.mu.Unlock()
	return nil
}

func (t *txStore) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.mu.Unlock()
	return nil
}

func (t *txStore) ApplyMigrations() error         { return nil }
func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, store.ErrNotFound // nested tx not supported
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.ErrNotFound // nested tx not supported
}

func (t *txStore) Dentists() store.Dentists {
	return &dentistsRepo{repo: repo{d: func() *data { return t.work }}}
}

func (t *txStore) Patients() store.Patients {
	return &patientsRepo{repo: repo{d: func() *data { return t.work }}}
}

func (t *txStore) Appointments() store.Appointments {
	return &appointmentsRepo{repo: repo{d: func() *data { return t.work }}}
}

func (t *txStore) Waitlist() store.Waitlist {
	return &waitlistRepo{repo: repo{d: func() *data { return t.work }}}
}

func (t *txStore) TreatmentPlans() store.TreatmentPlans {
	return &plansRepo{repo: repo{d: func() *data { return t.work }}}
}

// repo resolves its data through a closure so the same code serves the live
// store (locking per call) and a tx snapshot (lock already held).
type repo struct {
	s *Store // nil inside a tx
	d func() *data
}

func (r *repo) lock() func() {
	if r.s == nil {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

type dentistsRepo struct{ repo }

func (r *dentistsRepo) GetDentistByID(ctx context.Context, id string) (domain.Dentist, error) {
	defer r.lock()()
	d, ok := r.d().dentists[id]
	if !ok {
		return domain.Dentist{}, store.ErrNotFound
	}
	return d, nil
}

func (r *dentistsRepo) ListDentists(ctx context.Context) ([]domain.Dentist, error) {
	defer r.lock()()
	out := make([]domain.Dentist, 0, len(r.d().dentists))
	for _, d := range r.d().dentists {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *dentistsRepo) CreateDentist(ctx context.Context, d domain.Dentist) error {
	defer r.lock()()
	m := r.d().dentists
	if _, ok := m[d.ID]; ok {
		return store.ErrAlreadyExists
	}
	for _, existing := range m {
		if existing.Email == d.Email {
			return store.ErrAlreadyExists
		}
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	m[d.ID] = d
	return nil
}

func (r *dentistsRepo) UpdateDentist(ctx context.Context, d domain.Dentist) error {
	defer r.lock()()
	m := r.d().dentists
	cur, ok := m[d.ID]
	if !ok {
		return store.ErrNotFound
	}
	d.CreatedAt = cur.CreatedAt
	d.UpdatedAt = time.Now().UTC()
	m[d.ID] = d
	return nil
}

func (r *dentistsRepo) DeleteDentist(ctx context.Context, id string) error {
	defer r.lock()()
	m := r.d().dentists
	if _, ok := m[id]; !ok {
		return store.ErrNotFound
	}
	delete(m, id)
	return nil
}

type patientsRepo struct{ repo }

func (r *patientsRepo) GetPatientByID(ctx context.Context, id string) (domain.Patient, error) {
	defer r.lock()()
	p, ok := r.d().patients[id]
	if !ok {
		return domain.Patient{}, store.ErrNotFound
	}
	return p, nil
}

func (r *patientsRepo) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	defer r.lock()()
	out := make([]domain.Patient, 0, len(r.d().patients))
	for _, p := range r.d().patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *patientsRepo) CreatePatient(ctx context.Context, p domain.Patient) error {
	defer r.lock()()
	m := r.d().patients
	if _, ok := m[p.ID]; ok {
		return store.ErrAlreadyExists
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m[p.ID] = p
	return nil
}

func (r *patientsRepo) UpdatePatient(ctx context.Context, p domain.Patient) error {
	defer r.lock()()
	m := r.d().patients
	cur, ok := m[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m[p.ID] = p
	return nil
}

func (r *patientsRepo) DeletePatient(ctx context.Context, id string) error {
	defer r.lock()()
	m := r.d().patients
	if _, ok := m[id]; !ok {
		return store.ErrNotFound
	}
	delete(m, id)
	return nil
}

type appointmentsRepo struct{ repo }

func (r *appointmentsRepo) GetAppointmentByID(ctx context.Context, id string) (domain.Appointment, error) {
	defer r.lock()()
	a, ok := r.d().appointments[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (r *appointmentsRepo) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	defer r.lock()()
	out := make([]domain.Appointment, 0, len(r.d().appointments))
	for _, a := range r.d().appointments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *appointmentsRepo) ListAppointmentsForDentist(ctx context.Context, dentistID string) ([]domain.Appointment, error) {
	defer r.lock()()
	var out []domain.Appointment
	for _, a := range r.d().appointments {
		if a.DentistID == dentistID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *appointmentsRepo) CreateAppointment(ctx context.Context, a domain.Appointment) error {
	defer r.lock()()
	m := r.d().appointments
	if _, ok := m[a.ID]; ok {
		return store.ErrAlreadyExists
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	m[a.ID] = a
	return nil
}

func (r *appointmentsRepo) UpdateAppointmentStatus(ctx context.Context, id, status string) error {
	defer r.lock()()
	m := r.d().appointments
	a, ok := m[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	m[id] = a
	return nil
}

func (r *appointmentsRepo) DeleteAppointment(ctx context.Context, id string) error {
	defer r.lock()()
	m := r.d().appointments
	if _, ok := m[id]; !ok {
		return store.ErrNotFound
	}
	delete(m, id)
	return nil
}

func (r *appointmentsRepo) CountOverlapping(ctx context.Context, dentistID string, startsAt, endsAt time.Time) (int, error) {
	defer r.lock()()
	n := 0
	for _, a := range r.d().appointments {
		if a.DentistID != dentistID || a.Status != domain.AppointmentScheduled {
			continue
		}
		if a.StartsAt.Before(endsAt) && a.EndsAt.After(startsAt) {
			n++
		}
	}
	return n, nil
}

type waitlistRepo struct{ repo }

func (r *waitlistRepo) GetWaitlistEntryByID(ctx context.Context, id string) (domain.WaitlistEntry, error) {
	defer r.lock()()
	e, ok := r.d().waitlist[id]
	if !ok {
		return domain.WaitlistEntry{}, store.ErrNotFound
	}
	return e, nil
}

func (r *waitlistRepo) ListWaitlist(ctx context.Context) ([]domain.WaitlistEntry, error) {
	defer r.lock()()
	out := make([]domain.WaitlistEntry, 0, len(r.d().waitlist))
	for _, e := range r.d().waitlist {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *waitlistRepo) CreateWaitlistEntry(ctx context.Context, e domain.WaitlistEntry) error {
	defer r.lock()()
	m := r.d().waitlist
	if _, ok := m[e.ID]; ok {
		return store.ErrAlreadyExists
	}
	e.CreatedAt = time.Now().UTC()
	m[e.ID] = e
	return nil
}

func (r *waitlistRepo) DeleteWaitlistEntry(ctx context.Context, id string) error {
	defer r.lock()()
	m := r.d().waitlist
	if _, ok := m[id]; !ok {
		return store.ErrNotFound
	}
	delete(m, id)
	return nil
}

type plansRepo struct{ repo }

func (r *plansRepo) GetTreatmentPlanByID(ctx context.Context, id string) (domain.TreatmentPlan, error) {
	defer r.lock()()
	p, ok := r.d().plans[id]
	if !ok {
		return domain.TreatmentPlan{}, store.ErrNotFound
	}
	return p, nil
}

func (r *plansRepo) ListTreatmentPlansForPatient(ctx context.Context, patientID string) ([]domain.TreatmentPlan, error) {
	defer r.lock()()
	var out []domain.TreatmentPlan
	for _, p := range r.d().plans {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *plansRepo) CreateTreatmentPlan(ctx context.Context, p domain.TreatmentPlan) error {
	defer r.lock()()
	m := r.d().plans
	if _, ok := m[p.ID]; ok {
		return store.ErrAlreadyExists
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m[p.ID] = p
	return nil
}

func (r *plansRepo) UpdateTreatmentPlan(ctx context.Context, p domain.TreatmentPlan) error {
	defer r.lock()()
	m := r.d().plans
	cur, ok := m[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	cur.Title = p.Title
	cur.Description = p.Description
	cur.UpdatedAt = time.Now().UTC()
	m[p.ID] = cur
	return nil
}

func (r *plansRepo) UpdateTreatmentPlanStatus(ctx context.Context, id, status string) error {
	defer r.lock()()
	m := r.d().plans
	p, ok := m[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	m[id] = p
	return nil
}
