package sqlite

import (
	"context"
	"database/sql"

	"github.com/dentalops/clinicgate/internal/clinic/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Dentists() store.Dentists             { return &dentistsRepo{db: t.tx} }
func (t *txStore) Patients() store.Patients             { return &patientsRepo{db: t.tx} }
func (t *txStore) Appointments() store.Appointments     { return &appointmentsRepo{db: t.tx} }
func (t *txStore) Waitlist() store.Waitlist             { return &waitlistRepo{db: t.tx} }
func (t *txStore) TreatmentPlans() store.TreatmentPlans { return &plansRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil }
