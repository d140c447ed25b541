package store

import (
	"context"

	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/jmoiron/sqlx"
)

// RegistrationStore is the entrant registry and the timing log.
type RegistrationStore struct {
	db *sqlx.DB
}

const (
	createEntrantQuery = `INSERT INTO entrants (id, name, team, weight_class, created_at)
		VALUES (:id, :name, :team, :weight_class, :created_at)`
	createRegistrationQuery = `INSERT INTO registrations (id, seq, competition_id, entrant_id, status, created_at)
		VALUES (:id, :seq, :competition_id, :entrant_id, :status, :created_at)`
	createAttemptQuery = `INSERT INTO attempts (id, registration_id, duration_ns, recorded_at)
		VALUES (:id, :registration_id, :duration_ns, :recorded_at)`
	nextSeqQuery             = "SELECT COALESCE(MAX(seq), 0) + 1 FROM registrations WHERE competition_id = ?"
	getEntrantQuery          = "SELECT * FROM entrants WHERE id = ?"
	updateRegistrationStatus = "UPDATE registrations SET status = ? WHERE id = ?"

	selectRegistrations = `SELECT r.id, r.seq, r.competition_id, r.entrant_id, r.status, r.created_at,
		e.name AS entrant_name, e.weight_class
		FROM registrations r
		JOIN entrants e ON e.id = r.entrant_id`
	getRegistrationQuery      = selectRegistrations + " WHERE r.id = ?"
	getRegistrationsQuery     = selectRegistrations + " WHERE r.competition_id = ? ORDER BY r.seq ASC"
	getApprovedQuery          = selectRegistrations + " WHERE r.competition_id = ? AND r.status = 'approved' ORDER BY r.seq ASC"
	getAttemptsQuery          = "SELECT * FROM attempts WHERE registration_id = ? ORDER BY recorded_at ASC, id ASC"
	getCompetitionAttemptsSQL = `SELECT a.* FROM attempts a
		JOIN registrations r ON r.id = a.registration_id
		WHERE r.competition_id = ?
		ORDER BY a.recorded_at ASC, a.id ASC`
)

func NewRegistrationStore(db *sqlx.DB) *RegistrationStore {
	return &RegistrationStore{db: db}
}

func (s *RegistrationStore) CreateEntrant(ctx context.Context, tx *sqlx.Tx, e *entrant.Entrant) error {
	_, err := tx.NamedExecContext(ctx, createEntrantQuery, e)
	return err
}

func (s *RegistrationStore) GetEntrant(ctx context.Context, id string) (*entrant.Entrant, error) {
	var e entrant.Entrant
	if err := s.db.GetContext(ctx, &e, s.db.Rebind(getEntrantQuery), id); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateRegistration assigns the next sequence number of the competition
// before inserting, so it must run inside the caller's transaction.
func (s *RegistrationStore) CreateRegistration(ctx context.Context, tx *sqlx.Tx, r *entrant.Registration) error {
	if err := tx.GetContext(ctx, &r.Seq, s.db.Rebind(nextSeqQuery), r.CompetitionID); err != nil {
		return err
	}
	_, err := tx.NamedExecContext(ctx, createRegistrationQuery, r)
	return err
}

func (s *RegistrationStore) GetRegistration(ctx context.Context, id string) (*entrant.Registration, error) {
	return s.getRegistration(ctx, s.db, id)
}

func (s *RegistrationStore) GetRegistrationTx(ctx context.Context, tx *sqlx.Tx, id string) (*entrant.Registration, error) {
	return s.getRegistration(ctx, tx, id)
}

func (s *RegistrationStore) getRegistration(ctx context.Context, q sqlx.QueryerContext, id string) (*entrant.Registration, error) {
	var r entrant.Registration
	if err := sqlx.GetContext(ctx, q, &r, s.db.Rebind(getRegistrationQuery), id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RegistrationStore) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id string, status entrant.Status) error {
	_, err := tx.ExecContext(ctx, s.db.Rebind(updateRegistrationStatus), status, id)
	return err
}

func (s *RegistrationStore) GetRegistrations(ctx context.Context, competitionID string) ([]entrant.Registration, error) {
	var regs []entrant.Registration
	err := s.db.SelectContext(ctx, &regs, s.db.Rebind(getRegistrationsQuery), competitionID)
	return regs, err
}

// ApprovedRegistrationsTx lists approved registrations in registration order.
func (s *RegistrationStore) ApprovedRegistrationsTx(ctx context.Context, tx *sqlx.Tx, competitionID string) ([]entrant.Registration, error) {
	var regs []entrant.Registration
	err := tx.SelectContext(ctx, &regs, s.db.Rebind(getApprovedQuery), competitionID)
	return regs, err
}

func (s *RegistrationStore) CreateAttempt(ctx context.Context, tx *sqlx.Tx, a *entrant.Attempt) error {
	_, err := tx.NamedExecContext(ctx, createAttemptQuery, a)
	return err
}

func (s *RegistrationStore) GetAttempts(ctx context.Context, registrationID string) ([]entrant.Attempt, error) {
	var attempts []entrant.Attempt
	err := s.db.SelectContext(ctx, &attempts, s.db.Rebind(getAttemptsQuery), registrationID)
	return attempts, err
}

// RegistrationsWithAttemptsTx loads every registration of a competition with
// its attempts attached. Run it in a read transaction to get a consistent
// snapshot against concurrent appends.
func (s *RegistrationStore) RegistrationsWithAttemptsTx(ctx context.Context, tx *sqlx.Tx, competitionID string) ([]entrant.Registration, error) {
	var regs []entrant.Registration
	if err := tx.SelectContext(ctx, &regs, s.db.Rebind(getRegistrationsQuery), competitionID); err != nil {
		return nil, err
	}

	var attempts []entrant.Attempt
	if err := tx.SelectContext(ctx, &attempts, s.db.Rebind(getCompetitionAttemptsSQL), competitionID); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(regs))
	for i, r := range regs {
		index[r.ID.String()] = i
	}
	for _, a := range attempts {
		if i, ok := index[a.RegistrationID.String()]; ok {
			regs[i].Attempts = append(regs[i].Attempts, a)
		}
	}
	return regs, nil
}
