package store

import (
	"context"

	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/jmoiron/sqlx"
)

// TournamentStore keeps events and their competitions.
type TournamentStore struct {
	db *sqlx.DB
}

const (
	createEventQuery = `INSERT INTO events (id, name, starts_on, ends_on, status, created_at)
		VALUES (:id, :name, :starts_on, :ends_on, :status, :created_at)`
	createCompetitionQuery = `INSERT INTO competitions (id, event_id, name, kind, status, weight_limit, created_at)
		VALUES (:id, :event_id, :name, :kind, :status, :weight_limit, :created_at)`
	getEventQuery            = "SELECT * FROM events WHERE id = ?"
	getCompetitionQuery      = "SELECT * FROM competitions WHERE id = ?"
	getEventCompetitionQuery = "SELECT * FROM competitions WHERE event_id = ? ORDER BY created_at ASC, id ASC"
	updateCompetitionStatus  = "UPDATE competitions SET status = ? WHERE id = ?"
)

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateEvent(ctx context.Context, tx *sqlx.Tx, event *competition.Event) error {
	_, err := tx.NamedExecContext(ctx, createEventQuery, event)
	return err
}

func (s *TournamentStore) CreateCompetition(ctx context.Context, tx *sqlx.Tx, c *competition.Competition) error {
	_, err := tx.NamedExecContext(ctx, createCompetitionQuery, c)
	return err
}

func (s *TournamentStore) GetEvent(ctx context.Context, id string) (*competition.Event, error) {
	var event competition.Event
	err := s.db.GetContext(ctx, &event, s.db.Rebind(getEventQuery), id)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *TournamentStore) GetCompetition(ctx context.Context, id string) (*competition.Competition, error) {
	return s.getCompetition(ctx, s.db, id)
}

func (s *TournamentStore) GetCompetitionTx(ctx context.Context, tx *sqlx.Tx, id string) (*competition.Competition, error) {
	return s.getCompetition(ctx, tx, id)
}

func (s *TournamentStore) getCompetition(ctx context.Context, q sqlx.QueryerContext, id string) (*competition.Competition, error) {
	var c competition.Competition
	err := sqlx.GetContext(ctx, q, &c, s.db.Rebind(getCompetitionQuery), id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *TournamentStore) GetCompetitions(ctx context.Context, eventID string) ([]competition.Competition, error) {
	var competitions []competition.Competition
	err := s.db.SelectContext(ctx, &competitions, s.db.Rebind(getEventCompetitionQuery), eventID)
	return competitions, err
}

func (s *TournamentStore) UpdateCompetitionStatusTx(ctx context.Context, tx *sqlx.Tx, id string, status competition.Status) error {
	_, err := tx.ExecContext(ctx, s.db.Rebind(updateCompetitionStatus), status, id)
	return err
}
