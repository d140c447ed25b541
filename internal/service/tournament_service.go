package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/store"
	"github.com/jmoiron/sqlx"
)

type TournamentService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore) *TournamentService {
	return &TournamentService{db: db, store: store}
}

type EventData struct {
	Event        *competition.Event        `json:"event"`
	Competitions []competition.Competition `json:"competitions"`
}

func (s *TournamentService) CreateEvent(ctx context.Context, name string, startsOn, endsOn time.Time) (*competition.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", ErrValidationFailed)
	}
	event, err := competition.NewEvent(name, startsOn, endsOn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateEvent(ctx, tx, &event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, tx.Commit()
}

func (s *TournamentService) CreateCompetition(ctx context.Context, eventID, name, kind string, weightLimit float64) (*competition.Competition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: competition name is required", ErrValidationFailed)
	}
	k, err := competition.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	if weightLimit < 0 {
		return nil, fmt.Errorf("%w: weight limit cannot be negative", ErrValidationFailed)
	}

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	c := competition.New(event.ID, name, k, weightLimit)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateCompetition(ctx, tx, &c); err != nil {
		return nil, fmt.Errorf("failed to create competition: %w", err)
	}
	return &c, tx.Commit()
}

func (s *TournamentService) GetEventData(ctx context.Context, id string) (*EventData, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	competitions, err := s.store.GetCompetitions(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Status = competition.StatusFrom(competitions)

	return &EventData{Event: event, Competitions: competitions}, nil
}

func (s *TournamentService) GetCompetition(ctx context.Context, id string) (*competition.Competition, error) {
	return s.store.GetCompetition(ctx, id)
}
