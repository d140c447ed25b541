package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/AdamBeresnev/robo-arena/internal/store"
	"github.com/AdamBeresnev/robo-arena/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RegistrationService struct {
	db            *sqlx.DB
	tournaments   *store.TournamentStore
	registrations *store.RegistrationStore
}

func NewRegistrationService(db *sqlx.DB, tournaments *store.TournamentStore, registrations *store.RegistrationStore) *RegistrationService {
	return &RegistrationService{db: db, tournaments: tournaments, registrations: registrations}
}

type EntrantInput struct {
	Name        string
	Team        string
	WeightClass float64
}

// Register enters a new robot into a competition. The registration starts
// pending until an organizer decides on it.
func (s *RegistrationService) Register(ctx context.Context, competitionID string, input EntrantInput) (*entrant.Registration, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: robot name is required", ErrValidationFailed)
	}
	if len(name) > 50 {
		return nil, fmt.Errorf("%w: robot name '%s' exceeds 50 characters", ErrValidationFailed, name)
	}
	if input.WeightClass <= 0 {
		return nil, fmt.Errorf("%w: weight must be positive", ErrValidationFailed)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c, err := s.tournaments.GetCompetitionTx(ctx, tx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	variant, err := competition.Open(*c)
	if err != nil {
		return nil, err
	}

	e := entrant.NewEntrant(name, utils.StringOrNil(input.Team), input.WeightClass)
	if err := variant.Accept(e); err != nil {
		return nil, err
	}

	if err := s.registrations.CreateEntrant(ctx, tx, &e); err != nil {
		return nil, fmt.Errorf("failed to create entrant: %w", err)
	}

	reg := entrant.Registration{
		ID:            uuid.New(),
		CompetitionID: c.ID,
		EntrantID:     e.ID,
		Status:        entrant.StatusPending,
		CreatedAt:     time.Now().UTC(),
		EntrantName:   e.Name,
		WeightClass:   e.WeightClass,
	}
	if err := s.registrations.CreateRegistration(ctx, tx, &reg); err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	return &reg, tx.Commit()
}

// Decide applies an organizer's approval or rejection.
func (s *RegistrationService) Decide(ctx context.Context, registrationID string, status entrant.Status) (*entrant.Registration, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	reg, err := s.registrations.GetRegistrationTx(ctx, tx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	if err := reg.Transition(status); err != nil {
		return nil, err
	}

	c, err := s.tournaments.GetCompetitionTx(ctx, tx, reg.CompetitionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	if c.Status != competition.StatusRegistrationOpen && reg.Status != status {
		return nil, fmt.Errorf("%w: %s is %s", competition.ErrRegistrationClosed, c.Name, c.Status)
	}

	if err := s.registrations.UpdateStatusTx(ctx, tx, registrationID, status); err != nil {
		return nil, fmt.Errorf("failed to update registration: %w", err)
	}
	reg.Status = status

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	slog.Info("registration decided", "registration", reg.ID, "status", status)
	return reg, nil
}

func (s *RegistrationService) Registrations(ctx context.Context, competitionID string) ([]entrant.Registration, error) {
	return s.registrations.GetRegistrations(ctx, competitionID)
}
