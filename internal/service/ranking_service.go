package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/AdamBeresnev/robo-arena/internal/ranking"
	"github.com/AdamBeresnev/robo-arena/internal/report"
	"github.com/AdamBeresnev/robo-arena/internal/store"
	"github.com/jmoiron/sqlx"
)

// TimingLog supplies every registration of a competition with its attempts.
type TimingLog interface {
	RegistrationsWithAttemptsTx(ctx context.Context, tx *sqlx.Tx, competitionID string) ([]entrant.Registration, error)
}

type RankingService struct {
	db            *sqlx.DB
	tournaments   *store.TournamentStore
	registrations *store.RegistrationStore
	timing        TimingLog
	publisher     report.Publisher
}

func NewRankingService(db *sqlx.DB, tournaments *store.TournamentStore, registrations *store.RegistrationStore, timing TimingLog, publisher report.Publisher) *RankingService {
	if publisher == nil {
		publisher = report.Discard{}
	}
	return &RankingService{db: db, tournaments: tournaments, registrations: registrations, timing: timing, publisher: publisher}
}

// RecordAttempt appends a judged run. The first attempt closes registration.
func (s *RankingService) RecordAttempt(ctx context.Context, registrationID string, d time.Duration, at time.Time) (*entrant.Attempt, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	reg, err := s.registrations.GetRegistrationTx(ctx, tx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	c, err := s.tournaments.GetCompetitionTx(ctx, tx, reg.CompetitionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	if _, err := competition.AsTimedTrial(*c); err != nil {
		return nil, err
	}
	if c.Status == competition.StatusFinished {
		return nil, fmt.Errorf("%w: %s", ErrCompetitionFinished, c.Name)
	}
	if !reg.Approved() {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotApproved, reg.ID, reg.Status)
	}

	attempt, err := entrant.NewAttempt(reg.ID, d, at)
	if err != nil {
		return nil, err
	}
	if err := s.registrations.CreateAttempt(ctx, tx, &attempt); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	if c.Status == competition.StatusRegistrationOpen {
		if err := s.tournaments.UpdateCompetitionStatusTx(ctx, tx, c.ID.String(), competition.StatusInProgress); err != nil {
			return nil, fmt.Errorf("failed to update competition status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	slog.Info("attempt recorded", "registration", reg.ID, "duration", d)

	if classification, err := s.Classification(ctx, c.ID.String()); err == nil {
		publishClassification(ctx, s.publisher, report.NewClassificationView(c.ID, classification))
	} else {
		slog.Warn("failed to refresh classification", "competition", c.ID, "error", err)
	}
	return &attempt, nil
}

// Classification ranks the approved registrations from one consistent read
// of the timing log.
func (s *RankingService) Classification(ctx context.Context, competitionID string) (ranking.Classification, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ranking.Classification{}, err
	}
	defer tx.Rollback()

	c, err := s.tournaments.GetCompetitionTx(ctx, tx, competitionID)
	if err != nil {
		return ranking.Classification{}, fmt.Errorf("failed to get competition: %w", err)
	}
	trial, err := competition.AsTimedTrial(*c)
	if err != nil {
		return ranking.Classification{}, err
	}

	regs, err := s.timing.RegistrationsWithAttemptsTx(ctx, tx, competitionID)
	if err != nil {
		return ranking.Classification{}, fmt.Errorf("failed to read timing log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ranking.Classification{}, err
	}

	return trial.Classify(regs), nil
}

// FinishTrial closes the trial. No attempt is accepted afterwards.
func (s *RankingService) FinishTrial(ctx context.Context, competitionID string) (ranking.Classification, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ranking.Classification{}, err
	}
	defer tx.Rollback()

	c, err := s.tournaments.GetCompetitionTx(ctx, tx, competitionID)
	if err != nil {
		return ranking.Classification{}, fmt.Errorf("failed to get competition: %w", err)
	}
	if _, err := competition.AsTimedTrial(*c); err != nil {
		return ranking.Classification{}, err
	}
	updated, err := c.Advance(competition.StatusFinished)
	if err != nil {
		return ranking.Classification{}, err
	}
	if err := s.tournaments.UpdateCompetitionStatusTx(ctx, tx, competitionID, updated.Status); err != nil {
		return ranking.Classification{}, fmt.Errorf("failed to update competition status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ranking.Classification{}, err
	}

	classification, err := s.Classification(ctx, competitionID)
	if err != nil {
		return ranking.Classification{}, err
	}
	publishClassification(ctx, s.publisher, report.NewClassificationView(c.ID, classification))
	return classification, nil
}
