package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/robo-arena/internal/bracket"
	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/AdamBeresnev/robo-arena/internal/report"
	"github.com/AdamBeresnev/robo-arena/internal/store"
	"github.com/jmoiron/sqlx"
)

// RegistrationSource is the entrant registry as the bracket builder sees it.
type RegistrationSource interface {
	ApprovedRegistrationsTx(ctx context.Context, tx *sqlx.Tx, competitionID string) ([]entrant.Registration, error)
}

type BracketService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	brackets    *store.BracketStore
	registry    RegistrationSource
	publisher   report.Publisher
}

func NewBracketService(db *sqlx.DB, tournaments *store.TournamentStore, brackets *store.BracketStore, registry RegistrationSource, publisher report.Publisher) *BracketService {
	if publisher == nil {
		publisher = report.Discard{}
	}
	return &BracketService{db: db, tournaments: tournaments, brackets: brackets, registry: registry, publisher: publisher}
}

type BracketData struct {
	Competition *competition.Competition
	Bracket     *bracket.Bracket
	View        report.BracketView
}

// BuildBracket closes registration and seats the approved robots in
// registration order.
func (s *BracketService) BuildBracket(ctx context.Context, competitionID string) (*BracketData, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c, err := s.tournaments.GetCompetitionTx(ctx, tx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	combat, err := competition.AsCombat(*c)
	if err != nil {
		return nil, err
	}
	if c.Status != competition.StatusRegistrationOpen {
		return nil, fmt.Errorf("%w: %s is %s", ErrBracketExists, c.Name, c.Status)
	}

	approved, err := s.registry.ApprovedRegistrationsTx(ctx, tx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved registrations: %w", err)
	}

	b, err := combat.BuildBracket(approved)
	if err != nil {
		return nil, err
	}

	if err := s.brackets.CreateBracket(ctx, tx, b); err != nil {
		return nil, err
	}

	next := competition.StatusInProgress
	if _, err := b.Champion(); err == nil {
		next = competition.StatusFinished
	}
	updated, err := c.Advance(next)
	if err != nil {
		return nil, err
	}
	if err := s.tournaments.UpdateCompetitionStatusTx(ctx, tx, competitionID, updated.Status); err != nil {
		return nil, fmt.Errorf("failed to update competition status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("bracket built", "competition", c.ID, "entrants", len(b.Seeds), "rounds", b.RoundCount())

	view := report.NewBracketView(b)
	publishBracket(ctx, s.publisher, view)
	return &BracketData{Competition: &updated, Bracket: b, View: view}, nil
}

func (s *BracketService) GetBracket(ctx context.Context, competitionID string) (*BracketData, error) {
	c, err := s.tournaments.GetCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	if _, err := competition.AsCombat(*c); err != nil {
		return nil, err
	}

	b, err := s.brackets.GetBracket(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	return &BracketData{Competition: c, Bracket: b, View: report.NewBracketView(b)}, nil
}

// Champion returns bracket.ErrNotYetDetermined until the final is decided.
func (s *BracketService) Champion(ctx context.Context, competitionID string) (entrant.Registration, error) {
	data, err := s.GetBracket(ctx, competitionID)
	if err != nil {
		return entrant.Registration{}, err
	}
	return data.Bracket.Champion()
}

func publishBracket(ctx context.Context, p report.Publisher, view report.BracketView) {
	if err := p.PublishBracket(ctx, view); err != nil {
		slog.Warn("failed to publish bracket", "competition", view.CompetitionID, "error", err)
	}
}

func publishClassification(ctx context.Context, p report.Publisher, view report.ClassificationView) {
	if err := p.PublishClassification(ctx, view); err != nil {
		slog.Warn("failed to publish classification", "competition", view.CompetitionID, "error", err)
	}
}

func isNotYetDetermined(err error) bool {
	return errors.Is(err, bracket.ErrNotYetDetermined)
}
