package service

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/AdamBeresnev/robo-arena/internal/bracket"
	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/report"
	"github.com/AdamBeresnev/robo-arena/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	brackets    *store.BracketStore
	publisher   report.Publisher
	locks       *competitionLocks
}

func NewMatchService(db *sqlx.DB, tournaments *store.TournamentStore, brackets *store.BracketStore, publisher report.Publisher) *MatchService {
	if publisher == nil {
		publisher = report.Discard{}
	}
	return &MatchService{
		db:          db,
		tournaments: tournaments,
		brackets:    brackets,
		publisher:   publisher,
		locks:       newCompetitionLocks(),
	}
}

type MatchData struct {
	Match     bracket.Match
	NextMatch *bracket.MatchRef
	View      report.BracketView
}

func (s *MatchService) GetMatch(ctx context.Context, competitionID string, ref bracket.MatchRef) (*MatchData, error) {
	b, err := s.brackets.GetBracket(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	m, err := b.Match(ref)
	if err != nil {
		return nil, err
	}
	view := report.NewBracketView(b)
	return &MatchData{Match: m, NextMatch: view.NextMatch, View: view}, nil
}

func (s *MatchService) StartMatch(ctx context.Context, competitionID string, ref bracket.MatchRef) (*MatchData, error) {
	return s.mutate(ctx, competitionID, ref, func(b *bracket.Bracket) error {
		return b.StartMatch(ref)
	})
}

// DeclareWinner records the judge's decision and advances the winner. The
// whole read-modify-write runs under the competition lock and in a single
// transaction, so two judges can never claim the same next-round slot.
func (s *MatchService) DeclareWinner(ctx context.Context, competitionID string, ref bracket.MatchRef, winnerID uuid.UUID) (*MatchData, error) {
	return s.mutate(ctx, competitionID, ref, func(b *bracket.Bracket) error {
		return b.DeclareWinner(ref, winnerID)
	})
}

func (s *MatchService) mutate(ctx context.Context, competitionID string, ref bracket.MatchRef, apply func(*bracket.Bracket) error) (*MatchData, error) {
	unlock := s.locks.lock(competitionID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c, err := s.tournaments.GetCompetitionTx(ctx, tx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	if _, err := competition.AsCombat(*c); err != nil {
		return nil, err
	}

	b, err := s.brackets.GetBracketTx(ctx, tx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bracket: %w", err)
	}

	before := b.Matches()
	if err := apply(b); err != nil {
		return nil, err
	}
	changed := changedMatches(before, b.Matches())

	if err := s.brackets.UpdateMatches(ctx, tx, b.CompetitionID, changed); err != nil {
		return nil, err
	}

	_, champErr := b.Champion()
	if champErr != nil && !isNotYetDetermined(champErr) {
		return nil, champErr
	}
	if champErr == nil && c.Status != competition.StatusFinished {
		if err := s.tournaments.UpdateCompetitionStatusTx(ctx, tx, competitionID, competition.StatusFinished); err != nil {
			return nil, fmt.Errorf("failed to update competition status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	m, err := b.Match(ref)
	if err != nil {
		return nil, err
	}
	slog.Info("match updated", "competition", competitionID, "match", ref.String(), "status", m.Status)

	view := report.NewBracketView(b)
	publishBracket(ctx, s.publisher, view)
	return &MatchData{Match: m, NextMatch: view.NextMatch, View: view}, nil
}

func changedMatches(before, after []bracket.Match) []bracket.Match {
	var changed []bracket.Match
	for i := range after {
		if i >= len(before) || !reflect.DeepEqual(before[i], after[i]) {
			changed = append(changed, after[i])
		}
	}
	return changed
}
