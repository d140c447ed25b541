package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AdamBeresnev/robo-arena/internal/bracket"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/AdamBeresnev/robo-arena/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// BracketStore persists seeds and match state. Links between matches are
// not stored; they are regenerated from the seeds on load.
type BracketStore struct {
	db *sqlx.DB
}

type seedRow struct {
	CompetitionID  uuid.UUID `db:"competition_id"`
	Position       int       `db:"position"`
	RegistrationID uuid.UUID `db:"registration_id"`
}

type matchRow struct {
	CompetitionID uuid.UUID           `db:"competition_id"`
	RoundIndex    int                 `db:"round_index"`
	MatchIndex    int                 `db:"match_index"`
	IsBye         bool                `db:"is_bye"`
	Slot1         *uuid.UUID          `db:"slot_1_registration_id"`
	Slot2         *uuid.UUID          `db:"slot_2_registration_id"`
	Status        bracket.MatchStatus `db:"status"`
	WinnerSlot    *int                `db:"winner_slot"`
}

const (
	createSeedsQuery = `INSERT INTO bracket_seeds (competition_id, position, registration_id)
		VALUES (:competition_id, :position, :registration_id)`
	createMatchesQuery = `INSERT INTO matches (competition_id, round_index, match_index, is_bye, slot_1_registration_id, slot_2_registration_id, status, winner_slot)
		VALUES (:competition_id, :round_index, :match_index, :is_bye, :slot_1_registration_id, :slot_2_registration_id, :status, :winner_slot)`
	updateMatchQuery = `UPDATE matches SET
		slot_1_registration_id = :slot_1_registration_id,
		slot_2_registration_id = :slot_2_registration_id,
		status = :status,
		winner_slot = :winner_slot
		WHERE competition_id = :competition_id AND round_index = :round_index AND match_index = :match_index`
	getSeedsQuery = `SELECT r.id, r.seq, r.competition_id, r.entrant_id, r.status, r.created_at,
		e.name AS entrant_name, e.weight_class
		FROM bracket_seeds s
		JOIN registrations r ON r.id = s.registration_id
		JOIN entrants e ON e.id = r.entrant_id
		WHERE s.competition_id = ?
		ORDER BY s.position ASC`
	getMatchesQuery = "SELECT * FROM matches WHERE competition_id = ? ORDER BY round_index ASC, match_index ASC"
)

func NewBracketStore(db *sqlx.DB) *BracketStore {
	return &BracketStore{db: db}
}

func (s *BracketStore) CreateBracket(ctx context.Context, tx *sqlx.Tx, b *bracket.Bracket) error {
	seeds := make([]seedRow, len(b.Seeds))
	for i, reg := range b.Seeds {
		seeds[i] = seedRow{CompetitionID: b.CompetitionID, Position: i + 1, RegistrationID: reg.ID}
	}
	if len(seeds) > 0 {
		if _, err := tx.NamedExecContext(ctx, createSeedsQuery, seeds); err != nil {
			return fmt.Errorf("failed to insert seeds: %w", err)
		}
	}

	matches := b.Matches()
	if len(matches) == 0 {
		return nil
	}
	rows := make([]matchRow, len(matches))
	for i, m := range matches {
		rows[i] = toMatchRow(b.CompetitionID, m)
	}
	if _, err := tx.NamedExecContext(ctx, createMatchesQuery, rows); err != nil {
		return fmt.Errorf("failed to insert matches: %w", err)
	}
	return nil
}

// UpdateMatches writes back occupants, status and winner of the given matches.
func (s *BracketStore) UpdateMatches(ctx context.Context, tx *sqlx.Tx, competitionID uuid.UUID, matches []bracket.Match) error {
	for _, m := range matches {
		if _, err := tx.NamedExecContext(ctx, updateMatchQuery, toMatchRow(competitionID, m)); err != nil {
			return fmt.Errorf("failed to update match %s: %w", m.Ref, err)
		}
	}
	return nil
}

func (s *BracketStore) GetBracket(ctx context.Context, competitionID string) (*bracket.Bracket, error) {
	return s.getBracket(ctx, s.db, competitionID)
}

func (s *BracketStore) GetBracketTx(ctx context.Context, tx *sqlx.Tx, competitionID string) (*bracket.Bracket, error) {
	return s.getBracket(ctx, tx, competitionID)
}

func (s *BracketStore) getBracket(ctx context.Context, q sqlx.QueryerContext, competitionID string) (*bracket.Bracket, error) {
	compID, err := uuid.Parse(competitionID)
	if err != nil {
		return nil, fmt.Errorf("invalid competition id %q: %w", competitionID, sql.ErrNoRows)
	}

	var seeds []entrant.Registration
	if err := sqlx.SelectContext(ctx, q, &seeds, s.db.Rebind(getSeedsQuery), competitionID); err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no bracket for competition %s: %w", competitionID, sql.ErrNoRows)
	}

	var rows []matchRow
	if err := sqlx.SelectContext(ctx, q, &rows, s.db.Rebind(getMatchesQuery), competitionID); err != nil {
		return nil, err
	}

	matches := make([]bracket.Match, len(rows))
	for i, r := range rows {
		matches[i] = fromMatchRow(r)
	}
	return bracket.Restore(compID, seeds, matches)
}

func toMatchRow(competitionID uuid.UUID, m bracket.Match) matchRow {
	return matchRow{
		CompetitionID: competitionID,
		RoundIndex:    m.Ref.Round,
		MatchIndex:    m.Ref.Index,
		IsBye:         m.IsBye,
		Slot1:         utils.NilIfZero(m.Slot1.RegistrationID),
		Slot2:         utils.NilIfZero(m.Slot2.RegistrationID),
		Status:        m.Status,
		WinnerSlot:    m.WinnerSlot,
	}
}

func fromMatchRow(r matchRow) bracket.Match {
	return bracket.Match{
		Ref:        bracket.MatchRef{Round: r.RoundIndex, Index: r.MatchIndex},
		Slot1:      bracket.Slot{RegistrationID: utils.OrZero(r.Slot1)},
		Slot2:      bracket.Slot{RegistrationID: utils.OrZero(r.Slot2)},
		Status:     r.Status,
		WinnerSlot: r.WinnerSlot,
		IsBye:      r.IsBye,
	}
}
