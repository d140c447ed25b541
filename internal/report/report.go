// Package report holds the read models handed to display collaborators and
// the Publisher interface they implement. Nothing here formats output.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/bracket"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/AdamBeresnev/robo-arena/internal/ranking"
	"github.com/google/uuid"
)

type BracketView struct {
	CompetitionID uuid.UUID              `json:"competition_id"`
	Seeds         []entrant.Registration `json:"seeds"`
	Rounds        []bracket.Round        `json:"rounds"`
	NextMatch     *bracket.MatchRef      `json:"next_match,omitempty"`
	Champion      *entrant.Registration  `json:"champion,omitempty"`
	GeneratedAt   time.Time              `json:"generated_at"`
}

func NewBracketView(b *bracket.Bracket) BracketView {
	view := BracketView{
		CompetitionID: b.CompetitionID,
		Seeds:         b.Seeds,
		Rounds:        b.Snapshot(),
		GeneratedAt:   time.Now().UTC(),
	}
	if ref, ok := b.NextPlayable(); ok {
		view.NextMatch = &ref
	}
	if champ, err := b.Champion(); err == nil {
		view.Champion = &champ
	}
	return view
}

type ClassificationView struct {
	CompetitionID uuid.UUID                   `json:"competition_id"`
	Rows          []ranking.ClassificationRow `json:"rows"`
	Unranked      []entrant.Registration      `json:"unranked"`
	GeneratedAt   time.Time                   `json:"generated_at"`
}

func NewClassificationView(competitionID uuid.UUID, c ranking.Classification) ClassificationView {
	return ClassificationView{
		CompetitionID: competitionID,
		Rows:          c.Rows,
		Unranked:      c.Unranked,
		GeneratedAt:   time.Now().UTC(),
	}
}

// Publisher receives results after they have been committed.
type Publisher interface {
	PublishBracket(ctx context.Context, view BracketView) error
	PublishClassification(ctx context.Context, view ClassificationView) error
}

// Multi fans out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) PublishBracket(ctx context.Context, view BracketView) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishBracket(ctx, view); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) PublishClassification(ctx context.Context, view ClassificationView) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishClassification(ctx, view); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops everything. Used when no display is configured.
type Discard struct{}

func (Discard) PublishBracket(context.Context, BracketView) error               { return nil }
func (Discard) PublishClassification(context.Context, ClassificationView) error { return nil }
