package competition

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/google/uuid"
)

var (
	ErrInvalidKind        = errors.New("invalid competition kind")
	ErrWrongKind          = errors.New("operation not supported by this competition kind")
	ErrRegistrationClosed = errors.New("competition is not accepting registrations")
	ErrOverweight         = errors.New("robot exceeds the competition weight limit")
	ErrInvalidTransition  = errors.New("invalid competition status transition")
)

type Kind string

const (
	KindCombat        Kind = "combat"
	KindLineFollowing Kind = "line_following"
)

// ParseKind accepts the organizer's spelling of a competition kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "combat", "combate":
		return KindCombat, nil
	case "line_following", "line-following", "seguidor":
		return KindLineFollowing, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

type Status string

const (
	StatusRegistrationOpen Status = "registration_open"
	StatusInProgress       Status = "in_progress"
	StatusFinished         Status = "finished"
)

type Competition struct {
	ID      uuid.UUID `db:"id" json:"id"`
	EventID uuid.UUID `db:"event_id" json:"event_id"`
	Name    string    `db:"name" json:"name"`
	Kind    Kind      `db:"kind" json:"kind"`
	Status  Status    `db:"status" json:"status"`
	// Only used by combat, 0 means no limit
	WeightLimit float64   `db:"weight_limit" json:"weight_limit"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func New(eventID uuid.UUID, name string, kind Kind, weightLimit float64) Competition {
	return Competition{
		ID:          uuid.New(),
		EventID:     eventID,
		Name:        name,
		Kind:        kind,
		Status:      StatusRegistrationOpen,
		WeightLimit: weightLimit,
		CreatedAt:   time.Now().UTC(),
	}
}

// Advance moves the competition forward. Going back is never allowed and
// repeating the current status is a no-op.
func (c Competition) Advance(to Status) (Competition, error) {
	order := map[Status]int{StatusRegistrationOpen: 0, StatusInProgress: 1, StatusFinished: 2}
	from, ok1 := order[c.Status]
	next, ok2 := order[to]
	if !ok1 || !ok2 || next < from {
		return c, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, c.Status, to)
	}
	c.Status = to
	return c, nil
}

func (c Competition) accepting() error {
	if c.Status != StatusRegistrationOpen {
		return fmt.Errorf("%w: %s is %s", ErrRegistrationClosed, c.Name, c.Status)
	}
	return nil
}

// Variant is what every competition kind can do.
type Variant interface {
	Competition() Competition
	Accept(e entrant.Entrant) error
}

// Open returns the variant matching the competition's kind.
func Open(c Competition) (Variant, error) {
	switch c.Kind {
	case KindCombat:
		return &Combat{c: c}, nil
	case KindLineFollowing:
		return &TimedTrial{c: c}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidKind, c.Kind)
}
